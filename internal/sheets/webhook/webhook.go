// Package webhook mirrors entries through a spreadsheet web-app endpoint
// that accepts {action, data} and answers {success, data, error}.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"resty.dev/v3"

	ports "safisha/internal/sheets"
)

const (
	ActionAddEntry   = "addEntry"
	ActionGetEntries = "getEntries"
)

var ErrRejected = errors.New("webhook rejected request")

type request struct {
	Action string       `json:"action"`
	Data   *ports.Entry `json:"data,omitempty"`
}

type response struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	RowNumber int             `json:"rowNumber,omitempty"`
}

type Client struct {
	http *resty.Client
	url  string
}

var _ ports.Mirror = (*Client)(nil)

func New(scriptURL string) *Client {
	hc := resty.New().
		SetTimeout(30*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: hc, url: strings.TrimSpace(scriptURL)}
}

func (c *Client) Close() error {
	return c.http.Close()
}

func (c *Client) AppendEntry(ctx context.Context, e ports.Entry) (string, error) {
	if e.Priority == "" {
		e.Priority = ports.DefaultPriority
	}
	out, err := c.call(ctx, request{Action: ActionAddEntry, Data: &e})
	if err != nil {
		return "", err
	}
	if out.RowNumber > 0 {
		return fmt.Sprintf("row:%d", out.RowNumber), nil
	}
	return "entry:" + e.EntryID, nil
}

func (c *Client) ListEntries(ctx context.Context) ([]ports.Entry, error) {
	out, err := c.call(ctx, request{Action: ActionGetEntries})
	if err != nil {
		return nil, err
	}
	if len(out.Data) == 0 || string(out.Data) == "null" {
		return []ports.Entry{}, nil
	}
	var entries []ports.Entry
	if err := json.Unmarshal(out.Data, &entries); err != nil {
		return nil, fmt.Errorf("%s: decode entries: %w", ActionGetEntries, err)
	}
	return entries, nil
}

func (c *Client) call(ctx context.Context, req request) (response, error) {
	if c.url == "" {
		return response{}, errors.New("webhook url not configured")
	}
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post(c.url)
	if err != nil {
		return response{}, fmt.Errorf("%s: %w", req.Action, err)
	}
	if res.IsError() {
		return response{}, fmt.Errorf("%s: unexpected status %d", req.Action, res.StatusCode())
	}
	var out response
	if err := json.Unmarshal([]byte(res.String()), &out); err != nil {
		return response{}, fmt.Errorf("%s: decode response: %w", req.Action, err)
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "unknown error"
		}
		return response{}, fmt.Errorf("%s: %w: %s", req.Action, ErrRejected, msg)
	}
	return out, nil
}
