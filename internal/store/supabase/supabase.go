// Package supabase is the hosted remote store. It talks to the PostgREST
// and Storage endpoints of a Supabase project.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"resty.dev/v3"

	"safisha/internal/fields"
	"safisha/internal/store"
)

// PhotoBucket is the storage bucket holding employee photos.
const PhotoBucket = "employee-photos"

type Client struct {
	http    *resty.Client
	baseURL string
	fields  *fields.Translator
}

var (
	_ store.RowStore   = (*Client)(nil)
	_ store.PhotoStore = (*Client)(nil)
)

// New returns a client for the project at baseURL authenticated with the
// anon (or service) key.
func New(baseURL, apiKey string, tr *fields.Translator) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	hc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetHeader("apikey", apiKey).
		SetHeader("Authorization", "Bearer "+apiKey).
		SetHeader("Accept", "application/json")
	return &Client{http: hc, baseURL: baseURL, fields: tr}
}

func (c *Client) Close() error {
	return c.http.Close()
}

func tablePath(coll store.Collection) string {
	return "/rest/v1/" + url.PathEscape(coll.String())
}

// List returns all rows of the table ordered by created_at descending.
func (c *Client) List(ctx context.Context, coll store.Collection) ([]store.Row, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("order", "created_at.desc").
		Get(tablePath(coll))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", coll, err)
	}
	if res.IsError() {
		return nil, statusError("list", coll, res)
	}
	rows, err := decodeRows(res)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", coll, err)
	}
	return c.toApp(coll, rows), nil
}

func (c *Client) Insert(ctx context.Context, coll store.Collection, row store.Row) (store.Row, error) {
	body := c.fields.ToStorage(coll.String(), row)
	dropEmpty(body, "id", "created_at")

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(body).
		Post(tablePath(coll))
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", coll, err)
	}
	if res.IsError() {
		return nil, statusError("insert", coll, res)
	}
	rows, err := decodeRows(res)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", coll, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert %s: empty representation", coll)
	}
	return c.toApp(coll, rows[:1])[0], nil
}

func (c *Client) Update(ctx context.Context, coll store.Collection, id string, patch store.Row) (store.Row, error) {
	body := c.fields.ToStorage(coll.String(), patch)
	delete(body, "id")

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", "eq."+id).
		SetBody(body).
		Patch(tablePath(coll))
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", coll, id, err)
	}
	if res.IsError() {
		return nil, statusError("update", coll, res)
	}
	rows, err := decodeRows(res)
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", coll, id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("update %s %s: %w", coll, id, store.ErrNotFound)
	}
	return c.toApp(coll, rows[:1])[0], nil
}

// Delete removes the row. PostgREST answers 204 whether or not a row matched.
func (c *Client) Delete(ctx context.Context, coll store.Collection, id string) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("id", "eq."+id).
		Delete(tablePath(coll))
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", coll, id, err)
	}
	if res.IsError() {
		return statusError("delete", coll, res)
	}
	return nil
}

// UploadPhoto stores data in the photo bucket under name and returns its
// public URL.
func (c *Client) UploadPhoto(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if name == "" {
		return "", errors.New("upload photo: empty object name")
	}
	object := PhotoBucket + "/" + url.PathEscape(name)
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("Cache-Control", "3600").
		SetBody(data).
		Post("/storage/v1/object/" + object)
	if err != nil {
		return "", fmt.Errorf("upload photo %s: %w", name, err)
	}
	if res.IsError() {
		return "", fmt.Errorf("upload photo %s: status %d: %s", name, res.StatusCode(), res.String())
	}
	return c.baseURL + "/storage/v1/object/public/" + object, nil
}

func (c *Client) toApp(coll store.Collection, rows []map[string]any) []store.Row {
	out := make([]store.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, c.fields.ToApp(coll.String(), r))
	}
	return out
}

// decodeRows reads a PostgREST representation. Numeric columns stay
// json.Number so amounts keep their text.
func decodeRows(res *resty.Response) ([]map[string]any, error) {
	body := strings.TrimSpace(res.String())
	if body == "" {
		return nil, nil
	}
	var rows []map[string]any
	if err := store.DecodeJSON([]byte(body), &rows); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return rows, nil
}

func dropEmpty(m map[string]any, keys ...string) {
	for _, k := range keys {
		if v, ok := m[k]; ok && (v == nil || v == "") {
			delete(m, k)
		}
	}
}

func statusError(op string, coll store.Collection, res *resty.Response) error {
	return fmt.Errorf("%s %s: status %d: %s", op, coll, res.StatusCode(), strings.TrimSpace(res.String()))
}
