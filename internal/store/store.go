// Package store defines the row-level persistence ports shared by the
// remote stores and the local fallback.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"time"
)

// Collection names one logical table.
type Collection string

const (
	Sales     Collection = "sales"
	Employees Collection = "employees"
	Expenses  Collection = "expenses"
	Notes     Collection = "notes"
	Leads     Collection = "leads"
)

// Collections lists every collection in a stable order.
var Collections = []Collection{Sales, Employees, Expenses, Notes, Leads}

// Row is one record in application (camelCase) form.
type Row map[string]any

var (
	ErrNotFound          = errors.New("record not found")
	ErrUnknownCollection = errors.New("unknown collection")
)

// Ports implemented by the remote stores and the fallback store.
type (
	RowStore interface {
		// List returns every row, newest first.
		List(ctx context.Context, c Collection) ([]Row, error)
		// Insert stores row and returns it with its assigned id.
		Insert(ctx context.Context, c Collection, row Row) (Row, error)
		// Update merges fields into the row with the given id and returns
		// the result. Keys absent from fields are left untouched.
		Update(ctx context.Context, c Collection, id string, fields Row) (Row, error)
		Delete(ctx context.Context, c Collection, id string) error
	}

	// PhotoStore hosts binary employee photos and returns a public URL.
	PhotoStore interface {
		UploadPhoto(ctx context.Context, name, contentType string, data []byte) (url string, err error)
	}
)

func (c Collection) String() string { return string(c) }

// Valid reports whether c is a known collection.
func (c Collection) Valid() bool {
	for _, k := range Collections {
		if k == c {
			return true
		}
	}
	return false
}

// ID returns the row id as a string. Numeric ids decoded from JSON are
// formatted without a fraction.
func (r Row) ID() string {
	switch v := r["id"].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

// Clone returns a shallow copy of r.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge copies fields over a clone of r.
func (r Row) Merge(fields Row) Row {
	out := r.Clone()
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// Timestamp formats t the way createdAt values are stored.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// DecodeJSON is json.Unmarshal that keeps numbers as json.Number, so a
// value such as 500.10 reaches the record with its text unchanged.
func DecodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}
