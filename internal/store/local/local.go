// Package local is the fallback row store. Each collection group lives as a
// single JSON document under a fixed key, and every write reads the whole
// document, changes it in memory and writes it back.
//
// There is no locking around that cycle: two writers racing on the same key
// can lose one of the updates. Callers that need stronger guarantees should
// configure a remote store.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"safisha/internal/store"
)

// Keys under which the collections are persisted.
const (
	KeySales = "dailySales"
	KeyAdmin = "adminData"
	KeyLeads = "leadRecords"
)

// KV is the byte-level storage behind the fallback store. Get returns
// (nil, nil) for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// adminData groups the back-office collections under one key.
type adminData struct {
	Employees []store.Row `json:"employees"`
	Expenses  []store.Row `json:"expenses"`
	Notes     []store.Row `json:"notes"`
}

type Store struct {
	kv  KV
	now func() time.Time
}

var _ store.RowStore = (*Store)(nil)

func New(kv KV) *Store {
	return NewWithClock(kv, time.Now)
}

// NewWithClock is New with an injectable clock for id and timestamp
// assignment.
func NewWithClock(kv KV, now func() time.Time) *Store {
	return &Store{kv: kv, now: now}
}

func (s *Store) List(ctx context.Context, c store.Collection) ([]store.Row, error) {
	rows, err := s.load(ctx, c)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []store.Row{}
	}
	return rows, nil
}

// Insert assigns a millisecond timestamp id and prepends the row.
func (s *Store) Insert(ctx context.Context, c store.Collection, row store.Row) (store.Row, error) {
	rows, err := s.load(ctx, c)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := row.Clone()
	out["id"] = nextID(rows, now)
	if v, _ := out["createdAt"].(string); v == "" {
		out["createdAt"] = store.Timestamp(now)
	}
	rows = append([]store.Row{out}, rows...)
	if err := s.save(ctx, c, rows); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, c store.Collection, id string, fields store.Row) (store.Row, error) {
	rows, err := s.load(ctx, c)
	if err != nil {
		return nil, err
	}
	for i, r := range rows {
		if r.ID() != id {
			continue
		}
		merged := r.Merge(fields)
		merged["id"] = r["id"]
		rows[i] = merged
		if err := s.save(ctx, c, rows); err != nil {
			return nil, err
		}
		return merged, nil
	}
	return nil, fmt.Errorf("%s %s: %w", c, id, store.ErrNotFound)
}

// Delete removes the row with the given id. Unknown ids are not an error.
func (s *Store) Delete(ctx context.Context, c store.Collection, id string) error {
	rows, err := s.load(ctx, c)
	if err != nil {
		return err
	}
	kept := rows[:0:0]
	for _, r := range rows {
		if r.ID() != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(rows) {
		return nil
	}
	return s.save(ctx, c, kept)
}

func nextID(rows []store.Row, now time.Time) string {
	taken := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		taken[r.ID()] = struct{}{}
	}
	n := now.UnixMilli()
	for {
		id := strconv.FormatInt(n, 10)
		if _, ok := taken[id]; !ok {
			return id
		}
		n++
	}
}

func (s *Store) load(ctx context.Context, c store.Collection) ([]store.Row, error) {
	switch c {
	case store.Sales:
		return s.loadList(ctx, KeySales)
	case store.Leads:
		return s.loadList(ctx, KeyLeads)
	case store.Employees, store.Expenses, store.Notes:
		admin, err := s.loadAdmin(ctx)
		if err != nil {
			return nil, err
		}
		return *admin.field(c), nil
	}
	return nil, fmt.Errorf("%w: %s", store.ErrUnknownCollection, c)
}

func (s *Store) save(ctx context.Context, c store.Collection, rows []store.Row) error {
	switch c {
	case store.Sales:
		return s.saveJSON(ctx, KeySales, rows)
	case store.Leads:
		return s.saveJSON(ctx, KeyLeads, rows)
	case store.Employees, store.Expenses, store.Notes:
		admin, err := s.loadAdmin(ctx)
		if err != nil {
			return err
		}
		*admin.field(c) = rows
		return s.saveJSON(ctx, KeyAdmin, admin)
	}
	return fmt.Errorf("%w: %s", store.ErrUnknownCollection, c)
}

func (a *adminData) field(c store.Collection) *[]store.Row {
	switch c {
	case store.Employees:
		return &a.Employees
	case store.Expenses:
		return &a.Expenses
	default:
		return &a.Notes
	}
}

func (s *Store) loadList(ctx context.Context, key string) ([]store.Row, error) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var rows []store.Row
	if err := store.DecodeJSON(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return rows, nil
}

func (s *Store) loadAdmin(ctx context.Context) (*adminData, error) {
	raw, err := s.kv.Get(ctx, KeyAdmin)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", KeyAdmin, err)
	}
	admin := &adminData{}
	if len(raw) == 0 {
		return admin, nil
	}
	if err := store.DecodeJSON(raw, admin); err != nil {
		return nil, fmt.Errorf("decode %s: %w", KeyAdmin, err)
	}
	return admin, nil
}

func (s *Store) saveJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
