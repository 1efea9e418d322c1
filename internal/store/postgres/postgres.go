// Package postgres is the remote store for deployments that reach the
// database directly instead of through the REST gateway.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"safisha/internal/fields"
	"safisha/internal/store"
)

type table struct {
	one  func() any
	many func() any
}

func tableOf[T any]() table {
	return table{
		one:  func() any { return new(T) },
		many: func() any { return &[]T{} },
	}
}

var tables = map[store.Collection]table{
	store.Sales:     tableOf[SaleRow](),
	store.Employees: tableOf[EmployeeRow](),
	store.Expenses:  tableOf[ExpenseRow](),
	store.Notes:     tableOf[NoteRow](),
	store.Leads:     tableOf[LeadRow](),
}

type Store struct {
	db     *gorm.DB
	fields *fields.Translator
}

var _ store.RowStore = (*Store)(nil)

// Open connects to dsn, retrying while the database comes up, and migrates
// the schema.
func Open(ctx context.Context, dsn string, tr *fields.Translator, attempts int) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is empty")
	}
	if attempts < 1 {
		attempts = 1
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < attempts; i++ {
		db, err = gorm.Open(pgdriver.Open(dsn), cfg)
		if err == nil {
			break
		}
		slog.WarnContext(ctx, "Retrying database connection", "attempt", i+1, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after %d attempts: %w", attempts, err)
	}
	return New(db, tr)
}

// New wraps an open connection and migrates the five tables.
func New(db *gorm.DB, tr *fields.Translator) (*Store, error) {
	for _, c := range store.Collections {
		if err := db.AutoMigrate(tables[c].one()); err != nil {
			return nil, fmt.Errorf("automigrate %s: %w", c, err)
		}
	}
	return &Store{db: db, fields: tr}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) List(ctx context.Context, c store.Collection) ([]store.Row, error) {
	t, err := lookup(c)
	if err != nil {
		return nil, err
	}
	dest := t.many()
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(dest).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", c, err)
	}
	var rows []map[string]any
	if err := remarshal(dest, &rows); err != nil {
		return nil, fmt.Errorf("list %s: %w", c, err)
	}
	out := make([]store.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, s.fields.ToApp(c.String(), r))
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, c store.Collection, row store.Row) (store.Row, error) {
	t, err := lookup(c)
	if err != nil {
		return nil, err
	}
	in := s.fields.ToStorage(c.String(), row)
	delete(in, "created_at")
	model := t.one()
	if err := remarshal(in, model); err != nil {
		return nil, fmt.Errorf("insert %s: %w", c, err)
	}
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, fmt.Errorf("insert %s: %w", c, err)
	}
	return s.toRow(c, model)
}

func (s *Store) Update(ctx context.Context, c store.Collection, id string, patch store.Row) (store.Row, error) {
	t, err := lookup(c)
	if err != nil {
		return nil, err
	}
	cols := s.fields.ToStorage(c.String(), patch)
	delete(cols, "id")

	db := s.db.WithContext(ctx)
	if len(cols) > 0 {
		res := db.Model(t.one()).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, fmt.Errorf("update %s %s: %w", c, id, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("update %s %s: %w", c, id, store.ErrNotFound)
		}
	}

	model := t.one()
	if err := db.Where("id = ?", id).First(model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("update %s %s: %w", c, id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("reload %s %s: %w", c, id, err)
	}
	return s.toRow(c, model)
}

func (s *Store) Delete(ctx context.Context, c store.Collection, id string) error {
	t, err := lookup(c)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(t.one()).Error; err != nil {
		return fmt.Errorf("delete %s %s: %w", c, id, err)
	}
	return nil
}

func (s *Store) toRow(c store.Collection, model any) (store.Row, error) {
	var m map[string]any
	if err := remarshal(model, &m); err != nil {
		return nil, fmt.Errorf("encode %s: %w", c, err)
	}
	return s.fields.ToApp(c.String(), m), nil
}

func lookup(c store.Collection) (table, error) {
	t, ok := tables[c]
	if !ok {
		return table{}, fmt.Errorf("%w: %s", store.ErrUnknownCollection, c)
	}
	return t, nil
}

func remarshal(in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return store.DecodeJSON(b, out)
}
