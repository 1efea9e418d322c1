package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"safisha/internal/fields"
	"safisha/internal/store"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	s, err := New(db, fields.Default())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAssignsUUID(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	row, err := s.Insert(ctx, store.Sales, store.Row{
		"date":                 "2024-01-10",
		"category":             "motorbike",
		"employee":             "Brian",
		"motorbikeServiceType": "Deep Clean",
		"numberOfMotorbikes":   float64(2),
		"amount":               float64(400),
		"paymentMethod":        "M-Pesa",
	})
	require.NoError(t, err)
	assert.Len(t, row.ID(), 36)
	assert.Equal(t, "M-Pesa", row["paymentMethod"])
	assert.Equal(t, "Deep Clean", row["motorbikeServiceType"])
	assert.Equal(t, json.Number("400"), row["amount"])
	assert.Equal(t, json.Number("2"), row["numberOfMotorbikes"])
	assert.NotEmpty(t, row["createdAt"])
	assert.NotContains(t, row, "payment_method")
}

func TestListReturnsAllRows(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for _, name := range []string{"Ann", "Ben", "Cate"} {
		_, err := s.Insert(ctx, store.Employees, store.Row{"name": name, "phone": "07", "idNumber": "ID-" + name})
		require.NoError(t, err)
	}

	rows, err := s.List(ctx, store.Employees)
	require.NoError(t, err)
	var names []any
	for _, r := range rows {
		names = append(names, r["name"])
		assert.Contains(t, r, "idNumber")
	}
	assert.ElementsMatch(t, []any{"Ann", "Ben", "Cate"}, names)
}

func TestUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	created, err := s.Insert(ctx, store.Leads, store.Row{
		"assetType":     "vehicle",
		"vehicleModel":  "Probox",
		"customerName":  "Njeri",
		"customerPhone": "0700",
	})
	require.NoError(t, err)

	updated, err := s.Update(ctx, store.Leads, created.ID(), store.Row{"customerPhone": "0711"})
	require.NoError(t, err)
	assert.Equal(t, "0711", updated["customerPhone"])
	assert.Equal(t, "Probox", updated["vehicleModel"])
	assert.Equal(t, "Njeri", updated["customerName"])
	assert.NotEmpty(t, updated["createdAt"])

	_, err = s.Update(ctx, store.Leads, "missing", store.Row{"customerPhone": "1"})
	assert.True(t, errors.Is(err, store.ErrNotFound))

	_, err = s.Update(ctx, store.Leads, "missing", store.Row{})
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestDeleteRemovesOnlyTarget(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a, err := s.Insert(ctx, store.Notes, store.Row{"category": "Incident", "content": "hose burst", "date": "2024-01-10"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, store.Notes, store.Row{"category": "Client Query", "content": "price of wax", "date": "2024-01-10"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, store.Notes, "unknown"))
	require.NoError(t, s.Delete(ctx, store.Notes, a.ID()))

	rows, err := s.List(ctx, store.Notes)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "price of wax", rows[0]["content"])
}

func TestUnknownCollection(t *testing.T) {
	s := newStore(t)
	_, err := s.List(context.Background(), store.Collection("invoices"))
	assert.True(t, errors.Is(err, store.ErrUnknownCollection))
}
