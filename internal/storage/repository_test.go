package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safisha/internal/store"
	"safisha/internal/store/local"
)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "safisha.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestGetMissingKey(t *testing.T) {
	repo := newRepo(t)
	v, err := repo.Get(context.Background(), "dailySales")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestPutOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.Put(ctx, "k", []byte(`[1]`)))
	require.NoError(t, repo.Put(ctx, "k", []byte(`[1,2]`)))

	v, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(v))
	assert.NoError(t, repo.HealthCheck(ctx))
}

func TestBacksFallbackStore(t *testing.T) {
	ctx := context.Background()
	s := local.New(newRepo(t))

	created, err := s.Insert(ctx, store.Leads, store.Row{"assetType": "carpet", "customerName": "Njeri"})
	require.NoError(t, err)

	rows, err := s.List(ctx, store.Leads)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, created.ID(), rows[0].ID())
	assert.Equal(t, "Njeri", rows[0]["customerName"])
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "safisha.db")
	v, dirty, err := AppliedVersion(path)
	require.NoError(t, err)
	assert.Zero(t, v, "fresh file has no schema")
	assert.False(t, dirty)

	require.NoError(t, RunMigrations(path))
	require.NoError(t, RunMigrations(path))

	v, dirty, err = AppliedVersion(path)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)
	assert.False(t, dirty)
}
