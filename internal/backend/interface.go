package backend

import (
	"context"
	"errors"

	"safisha/internal/amqp"
	"safisha/internal/gateway"
	"safisha/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Backend is the wired persistence stack: the gateway over remote and
// fallback stores, plus the optional spreadsheet mirror and AMQP client.
type Backend struct {
	Gateway   *gateway.Gateway
	Mirror    sheets.Mirror // nil without a mirror
	Publisher *amqp.Client  // nil without AMQP

	ready    []func(context.Context) error
	cleanups []CleanupFunc
}

// Ready checks every store that can report its health.
func (b *Backend) Ready(ctx context.Context) error {
	for _, check := range b.ready {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.cleanups) - 1; i >= 0; i-- {
		if err := b.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.cleanups = nil
	return errors.Join(errs...)
}

func (b *Backend) onClose(fn CleanupFunc) {
	b.cleanups = append(b.cleanups, fn)
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Backend, error)
}

// Config holds configuration for backend creation
type Config struct {
	Remote           RemoteType
	RemoteConfigured bool
	SupabaseURL      string
	SupabaseKey      string
	DatabaseDSN      string

	Fallback     FallbackType
	SQLiteDBPath string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	Mirror                   MirrorType
	GoogleScriptURL          string
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

type (
	RemoteType   string
	FallbackType string
	MirrorType   string
)

const (
	RemoteSupabase RemoteType = "supabase"
	RemotePostgres RemoteType = "postgres"
	RemoteLocal    RemoteType = "local"

	FallbackSQLite FallbackType = "sqlite"
	FallbackMemory FallbackType = "memory"

	MirrorNone    MirrorType = "none"
	MirrorWebhook MirrorType = "webhook"
	MirrorSheets  MirrorType = "sheets"
)

func (t RemoteType) IsValid() bool {
	switch t {
	case RemoteSupabase, RemotePostgres, RemoteLocal:
		return true
	}
	return false
}

func (t FallbackType) IsValid() bool {
	return t == FallbackSQLite || t == FallbackMemory
}

func (t MirrorType) IsValid() bool {
	switch t {
	case MirrorNone, MirrorWebhook, MirrorSheets:
		return true
	}
	return false
}
