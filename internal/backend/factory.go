package backend

import (
	"context"
	"fmt"

	"safisha/internal/amqp"
	"safisha/internal/fields"
	"safisha/internal/gateway"
	applog "safisha/internal/log"
	"safisha/internal/sheets"
	gsheet "safisha/internal/sheets/google"
	"safisha/internal/sheets/webhook"
	"safisha/internal/storage"
	"safisha/internal/store"
	"safisha/internal/store/local"
	"safisha/internal/store/postgres"
	"safisha/internal/store/supabase"
)

// postgresAttempts bounds the connection retries at startup.
const postgresAttempts = 5

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
	fields *fields.Translator
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
		fields: fields.Default(),
	}
}

// CreateBackend wires the fallback store, the remote store when it is
// configured, and the optional mirror and AMQP client. An unreachable
// remote or broker is logged and skipped; a broken fallback or mirror
// configuration is an error.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	b := &Backend{}
	fallback, err := f.createFallback(b, config)
	if err != nil {
		return nil, err
	}

	remote := f.createRemote(ctx, b, config)

	b.Gateway = gateway.New(gateway.Options{
		Remote:     remote,
		Fallback:   fallback,
		Configured: remote != nil,
	})

	if b.Mirror, err = f.createMirror(ctx, b, config); err != nil {
		_ = b.Close()
		return nil, err
	}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, mirroring inline",
				applog.FieldError, err.Error())
		} else {
			b.Publisher = client
			b.onClose(client.Close)
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	f.logger.Info("Initialized backend",
		applog.FieldBackend, string(config.Remote),
		"remote_active", b.Gateway.RemoteActive(),
		"fallback", string(config.Fallback),
		"mirror", string(config.Mirror),
		"amqp_enabled", b.Publisher != nil)
	return b, nil
}

func (f *DefaultFactory) createFallback(b *Backend, config Config) (*local.Store, error) {
	switch config.Fallback {
	case FallbackSQLite:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite fallback: %w", err)
		}
		b.onClose(repo.Close)
		b.ready = append(b.ready, repo.HealthCheck)
		f.logger.Info("Initialized SQLite fallback", "db_path", config.SQLiteDBPath)
		return local.New(repo), nil
	default:
		f.logger.Warn("Using in-memory fallback, local records are lost on restart")
		return local.New(local.NewMemoryKV()), nil
	}
}

// createRemote returns nil when the remote is not selected, not configured
// or unreachable; the gateway then runs on the fallback alone.
func (f *DefaultFactory) createRemote(ctx context.Context, b *Backend, config Config) store.RowStore {
	if config.Remote == RemoteLocal {
		return nil
	}
	if !config.RemoteConfigured {
		f.logger.Warn("Remote store not configured, using local fallback",
			applog.FieldBackend, string(config.Remote))
		return nil
	}

	switch config.Remote {
	case RemoteSupabase:
		client := supabase.New(config.SupabaseURL, config.SupabaseKey, f.fields)
		b.onClose(client.Close)
		return client
	case RemotePostgres:
		pg, err := postgres.Open(ctx, config.DatabaseDSN, f.fields, postgresAttempts)
		if err != nil {
			f.logger.Error("Postgres unreachable, using local fallback",
				applog.FieldError, err.Error(),
				applog.FieldErrorType, applog.ErrorTypeDatabase)
			return nil
		}
		b.onClose(pg.Close)
		return pg
	}
	return nil
}

func (f *DefaultFactory) createMirror(ctx context.Context, b *Backend, config Config) (sheets.Mirror, error) {
	switch config.Mirror {
	case MirrorWebhook:
		client := webhook.New(config.GoogleScriptURL)
		b.onClose(client.Close)
		f.logger.Info("Initialized Apps Script mirror")
		return client, nil
	case MirrorSheets:
		client, err := gsheet.NewFromConfig(ctx, gsheet.Config{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleSheetName,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets mirror: %w", err)
		}
		f.logger.Info("Initialized Google Sheets mirror", "sheet", config.GoogleSheetName)
		return client, nil
	}
	return nil, nil
}
