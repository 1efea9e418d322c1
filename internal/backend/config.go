package backend

import (
	"fmt"

	"safisha/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	cfg := Config{
		Remote:           RemoteType(appConfig.DataBackend),
		RemoteConfigured: appConfig.RemoteConfigured(),
		SupabaseURL:      appConfig.SupabaseURL,
		SupabaseKey:      appConfig.SupabaseAnonKey,
		DatabaseDSN:      appConfig.DatabaseDSN,

		Fallback:     FallbackType(appConfig.FallbackBackend),
		SQLiteDBPath: appConfig.SQLiteDBPath,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		Mirror:                   MirrorType(appConfig.MirrorBackend),
		GoogleScriptURL:          appConfig.GoogleScriptURL,
		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}
	return cfg, cfg.Validate()
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Remote.IsValid() {
		return fmt.Errorf("invalid remote backend: %s", c.Remote)
	}
	if !c.Fallback.IsValid() {
		return fmt.Errorf("invalid fallback backend: %s", c.Fallback)
	}
	if !c.Mirror.IsValid() {
		return fmt.Errorf("invalid mirror backend: %s", c.Mirror)
	}

	if c.Fallback == FallbackSQLite && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite fallback")
	}

	switch c.Mirror {
	case MirrorWebhook:
		if c.GoogleScriptURL == "" {
			return fmt.Errorf("Google Apps Script URL is required for webhook mirror")
		}
	case MirrorSheets:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets mirror")
		}
		if c.GoogleSheetName == "" {
			return fmt.Errorf("Google Sheet name is required for sheets mirror")
		}
	}

	return nil
}
