package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Remote store kinds.
const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
	BackendLocal    = "local"
)

// Fallback store kinds.
const (
	FallbackSQLite = "sqlite"
	FallbackMemory = "memory"
)

// Mirror kinds.
const (
	MirrorNone    = "none"
	MirrorWebhook = "webhook"
	MirrorSheets  = "sheets"
)

// Placeholders shipped in the sample environment file.
const (
	PlaceholderURL = "YOUR_SUPABASE_URL"
	PlaceholderKey = "YOUR_SUPABASE_ANON_KEY"
)

type Config struct {
	// HTTP Server
	Port     string
	LogLevel string

	// Remote store
	DataBackend     string
	SupabaseURL     string
	SupabaseAnonKey string
	DatabaseDSN     string

	// Fallback store
	FallbackBackend string
	SQLiteDBPath    string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Spreadsheet mirror
	MirrorBackend            string
	GoogleScriptURL          string
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Auth
	JWTSecret string

	// Worker
	SyncBatchSize int
	SyncInterval  time.Duration

	// Dashboard summaries
	SummaryCacheTTL time.Duration
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8081"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataBackend:     getEnv("DATA_BACKEND", BackendSupabase),
		SupabaseURL:     getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey: getEnv("SUPABASE_ANON_KEY", ""),
		DatabaseDSN:     getEnv("DATABASE_DSN", ""),

		FallbackBackend: getEnv("FALLBACK_BACKEND", FallbackSQLite),
		SQLiteDBPath:    getEnv("SQLITE_DB_PATH", "./data/safisha.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "safisha"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "mirror_entries"),

		MirrorBackend:            getEnv("MIRROR_BACKEND", MirrorNone),
		GoogleScriptURL:          getEnv("GOOGLE_SCRIPT_URL", ""),
		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Sheet1"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		SyncBatchSize: getEnvInt("SYNC_BATCH_SIZE", 10),
		SyncInterval:  getEnvDuration("SYNC_INTERVAL", 5*time.Minute),

		SummaryCacheTTL: getEnvDuration("SUMMARY_CACHE_TTL", 30*time.Second),
	}
}

// RemoteConfigured reports whether the remote store should be used. A
// supabase remote needs a real http(s) URL and key; the sample placeholders
// count as unset.
func (c *Config) RemoteConfigured() bool {
	switch c.DataBackend {
	case BackendSupabase:
		return supabaseURLUsable(c.SupabaseURL) && supabaseKeyUsable(c.SupabaseAnonKey)
	case BackendPostgres:
		return strings.TrimSpace(c.DatabaseDSN) != ""
	}
	return false
}

// AMQPEnabled reports whether mirror dispatch goes through the broker.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

func supabaseURLUsable(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == PlaceholderURL {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func supabaseKeyUsable(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != PlaceholderKey
}

// Diagnostics is a secret-free view of the configuration.
type Diagnostics struct {
	DataBackend      string `json:"dataBackend"`
	SupabaseURLSet   bool   `json:"supabaseUrlSet"`
	SupabaseURLValid bool   `json:"supabaseUrlValid"`
	SupabaseKeySet   bool   `json:"supabaseKeySet"`
	DatabaseDSNSet   bool   `json:"databaseDsnSet"`
	RemoteConfigured bool   `json:"remoteConfigured"`
	FallbackBackend  string `json:"fallbackBackend"`
	MirrorBackend    string `json:"mirrorBackend"`
	AMQPEnabled      bool   `json:"amqpEnabled"`
	AuthEnabled      bool   `json:"authEnabled"`
}

func (c *Config) Diagnostics() Diagnostics {
	return Diagnostics{
		DataBackend:      c.DataBackend,
		SupabaseURLSet:   c.SupabaseURL != "" && c.SupabaseURL != PlaceholderURL,
		SupabaseURLValid: supabaseURLUsable(c.SupabaseURL),
		SupabaseKeySet:   supabaseKeyUsable(c.SupabaseAnonKey),
		DatabaseDSNSet:   c.DatabaseDSN != "",
		RemoteConfigured: c.RemoteConfigured(),
		FallbackBackend:  c.FallbackBackend,
		MirrorBackend:    c.MirrorBackend,
		AMQPEnabled:      c.AMQPEnabled(),
		AuthEnabled:      c.JWTSecret != "",
	}
}

// Validate validates the configuration and returns an error if invalid.
// A supabase remote without credentials is not an error: the service runs
// on the fallback store.
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.LogLevel != "" && !slices.Contains([]string{"debug", "info", "warn", "warning", "error"}, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}

	// Validate remote backend
	validBackends := []string{BackendSupabase, BackendPostgres, BackendLocal}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}
	if c.DataBackend == BackendPostgres && c.DatabaseDSN == "" {
		errors = append(errors, "DATABASE_DSN is required when using postgres backend")
	}

	// Validate fallback backend
	validFallbacks := []string{FallbackSQLite, FallbackMemory}
	if !slices.Contains(validFallbacks, c.FallbackBackend) {
		errors = append(errors, fmt.Sprintf("invalid fallback backend '%s': must be one of %v", c.FallbackBackend, validFallbacks))
	}
	if c.FallbackBackend == FallbackSQLite {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite fallback")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate mirror
	validMirrors := []string{MirrorNone, MirrorWebhook, MirrorSheets}
	if !slices.Contains(validMirrors, c.MirrorBackend) {
		errors = append(errors, fmt.Sprintf("invalid mirror backend '%s': must be one of %v", c.MirrorBackend, validMirrors))
	}
	switch c.MirrorBackend {
	case MirrorWebhook:
		if u, err := url.Parse(c.GoogleScriptURL); c.GoogleScriptURL == "" || err != nil || u.Host == "" {
			errors = append(errors, "GOOGLE_SCRIPT_URL must be an absolute URL when using webhook mirror")
		}
	case MirrorSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets mirror")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when using sheets mirror")
		}
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasFile && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets mirror")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	// Validate worker configuration
	if c.SyncBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at least 1", c.SyncBatchSize))
	} else if c.SyncBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at most 1000", c.SyncBatchSize))
	}

	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
