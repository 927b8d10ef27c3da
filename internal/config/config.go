// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes the bot credentials,
// admin allow-list, catalog and ledger locations, the optional admin HTTP
// server, logging and observability settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// BotConfig holds Telegram transport settings.
type BotConfig struct {
	Token       string        // TG_TOKEN (required)
	APIEndpoint string        // TG_API_ENDPOINT, printf template with token and method
	PollTimeout time.Duration // TG_POLL_TIMEOUT, long-poll wait
	SkipPending bool          // TG_SKIP_PENDING, drop updates queued while offline
	Debug       bool          // TG_DEBUG, verbose client logging
}

// AIConfig holds completion provider settings.
type AIConfig struct {
	APIKey  string        // OPENAI_KEY (required)
	Model   string        // OPENAI_MODEL
	BaseURL string        // OPENAI_BASE_URL, optional compatible gateway
	Timeout time.Duration // AI_TIMEOUT, per-call deadline
}

// AdminConfig holds the admin notification channel and allow-list.
type AdminConfig struct {
	Channel  string  // ADMIN_CHANNEL, "@name" or numeric chat id
	IDs      []int64 // ADMIN_IDS, comma-separated Telegram user ids; empty disables admin commands
	APIToken string  // ADMIN_API_TOKEN, bearer token for the admin HTTP API
}

// IsAdmin reports whether id is on the allow-list.
func (a AdminConfig) IsAdmin(id int64) bool {
	for _, v := range a.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// SupportConfig configures the support button.
type SupportConfig struct {
	URL   string // SUPPORT_URL
	Label string // SUPPORT_LABEL
}

// DBConfig selects the ledger storage.
type DBConfig struct {
	Driver string // DB_DRIVER: sqlite|postgres
	Path   string // DB_PATH, SQLite file
	DSN    string // DB_DSN, Postgres connection string
}

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "elix-bot")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Bot
	Bot     BotConfig
	AI      AIConfig
	Admin   AdminConfig
	Support SupportConfig

	// Catalog
	CatalogPath    string // CATALOG_PATH, .xlsx or .csv
	MatchThreshold int    // MATCH_THRESHOLD, exclusive, 0..100

	// Ledger
	DB DBConfig

	// Admin HTTP server
	HTTPEnabled       bool          // HTTP_ENABLED, off unless asked for
	HTTPHost          string        // HTTP_HOST, bind address (loopback by default)
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MinAdminTokenLen is the shortest accepted ADMIN_API_TOKEN.
const MinAdminTokenLen = 16

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	adminIDs, idsErr := parseIDs(getenv("ADMIN_IDS", ""))

	cfg := Config{
		Bot: BotConfig{
			Token:       strings.TrimSpace(os.Getenv("TG_TOKEN")),
			APIEndpoint: getenv("TG_API_ENDPOINT", ""),
			PollTimeout: getdur("TG_POLL_TIMEOUT", 60*time.Second),
			SkipPending: getbool("TG_SKIP_PENDING", true),
			Debug:       getbool("TG_DEBUG", false),
		},
		AI: AIConfig{
			APIKey:  strings.TrimSpace(os.Getenv("OPENAI_KEY")),
			Model:   getenv("OPENAI_MODEL", "gpt-3.5-turbo"),
			BaseURL: getenv("OPENAI_BASE_URL", ""),
			Timeout: getdur("AI_TIMEOUT", 45*time.Second),
		},
		Admin: AdminConfig{
			Channel:  strings.TrimSpace(getenv("ADMIN_CHANNEL", "@your_channel")),
			IDs:      adminIDs,
			APIToken: strings.TrimSpace(os.Getenv("ADMIN_API_TOKEN")),
		},
		Support: SupportConfig{
			URL:   getenv("SUPPORT_URL", "https://t.me/ekaterina_username"),
			Label: getenv("SUPPORT_LABEL", "Написать Екатерине"),
		},

		CatalogPath:    getenv("CATALOG_PATH", "data/prices.xlsx"),
		MatchThreshold: getint("MATCH_THRESHOLD", 60),

		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:   getenv("DB_PATH", "elix.db"),
			DSN:    getenv("DB_DSN", ""),
		},

		HTTPEnabled:       getbool("HTTP_ENABLED", false),
		HTTPHost:          strings.TrimSpace(getenv("HTTP_HOST", "127.0.0.1")),
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "elix-bot"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.DB.Driver == "sqlite3" {
		cfg.DB.Driver = "sqlite"
	}

	// --- validation ---
	if cfg.Bot.Token == "" {
		return cfg, errors.New("TG_TOKEN must be set")
	}
	if cfg.AI.APIKey == "" {
		return cfg, errors.New("OPENAI_KEY must be set")
	}
	if idsErr != nil {
		return cfg, idsErr
	}
	if cfg.Admin.Channel == "" {
		return cfg, errors.New("ADMIN_CHANNEL must not be empty")
	}
	if cfg.Bot.PollTimeout < time.Second {
		return cfg, errors.New("TG_POLL_TIMEOUT must be at least 1s")
	}
	if cfg.AI.Timeout < 0 {
		return cfg, errors.New("AI_TIMEOUT must be >= 0")
	}
	if strings.TrimSpace(cfg.CatalogPath) == "" {
		return cfg, errors.New("CATALOG_PATH must not be empty")
	}
	if cfg.MatchThreshold < 0 || cfg.MatchThreshold > 100 {
		return cfg, errors.New("MATCH_THRESHOLD must be between 0 and 100")
	}
	switch cfg.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DB.DSN) == "" {
			return cfg, errors.New("DB_DSN must be set when DB_DRIVER=postgres")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if cfg.HTTPEnabled {
		if len(cfg.Admin.APIToken) < MinAdminTokenLen {
			return cfg, fmt.Errorf("ADMIN_API_TOKEN of at least %d characters is required when HTTP_ENABLED", MinAdminTokenLen)
		}
		if len(cfg.Admin.IDs) == 0 {
			return cfg, errors.New("ADMIN_IDS must list at least one id when HTTP_ENABLED")
		}
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parseIDs reads a comma-separated list of Telegram user ids. Any entry
// that is not an integer is an error.
func parseIDs(s string) ([]int64, error) {
	parts := splitCSV(s)
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_IDS: %q is not a numeric user id", p)
		}
		out = append(out, id)
	}
	return out, nil
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
