// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, Slack and Shopify credentials, tracking
// store selection, rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// SlackConfig defines the messaging-boundary settings.
type SlackConfig struct {
	BotToken string // SLACK_BOT_TOKEN (xoxb-...)
	// ChannelIDs is the ordered list of channels the locator scans; the
	// first channel is also where self-announced roots are posted.
	ChannelIDs   []string      // SLACK_CHANNEL_IDS (CSV, order significant)
	HistoryLimit int           // CONVERSATIONS_HISTORY_LIMIT
	APITimeout   time.Duration // SLACK_API_TIMEOUT per outbound call
}

// ShopifyConfig defines the commerce-boundary settings.
type ShopifyConfig struct {
	WebhookSecret string // SHOPIFY_WEBHOOK_SECRET (HMAC; empty disables verification)
	ShopName      string // SHOPIFY_SHOP_NAME (the *.myshopify.com subdomain)
	APIKey        string // SHOPIFY_API_KEY
	APIToken      string // SHOPIFY_API_TOKEN (Admin API access token)
	// Stock metafield location; both empty disables the stock domain.
	StockNamespace string // STOCK_METAFIELD_NAMESPACE
	StockKey       string // STOCK_METAFIELD_KEY
}

// StoreConfig selects the tracking-store backend.
type StoreConfig struct {
	Backend string // STORE_BACKEND: memory|sqlite
	DBPath  string // DB_PATH (sqlite backend only)
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
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// Boundaries
	Slack   SlackConfig
	Shopify ShopifyConfig

	// AnnounceMode selects the orders/create behavior: "external" (an
	// upstream flow posts the announcement) or "self" (this service does).
	AnnounceMode string

	// Tracking store
	Store StoreConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

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
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// Boundaries
		Slack: SlackConfig{
			BotToken:     getenv("SLACK_BOT_TOKEN", ""),
			ChannelIDs:   splitCSV(getenv("SLACK_CHANNEL_IDS", "C0A068PHZMY")),
			HistoryLimit: getint("CONVERSATIONS_HISTORY_LIMIT", 200),
			APITimeout:   getdur("SLACK_API_TIMEOUT", 10*time.Second),
		},
		Shopify: ShopifyConfig{
			WebhookSecret:  getenv("SHOPIFY_WEBHOOK_SECRET", ""),
			ShopName:       getenv("SHOPIFY_SHOP_NAME", ""),
			APIKey:         getenv("SHOPIFY_API_KEY", ""),
			APIToken:       getenv("SHOPIFY_API_TOKEN", ""),
			StockNamespace: getenv("STOCK_METAFIELD_NAMESPACE", ""),
			StockKey:       getenv("STOCK_METAFIELD_KEY", ""),
		},

		AnnounceMode: strings.ToLower(getenv("ANNOUNCE_MODE", "external")),

		// Tracking store
		Store: StoreConfig{
			Backend: strings.ToLower(getenv("STORE_BACKEND", "memory")),
			DBPath:  getenv("DB_PATH", "notifier.db"),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-shopify-slack-notifier"),
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

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
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
	if len(cfg.Slack.ChannelIDs) == 0 {
		return cfg, errors.New("SLACK_CHANNEL_IDS must list at least one channel")
	}
	if cfg.Slack.HistoryLimit < 1 {
		return cfg, errors.New("CONVERSATIONS_HISTORY_LIMIT must be >= 1")
	}
	if cfg.Slack.APITimeout <= 0 {
		return cfg, errors.New("SLACK_API_TIMEOUT must be > 0")
	}
	switch cfg.AnnounceMode {
	case "external", "self":
	default:
		return cfg, errors.New("ANNOUNCE_MODE must be external or self")
	}
	switch cfg.Store.Backend {
	case "memory", "sqlite":
	default:
		return cfg, errors.New("STORE_BACKEND must be memory or sqlite")
	}
	if cfg.Store.Backend == "sqlite" && strings.TrimSpace(cfg.Store.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty with the sqlite backend")
	}
	if (cfg.Shopify.StockNamespace == "") != (cfg.Shopify.StockKey == "") {
		return cfg, errors.New("STOCK_METAFIELD_NAMESPACE and STOCK_METAFIELD_KEY must be set together")
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

// StockEnabled reports whether the stock metafield side query is
// configured.
func (c ShopifyConfig) StockEnabled() bool {
	return c.StockNamespace != "" && c.StockKey != "" && c.ShopName != "" && c.APIToken != ""
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
