package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded before reading the environment; a missing file is not an error.
const DefaultEnvFile = "configs/.env"

const devJWTSecret = "default_super_secret_key"

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required in release mode")

// Config holds application configuration.
type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DB DBConfig

	JWTSecret   string
	SessionTTL  time.Duration
	CORSOrigins []string

	Webhooks WebhookConfig
}

type DBConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

// DSN renders the postgres connection URL.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// WebhookConfig lists the workflow endpoints. An empty URL disables the call it names.
type WebhookConfig struct {
	RegisterInvoiceURL string
	LookupCompanyURL   string
	RemoveInvoiceURL   string
	ProvisionalURL     string
	FinalURL           string
	LoginAuditURL      string
	Timeout            time.Duration
}

// Load reads configs/.env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load(DefaultEnvFile)
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:     getenv("PORT", "8080"),
		GinMode:  getenv("GIN_MODE", "debug"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		DB: DBConfig{
			Host:        getenv("DB_HOST", "localhost"),
			Port:        getenv("DB_PORT", "5432"),
			User:        getenv("DB_USER", "postgres"),
			Password:    getenv("DB_PASSWORD", "postgres"),
			Name:        getenv("DB_NAME", "postgres"),
			SSLMode:     getenv("DB_SSLMODE", "disable"),
			AutoMigrate: getenvBool("DB_AUTO_MIGRATE", false),
		},
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		SessionTTL:  getenvDuration("SESSION_TTL", 30*24*time.Hour),
		CORSOrigins: getenvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		Webhooks: WebhookConfig{
			RegisterInvoiceURL: strings.TrimSpace(os.Getenv("WEBHOOK_REGISTER_INVOICE_URL")),
			LookupCompanyURL:   strings.TrimSpace(os.Getenv("WEBHOOK_LOOKUP_COMPANY_URL")),
			RemoveInvoiceURL:   strings.TrimSpace(os.Getenv("WEBHOOK_REMOVE_INVOICE_URL")),
			ProvisionalURL:     strings.TrimSpace(os.Getenv("WEBHOOK_PROVISIONAL_BATCH_URL")),
			FinalURL:           strings.TrimSpace(os.Getenv("WEBHOOK_FINAL_BATCH_URL")),
			LoginAuditURL:      strings.TrimSpace(os.Getenv("WEBHOOK_LOGIN_AUDIT_URL")),
			Timeout:            getenvDuration("WEBHOOK_TIMEOUT", 15*time.Second),
		},
	}

	if cfg.JWTSecret == "" {
		if cfg.IsRelease() {
			return Config{}, ErrMissingJWTSecret
		}
		// development fallback only
		cfg.JWTSecret = devJWTSecret
	}
	return cfg, nil
}

func (c Config) IsRelease() bool {
	return c.GinMode == "release"
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// getenvDuration accepts Go durations ("15s") or a bare number of seconds.
func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}

func getenvList(key string, def []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
