package configs

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// =======================
// CONFIG
// =======================

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	Port     string `env:"PORT" envDefault:"5000"`
	Timezone string `env:"APP_TIMEZONE" envDefault:"Africa/Lome"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogDir   string `env:"LOG_DIR" envDefault:"logs"`

	DB       DBConfig
	Auth     AuthConfig
	Receipts ReceiptConfig

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
}

type DBConfig struct {
	URL                string `env:"DB_URL"`
	Host               string `env:"DB_HOST" envDefault:"localhost"`
	Port               string `env:"DB_PORT" envDefault:"5432"`
	User               string `env:"DB_USER" envDefault:"postgres"`
	Password           string `env:"DB_PASSWORD"`
	Name               string `env:"DB_NAME" envDefault:"garderie"`
	SSLMode            string `env:"DB_SSLMODE" envDefault:"disable"`
	StatementTimeoutMS int    `env:"DB_STATEMENT_TIMEOUT_MS" envDefault:"5000"`
	MaxOpenConns       int    `env:"DB_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns       int    `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
}

type AuthConfig struct {
	JWTSecret             string        `env:"JWT_SECRET"`
	JWTExpire             time.Duration `env:"JWT_EXPIRE" envDefault:"24h"`
	MaxLoginAttempts      int           `env:"AUTH_MAX_LOGIN_ATTEMPTS" envDefault:"5"`
	LockDuration          time.Duration `env:"AUTH_LOCK_DURATION" envDefault:"2h"`
	BlacklistCleanupCron  string        `env:"AUTH_BLACKLIST_CLEANUP_CRON" envDefault:"@every 24h"`
	BlacklistRetentionTTL time.Duration `env:"AUTH_BLACKLIST_RETENTION" envDefault:"168h"`
}

type ReceiptConfig struct {
	// counter | count
	SequenceStrategy string `env:"RECEIPT_SEQUENCE_STRATEGY" envDefault:"counter"`
	ChromeBin        string `env:"RECEIPT_CHROME_BIN"`
	CompanyName      string `env:"RECEIPT_COMPANY_NAME" envDefault:"Garderie Les Petits Anges"`
	CompanyAddress   string `env:"RECEIPT_COMPANY_ADDRESS"`
	CompanyPhone     string `env:"RECEIPT_COMPANY_PHONE"`
	Currency         string `env:"RECEIPT_CURRENCY" envDefault:"FCFA"`
}

// DSN builds the postgres connection string. DB_URL wins when set.
func (d DBConfig) DSN(appName string) string {
	if strings.TrimSpace(d.URL) != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=%s&options=-c%%20statement_timeout=%d",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode, appName, d.StatementTimeoutMS,
	)
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Location resolves APP_TIMEZONE, falling back to UTC.
func (c Config) Location() *time.Location {
	if loc, err := time.LoadLocation(strings.TrimSpace(c.Timezone)); err == nil {
		return loc
	}
	return time.UTC
}

// =======================
// ENV LOADER
// =======================

// LoadEnv loads .env (outside of managed environments) and parses Config.
func LoadEnv() (*Config, error) {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" && os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ .env not found, using system ENV")
		} else {
			log.Println("✅ .env loaded")
		}
	}
	return Parse()
}

// Parse reads Config from the current environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.IsProduction() && strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}
	switch cfg.Receipts.SequenceStrategy {
	case "counter", "count":
	default:
		return nil, fmt.Errorf("RECEIPT_SEQUENCE_STRATEGY must be counter or count, got %q", cfg.Receipts.SequenceStrategy)
	}
	return cfg, nil
}
