// Package config provides layered configuration loading: compiled-in
// defaults, an optional YAML file, then environment-variable overrides
// (SPEC_FULL §4.9).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig controls the main HTTP API.
type ServerConfig struct {
	Host string `yaml:"host" env:"SERVER_HOST"`
	Port int    `yaml:"port" env:"SERVER_PORT"`
}

// AdminServerConfig controls the secondary ops/health surface (SPEC_FULL §4.15).
type AdminServerConfig struct {
	Host string `yaml:"host" env:"ADMIN_HOST"`
	Port int    `yaml:"port" env:"ADMIN_PORT"`
}

// DatabaseConfig controls PostgreSQL persistence.
type DatabaseConfig struct {
	DSN             string `yaml:"dsn" env:"DATABASE_URL"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifeSecs int    `yaml:"conn_max_lifetime_seconds" env:"DATABASE_CONN_MAX_LIFETIME"`
	MigrateOnStart  bool   `yaml:"migrate_on_start" env:"DATABASE_MIGRATE_ON_START"`
}

// LoggingConfig controls application logging.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// AuthConfig controls JWT issuance/validation and password hashing.
type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTExpirationHrs int    `yaml:"jwt_expiration_hours" env:"JWT_EXPIRATION_HOURS"`
	BcryptCost       int    `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST"`
}

// RateLimitConfig holds rate limiter settings. The HTTP router does not
// read them; it applies a fixed limit of 20 requests/second with a burst
// of 40.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"RATE_LIMIT_RPS"`
	Burst             int     `yaml:"burst" env:"RATE_LIMIT_BURST"`
}

// SchedulerConfig controls the cron expressions for §4.6's jobs. The
// overdue-loans and upcoming-maintenance crons are applied at startup;
// OverdueRentalsCron is not read, and the overdue-rentals job runs on a
// fixed every-two-hours expression set in cmd/server.
type SchedulerConfig struct {
	OverdueLoansCron        string `yaml:"overdue_loans_cron" env:"SCHEDULER_OVERDUE_LOANS_CRON"`
	UpcomingMaintenanceCron string `yaml:"upcoming_maintenance_cron" env:"SCHEDULER_UPCOMING_MAINTENANCE_CRON"`
	OverdueRentalsCron      string `yaml:"overdue_rentals_cron" env:"SCHEDULER_OVERDUE_RENTALS_CRON"`
}

// SensorConfig controls ingest/alert defaults (§4.5).
type SensorConfig struct {
	DefaultAlertDelaySeconds int `yaml:"default_alert_delay_seconds" env:"SENSOR_ALERT_DELAY_SECONDS"`
}

// BillingConfig controls the rate-model defaults (§4.3).
type BillingConfig struct {
	DefaultMinimumHours       float64 `yaml:"default_minimum_hours" env:"BILLING_DEFAULT_MINIMUM_HOURS"`
	DefaultOvertimeMultiplier float64 `yaml:"default_overtime_multiplier" env:"BILLING_DEFAULT_OVERTIME_MULTIPLIER"`
	DefaultStandbyMultiplier  float64 `yaml:"default_standby_multiplier" env:"BILLING_DEFAULT_STANDBY_MULTIPLIER"`
	DefaultTaxPercentage      float64 `yaml:"default_tax_percentage" env:"BILLING_DEFAULT_TAX_PERCENTAGE"`
	InvoiceDueDays            int     `yaml:"invoice_due_days" env:"BILLING_INVOICE_DUE_DAYS"`
}

// RedisConfig controls the permission-cache backend (SPEC_FULL §4.12).
type RedisConfig struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED"`
	Addr    string `yaml:"addr" env:"REDIS_ADDR"`
	TTLSecs int    `yaml:"ttl_seconds" env:"REDIS_PERMISSION_CACHE_TTL"`
}

// PermissionsConfig points at the declarative RBAC route matrix file
// (SPEC_FULL §4.12).
type PermissionsConfig struct {
	MatrixFile string `yaml:"matrix_file" env:"RBAC_MATRIX_FILE"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Admin       AdminServerConfig `yaml:"admin"`
	Database    DatabaseConfig    `yaml:"database"`
	Logging     LoggingConfig     `yaml:"logging"`
	Auth        AuthConfig        `yaml:"auth"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	Sensors     SensorConfig      `yaml:"sensors"`
	Billing     BillingConfig     `yaml:"billing"`
	Redis       RedisConfig       `yaml:"redis"`
	Permissions PermissionsConfig `yaml:"permissions"`
}

// New returns a configuration populated with defaults, matching the
// environment variable defaults named in spec §6.
func New() *Config {
	return &Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: 8080},
		Admin:  AdminServerConfig{Host: "127.0.0.1", Port: 8081},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifeSecs: 300,
			MigrateOnStart:  true,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Auth: AuthConfig{
			JWTExpirationHrs: 24,
			BcryptCost:       12,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 10,
			Burst:             20,
		},
		Scheduler: SchedulerConfig{
			OverdueLoansCron:        "0 0 * * *",
			UpcomingMaintenanceCron: "0 1 * * *",
			OverdueRentalsCron:      "0 0 * * *",
		},
		Sensors: SensorConfig{DefaultAlertDelaySeconds: 60},
		Billing: BillingConfig{
			DefaultMinimumHours:       200,
			DefaultOvertimeMultiplier: 1.25,
			DefaultStandbyMultiplier:  0.50,
			DefaultTaxPercentage:      11,
			InvoiceDueDays:            30,
		},
		Redis:       RedisConfig{Addr: "127.0.0.1:6379", TTLSecs: 300},
		Permissions: PermissionsConfig{MatrixFile: "configs/permissions.yaml"},
	}
}

// JWTExpiration returns the configured JWT TTL as a Duration.
func (c AuthConfig) JWTExpiration() time.Duration {
	if c.JWTExpirationHrs <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.JWTExpirationHrs) * time.Hour
}

// Load loads configuration from an optional YAML file and then applies
// environment-variable overrides, matching the layering in SPEC_FULL §4.9.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := New()

	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		path = "configs/config.yaml"
	}
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := envdecode.Decode(cfg); err != nil {
		if !strings.Contains(err.Error(), "none of the target fields were set") {
			return nil, fmt.Errorf("decode env: %w", err)
		}
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
