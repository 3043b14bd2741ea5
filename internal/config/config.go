package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// DBConfig is the part of the environment every binary needs.
type DBConfig struct {
	DBHost     string `env:"DB_HOST"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

type Config struct {
	AppEnv          string        `env:"APP_ENV" envDefault:"development"`
	AppPort         string        `env:"APP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	DBConfig

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"168h"`

	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"http://localhost:3000"`

	UploadDir     string `env:"UPLOAD_DIR" envDefault:"./uploads"`
	UploadBaseURL string `env:"UPLOAD_BASE_URL" envDefault:"/images"`
	MaxUploadMB   int64  `env:"MAX_UPLOAD_MB" envDefault:"5"`

	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// TRACING_EXPORTER is "none" (spans recorded, not exported) or "stdout".
	TracingExporter string `env:"TRACING_EXPORTER" envDefault:"none"`

	// Manual transfer destinations, e.g. "BCA:123-456-7890,MANDIRI:098-765-4321".
	PaymentAccounts      map[string]string `env:"PAYMENT_ACCOUNTS" envSeparator:"," envKeyValSeparator:":" envDefault:"BCA:123-456-7890,MANDIRI:098-765-4321"`
	PaymentAccountHolder string            `env:"PAYMENT_ACCOUNT_HOLDER" envDefault:"Zidoy Velg Official"`
}

var (
	ErrMissingDBHost    = errors.New("DB_HOST is not set")
	ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")
)

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.DBHost == "" {
		return nil, ErrMissingDBHost
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	return cfg, nil
}

// LoadDBConfig reads only the database settings, for the maintenance
// binaries that never serve HTTP.
func LoadDBConfig() (*DBConfig, error) {
	_ = godotenv.Load()

	cfg := &DBConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.DBHost == "" {
		return nil, ErrMissingDBHost
	}
	return cfg, nil
}

func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
