package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `env:"APP_ENV" env-default:"local"`
	HTTP     HTTP
	Postgres Postgres
	Log      Log
	CORS     CORS
	Kafka    Kafka
	Seed     bool `env:"SEED_ON_START" env-default:"true"`
}

type HTTP struct {
	Addr            string        `env:"HTTP_ADDR" env-default:":8082"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type Postgres struct {
	Host            string        `env:"POSTGRES_HOST" env-default:"localhost"`
	Port            string        `env:"POSTGRES_PORT" env-default:"5432"`
	User            string        `env:"POSTGRES_USER" env-default:"postgres"`
	Password        string        `env:"POSTGRES_PASSWORD" env-default:"postgres"`
	DB              string        `env:"POSTGRES_DB" env-default:"catalog"`
	SSLMode         string        `env:"POSTGRES_SSLMODE" env-default:"disable"`
	MaxOpenConns    int           `env:"POSTGRES_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `env:"POSTGRES_MAX_IDLE_CONNS" env-default:"2"`
	ConnMaxLifetime time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME" env-default:"1h"`
}

// DSN renders the keyword/value connection string understood by both
// pgx and lib/pq.
func (p Postgres) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DB, p.SSLMode,
	)
}

type Log struct {
	Level      string `env:"LOG_LEVEL" env-default:"info"`
	Mode       string `env:"LOG_MODE" env-default:"development"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" env-default:"64"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" env-default:"7"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" env-default:"7"`
}

type CORS struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000,http://localhost:3001" env-separator:","`
}

type Kafka struct {
	Brokers  []string `env:"KAFKA_BROKERS" env-separator:","`
	ClientID string   `env:"KAFKA_CLIENT_ID" env-default:"catalog-service"`
}

// Load reads an optional .env file from the working directory and then
// decodes the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return &cfg, nil
}
