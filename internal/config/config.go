package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig      `envPrefix:"APP_"`
	Postgres PostgresConfig `envPrefix:"DB_"`
	Auth     AuthConfig     `envPrefix:"JWT_"`
}

type AppConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
}

type PostgresConfig struct {
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            string        `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER,required"`
	Password        string        `env:"PASSWORD,required"`
	DBName          string        `env:"NAME,required"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	MaxConns        int32         `env:"MAX_CONNS" envDefault:"10"`
	MinConns        int32         `env:"MIN_CONNS" envDefault:"2"`
	MaxConnLifetime time.Duration `env:"MAX_CONN_LIFETIME" envDefault:"30m"`
	MigrationsPath  string        `env:"MIGRATIONS_PATH" envDefault:"migrations"`
}

type AuthConfig struct {
	Secret   string        `env:"SECRET,required"`
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
}

// NewConfig reads .env (if present) and parses the environment into a Config.
func NewConfig() (*Config, error) {
	// .env is optional, real environments configure the process directly
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	return cfg, nil
}
