package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/sirupsen/logrus"
)

// Config holds all server configuration, parsed from environment variables.
type Config struct {
	HTTPPort string `env:"PORT" envDefault:"8080"`

	DBType     string `env:"DB_TYPE" envDefault:"sqlite"`
	DBPath     string `env:"DB_PATH" envDefault:"data/mixtape.db"`
	DSNURL     string `env:"DSN_URL" envDefault:""`
	DBUser     string `env:"DB_USER" envDefault:""`
	DBPassword string `env:"DB_PASSWORD" envDefault:""`
	DBHost     string `env:"DB_HOST" envDefault:""`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBName     string `env:"DB_NAME" envDefault:"mixtape"`

	JWTSecret            string `env:"JWT_SECRET" envDefault:"mixtape-dev-secret-change-in-production"`
	JWTIssuer            string `env:"JWT_ISSUER" envDefault:"mixtape"`
	JWTExpirationMinutes int    `env:"JWT_EXPIRATION_MINUTES" envDefault:"1440"`
}

// ParseConfig parses configuration from the environment.
func ParseConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		logrus.WithError(err).Error("failed to parse environment config")
		return Config{}, err
	}
	return cfg, nil
}
