package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	ListenAddress string        `env:"LISTEN_ADDRESS" envDefault:":8080"`
	CatalogUrl    string        `env:"CATALOG_URL" envDefault:"https://fakestoreapi.com/"`
	RedisUrl      string        `env:"REDIS_URL"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDb       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTtl      time.Duration `env:"CACHE_TTL" envDefault:"10m"`
	RabbitUrl     string        `env:"RABBIT_HOST"`
	Country       string        `env:"COUNTRY" envDefault:"se"`
	FetchRetries  int           `env:"FETCH_RETRIES" envDefault:"3"`
	FetchBackoff  time.Duration `env:"FETCH_BACKOFF" envDefault:"500ms"`
	OtelEndpoint  string        `env:"OTEL_ENDPOINT"`
	SessionTtl    time.Duration `env:"SESSION_TTL" envDefault:"30m"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if cfg.FetchRetries < 0 {
		return cfg, fmt.Errorf("FETCH_RETRIES must not be negative, got %d", cfg.FetchRetries)
	}
	return cfg, nil
}

func (c Config) CacheEnabled() bool {
	return c.RedisUrl != ""
}

func (c Config) MessagingEnabled() bool {
	return c.RabbitUrl != ""
}
