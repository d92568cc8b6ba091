package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config - libadmin settings
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Locale  LocaleConfig
}

// ServerConfig - HTTP listener of the admin client
type ServerConfig struct {
	Addr string `env:"LIBADMIN_HTTP_ADDR" envDefault:":3000"`
	Env  string `env:"LIBADMIN_ENV" envDefault:"development"`
}

// BackendConfig - library backend REST API
type BackendConfig struct {
	URL       string        `env:"LIBADMIN_API_URL" envDefault:"http://localhost:8080"`
	Timeout   time.Duration `env:"LIBADMIN_API_TIMEOUT" envDefault:"10s"`
	LoginPath string        `env:"LIBADMIN_LOGIN_PATH" envDefault:"/login"`
}

// LocaleConfig - dictionaries
type LocaleConfig struct {
	DefaultLanguage string `env:"LIBADMIN_DEFAULT_LANGUAGE" envDefault:"en"`
	// URL serves /locales/{lang}/dictionary.json; empty uses the built-in set.
	URL string `env:"LIBADMIN_LOCALES_URL"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment only")
	}
	return Parse()
}

// Parse reads configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Backend.Timeout <= 0 {
		return nil, fmt.Errorf("LIBADMIN_API_TIMEOUT must be positive, got %s", cfg.Backend.Timeout)
	}
	return cfg, nil
}
