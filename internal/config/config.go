// Package config reads the application settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const devSessionSecret = "dev_fallback_secret"

// Config holds everything the server needs at startup.
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	Port        string `env:"APP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseDSN     string        `env:"DB_DSN"`
	DBMaxRetries    int           `env:"DB_MAX_RETRIES" envDefault:"10"`
	DBMaxRetryDelay time.Duration `env:"DB_MAX_RETRY_DELAY" envDefault:"30s"`

	SessionSecret string        `env:"SESSION_SECRET" envDefault:"dev_fallback_secret"`
	SessionName   string        `env:"SESSION_NAME" envDefault:"shop_session"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" envDefault:"30m"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"false"`

	WebRoot        string `env:"WEB_ROOT" envDefault:"./wwwroot"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Load parses the process environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether the app runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Validate checks values env parsing cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DB_DSN is empty (check your .env)"))
	}
	if !c.IsDevelopment() && (c.SessionSecret == "" || c.SessionSecret == devSessionSecret) {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be set in %s", c.Environment))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if c.DBMaxRetries < 0 {
		errs = append(errs, errors.New("DB_MAX_RETRIES must not be negative"))
	}
	if c.SessionMaxAge <= 0 {
		errs = append(errs, errors.New("SESSION_MAX_AGE must be positive"))
	}
	return errors.Join(errs...)
}
