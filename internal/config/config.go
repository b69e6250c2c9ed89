// Package config loads the service and bot settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Addr        string `envconfig:"ADDR" default:":443"`
	TLSCert     string `envconfig:"TLS_CERT" default:"server.crt"`
	TLSKey      string `envconfig:"TLS_KEY" default:"server.key"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	TokenKey    string `envconfig:"TOKEN_KEY"`
	TokenBot    string `envconfig:"TOKEN_BOT"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	RateLimit float64 `envconfig:"RATE_LIMIT" default:"1"`
	RateBurst int     `envconfig:"RATE_BURST" default:"3"`

	DefaultRho float64 `envconfig:"DEFAULT_RHO" default:"1900"`
	StaticDir  string  `envconfig:"STATIC_DIR" default:"./static"`
	DocsDir    string  `envconfig:"DOCS_DIR" default:"./docs"`
}

// Load reads the given .env files (".env" when none is named) and then the
// process environment. Missing files are skipped.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// RequireServer checks the settings the HTTP service cannot start without.
func (c Config) RequireServer() error {
	var errs []error
	if c.TokenKey == "" {
		errs = append(errs, errors.New("TOKEN_KEY is not set"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is not set"))
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		errs = append(errs, fmt.Errorf("invalid rate limit %v/%d", c.RateLimit, c.RateBurst))
	}
	return errors.Join(errs...)
}
