// Package config loads storefront settings from the environment.
//
// A .env file, when present, is loaded first; variables already set in the
// process environment win over the file. CLI flags override both.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config holds settings shared by the storefront commands.
type Config struct {
	// APIURL is the base URL of the remote topic collection.
	APIURL string `env:"STOREFRONT_API_URL,default=http://localhost:8080"`

	// Timeout bounds each remote call.
	Timeout time.Duration `env:"STOREFRONT_TIMEOUT,default=30s"`

	// DBPath is the SQLite file of the development topic server.
	DBPath string `env:"STOREFRONT_DB,default=storefront.db"`

	// Addr is the listen address of the development topic server.
	Addr string `env:"STOREFRONT_ADDR,default=:8080"`

	// CatalogPath overrides the embedded product catalog.
	CatalogPath string `env:"STOREFRONT_CATALOG"`
}

// Load reads env files (".env" when none are named), then decodes the
// environment. Missing env files are not an error.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that the decoder cannot.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid STOREFRONT_API_URL %q: %w", c.APIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("invalid STOREFRONT_API_URL %q: want an http or https URL", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid STOREFRONT_TIMEOUT %s: must be positive", c.Timeout)
	}
	return nil
}
