// Package config assembles the runtime configuration from defaults, an
// optional YAML file, a .env file and BOOKSEED_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"bookseed/internal/export"
	"bookseed/internal/fetch"
	"bookseed/internal/ingest"
	"bookseed/internal/logging"
	"bookseed/internal/store"
	"bookseed/internal/validate"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "bookseed.yaml"

// Environment overrides.
const (
	EnvDBDriver = "BOOKSEED_DB_DRIVER"
	EnvDBPath   = "BOOKSEED_DB_PATH"
	EnvDBDSN    = "BOOKSEED_DB_DSN"
	EnvLogLevel = "BOOKSEED_LOG_LEVEL"
	EnvHTTPAddr = "BOOKSEED_HTTP_ADDR"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Log    LogConfig     `yaml:"log"`
	Store  store.Config  `yaml:"store"`
	HTTP   fetch.Config  `yaml:"http"`
	Ingest ingest.Config `yaml:"ingest"`
	Export export.Config `yaml:"export"`
	Serve  ServeConfig   `yaml:"serve"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

type ServeConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

func Default() Config {
	return Config{
		Log:    LogConfig{Level: "info"},
		Store:  store.DefaultConfig(),
		HTTP:   fetch.DefaultConfig(),
		Ingest: ingest.DefaultConfig(),
		Export: export.DefaultConfig(),
		Serve:  ServeConfig{Addr: ":8080"},
	}
}

// Load reads path over the defaults, then applies the environment. A
// missing file, or a missing .env, is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn("could not load .env", "err", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logging.Debug("no config file, using defaults", "path", path)
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := decode(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Store.Driver = GetEnv(EnvDBDriver, c.Store.Driver)
	c.Store.Path = GetEnv(EnvDBPath, c.Store.Path)
	c.Store.DSN = GetEnv(EnvDBDSN, c.Store.DSN)
	c.Log.Level = strings.ToLower(GetEnv(EnvLogLevel, c.Log.Level))
	c.Serve.Addr = GetEnv(EnvHTTPAddr, c.Serve.Addr)
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// GetEnv returns the variable if set, else the first fallback.
func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}
