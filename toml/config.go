// Package toml loads siteindex configuration from TOML files.
package toml

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/siteindex"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables consulted by Load.
const (
	ConfigEnv = "SITEINDEX_CONFIG"
	DBEnv     = "SITEINDEX_DB"
)

// fileConfig mirrors the file layout. Pointer fields distinguish an absent
// key from an explicit zero.
type fileConfig struct {
	DBPath          *string  `toml:"db_path"`
	UserAgent       *string  `toml:"user_agent"`
	Timeout         *string  `toml:"timeout"`
	RateLimit       *float64 `toml:"rate_limit"`
	MaxSitemaps     *int     `toml:"max_sitemaps"`
	MaxSitemapDepth *int     `toml:"max_sitemap_depth"`
	MaxChunkChars   *int     `toml:"max_chunk_chars"`
	ContentFormat   *string  `toml:"content_format"`
	Extractor       *string  `toml:"extractor"`
}

// Loader resolves the config file location and environment overrides.
type Loader struct {
	// Getenv reads environment variables. Defaults to os.Getenv.
	Getenv func(string) string

	// HomeDir returns the user's home directory. Defaults to os.UserHomeDir.
	HomeDir func() (string, error)
}

// Load reads the config file named by SITEINDEX_CONFIG, or
// ~/.siteindex/config.toml, then applies SITEINDEX_DB. A missing file
// yields the defaults; an empty db_path becomes ~/.siteindex/siteindex.db.
func (l *Loader) Load() (siteindex.Config, error) {
	home, homeErr := l.homeDir()

	path := l.getenv(ConfigEnv)
	if path == "" && homeErr == nil {
		path = filepath.Join(home, ".siteindex", "config.toml")
	}

	cfg := siteindex.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return siteindex.Config{}, err
		}
	}

	if db := l.getenv(DBEnv); db != "" {
		cfg.DBPath = db
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "siteindex.db"
		if homeErr == nil {
			cfg.DBPath = filepath.Join(home, ".siteindex", "siteindex.db")
		}
	}

	return cfg, nil
}

func (l *Loader) getenv(key string) string {
	if l.Getenv != nil {
		return l.Getenv(key)
	}
	return os.Getenv(key)
}

func (l *Loader) homeDir() (string, error) {
	if l.HomeDir != nil {
		return l.HomeDir()
	}
	return os.UserHomeDir()
}

// LoadFile reads the config at path over the defaults and validates it.
// A missing file yields the defaults.
func LoadFile(path string) (siteindex.Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return siteindex.DefaultConfig(), nil
	}
	if err != nil {
		return siteindex.Config{}, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return siteindex.Config{}, siteindex.Errorf(siteindex.EINVALID, "%s: %s", path, siteindex.ErrorMessage(err))
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (siteindex.Config, error) {
	var fc fileConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		var missing *toml.StrictMissingError
		if errors.As(err, &missing) {
			return siteindex.Config{}, siteindex.Errorf(siteindex.EINVALID, "unknown config key: %s", missing.String())
		}
		return siteindex.Config{}, siteindex.Errorf(siteindex.EINVALID, "invalid config: %v", err)
	}

	cfg := siteindex.DefaultConfig()
	setString(&cfg.DBPath, fc.DBPath)
	setString(&cfg.UserAgent, fc.UserAgent)
	setString(&cfg.ContentFormat, fc.ContentFormat)
	setString(&cfg.Extractor, fc.Extractor)
	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return siteindex.Config{}, siteindex.Errorf(siteindex.EINVALID, "invalid timeout %q", *fc.Timeout)
		}
		cfg.Timeout = d
	}
	if fc.RateLimit != nil {
		cfg.RateLimit = *fc.RateLimit
	}
	if fc.MaxSitemaps != nil {
		cfg.MaxSitemaps = *fc.MaxSitemaps
	}
	if fc.MaxSitemapDepth != nil {
		cfg.MaxSitemapDepth = *fc.MaxSitemapDepth
	}
	if fc.MaxChunkChars != nil {
		cfg.MaxChunkChars = *fc.MaxChunkChars
	}

	if err := cfg.Validate(); err != nil {
		return siteindex.Config{}, err
	}
	return cfg, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
