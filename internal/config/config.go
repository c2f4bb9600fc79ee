package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir   = ".tweetq"
	DefaultConfigFile  = "config.yaml"
	DefaultStoragePath = ".tweetq/tweetq.db"
	DefaultSince       = 7 * 24 * time.Hour
	DefaultTimezone    = "UTC"
	DefaultFormat      = "terminal"
	DefaultLogLevel    = "info"
)

// Duration wraps time.Duration for YAML unmarshaling from strings like "24h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	Sources SourcesConfig `yaml:"sources"`
	Storage StorageConfig `yaml:"storage"`
	Query   QueryConfig   `yaml:"query"`
	Privacy PrivacyConfig `yaml:"privacy"`
	Log     LogConfig     `yaml:"log"`
}

type SourcesConfig struct {
	Feeds []string `yaml:"feeds"` // RSS/Atom feed URLs
	Files []string `yaml:"files"` // JSONL post dumps, relative to the config dir
}

type StorageConfig struct {
	Path       string `yaml:"path"`
	RetainDays int    `yaml:"retain_days"` // 0 keeps everything
}

type QueryConfig struct {
	Since    Duration `yaml:"since"`
	Timezone string   `yaml:"timezone"`
	Format   string   `yaml:"format"`
}

type PrivacyConfig struct {
	Redact RedactConfig `yaml:"redact"`
}

type RedactConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Patterns []string `yaml:"patterns"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Location returns the display time zone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Query.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads config.yaml from dir, applies defaults, resolves paths, and validates.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config dir is required")
	}

	path := filepath.Join(dir, DefaultConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)
	resolvePaths(&cfg, dir)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath
	}
	if cfg.Query.Since.Duration == 0 {
		cfg.Query.Since.Duration = DefaultSince
	}
	if cfg.Query.Timezone == "" {
		cfg.Query.Timezone = DefaultTimezone
	}
	if cfg.Query.Format == "" {
		cfg.Query.Format = DefaultFormat
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}

// resolvePaths expands environment variables in the storage path and anchors
// relative source files at the config dir.
func resolvePaths(cfg *Config, dir string) {
	cfg.Storage.Path = os.ExpandEnv(cfg.Storage.Path)
	for i, f := range cfg.Sources.Files {
		f = os.ExpandEnv(f)
		if !filepath.IsAbs(f) {
			f = filepath.Join(dir, f)
		}
		cfg.Sources.Files[i] = f
	}
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Storage.Path) == "" {
		return errors.New("storage.path: must not be empty")
	}
	if cfg.Storage.RetainDays < 0 {
		return fmt.Errorf("storage.retain_days: must be >= 0, got %d", cfg.Storage.RetainDays)
	}
	if cfg.Query.Since.Duration < 0 {
		return fmt.Errorf("query.since: must be positive, got %s", cfg.Query.Since.Duration)
	}

	if _, err := time.LoadLocation(cfg.Query.Timezone); err != nil {
		return fmt.Errorf("query.timezone: %w", err)
	}

	switch cfg.Query.Format {
	case "terminal", "json", "markdown":
		// valid
	default:
		return fmt.Errorf("query.format: unknown format %q (want terminal, json, or markdown)", cfg.Query.Format)
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("log.level: unknown level %q (want debug, info, warn, or error)", cfg.Log.Level)
	}

	for _, feed := range cfg.Sources.Feeds {
		if !strings.HasPrefix(feed, "http://") && !strings.HasPrefix(feed, "https://") {
			return fmt.Errorf("sources.feeds: %q is not an http(s) URL", feed)
		}
	}

	return nil
}
