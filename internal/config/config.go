package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "10s" or "2m" decode.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds the full bot configuration loaded from YAML.
type Config struct {
	Feed struct {
		BaseURL  string   `yaml:"base_url"`
		Subjects []string `yaml:"subjects"`
		Timeout  Duration `yaml:"timeout"`
	} `yaml:"feed"`

	Archive struct {
		Dir       string   `yaml:"dir"`
		Retention Duration `yaml:"retention"`
	} `yaml:"archive"`

	Render struct {
		EngineBin    string `yaml:"engine_bin"`
		TimeoutSecs  int    `yaml:"timeout_secs"`
		TemplatePath string `yaml:"template_path"`
		Width        int    `yaml:"width"`
		PPI          int    `yaml:"ppi"`
	} `yaml:"render"`

	Bluesky struct {
		PDSURL   string   `yaml:"pds_url"`
		MinDelay Duration `yaml:"min_delay"`
		MaxDelay Duration `yaml:"max_delay"`
		DryRun   bool     `yaml:"dry_run"`
	} `yaml:"bluesky"`

	Logger struct {
		File       string `yaml:"file"`
		Level      string `yaml:"level"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logger"`
}

// Credentials are read from the environment only, never from the config file.
type Credentials struct {
	Handle      string `envconfig:"BSKY_HANDLE"`
	AppPassword string `envconfig:"BSKY_APP_PASSWORD"`
}

// LoadCredentials reads Bluesky credentials from the environment.
func LoadCredentials() (Credentials, error) {
	var c Credentials
	if err := envconfig.Process("", &c); err != nil {
		return Credentials{}, err
	}
	if c.Handle == "" || c.AppPassword == "" {
		return Credentials{}, fmt.Errorf("BSKY_HANDLE and BSKY_APP_PASSWORD must be set")
	}
	return c, nil
}

// Load reads the config from CONFIG_PATH, falling back to ./config.yaml.
func Load() Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	return LoadFrom(path)
}

// LoadFrom reads and validates the config at path. Invalid configuration is a
// programming/deployment error and panics.
func LoadFrom(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("read config %s: %v", path, err))
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		panic(fmt.Sprintf("parse config %s: %v", path, err))
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		panic(fmt.Sprintf("invalid config %s: %v", path, err))
	}
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Feed.BaseURL == "" {
		c.Feed.BaseURL = "https://export.arxiv.org/rss/"
	}
	if c.Feed.Timeout == 0 {
		c.Feed.Timeout = Duration(30 * time.Second)
	}
	if c.Archive.Dir == "" {
		c.Archive.Dir = "archive"
	}
	if c.Archive.Retention == 0 {
		c.Archive.Retention = Duration(90 * 24 * time.Hour)
	}
	if c.Render.EngineBin == "" {
		c.Render.EngineBin = "typst"
	}
	if c.Render.TimeoutSecs == 0 {
		c.Render.TimeoutSecs = 10
	}
	if c.Render.Width == 0 {
		c.Render.Width = 1200
	}
	if c.Render.PPI == 0 {
		c.Render.PPI = 144
	}
	if c.Bluesky.PDSURL == "" {
		c.Bluesky.PDSURL = "https://bsky.social"
	}
	if c.Bluesky.MinDelay == 0 {
		c.Bluesky.MinDelay = Duration(10 * time.Second)
	}
	if c.Bluesky.MaxDelay == 0 {
		c.Bluesky.MaxDelay = Duration(120 * time.Second)
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
}

func (c *Config) validate() error {
	if len(c.Feed.Subjects) == 0 {
		return fmt.Errorf("feed.subjects must list at least one arXiv subject")
	}
	if c.Feed.Timeout < 0 {
		return fmt.Errorf("feed.timeout must not be negative")
	}
	if c.Render.TimeoutSecs < 0 {
		return fmt.Errorf("render.timeout_secs must not be negative")
	}
	if c.Render.Width < 400 {
		return fmt.Errorf("render.width must be at least 400")
	}
	if c.Bluesky.MinDelay > c.Bluesky.MaxDelay {
		return fmt.Errorf("bluesky.min_delay must not exceed bluesky.max_delay")
	}
	if c.Archive.Retention < 0 {
		return fmt.Errorf("archive.retention must not be negative")
	}
	return nil
}
