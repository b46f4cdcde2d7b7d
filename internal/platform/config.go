package platform

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/galaxies/pkg/download"
)

// Config is the optional YAML config file.
type Config struct {
	ManualDir   string            `yaml:"manual_dir"`
	Download    DownloadConfig    `yaml:"download"`
	Eagle       EagleConfig       `yaml:"eagle"`
	GalaxyZoo3D GalaxyZoo3DConfig `yaml:"galaxyzoo3d"`
}

type DownloadConfig struct {
	Retries            int           `yaml:"retries"`
	Backoff            time.Duration `yaml:"backoff"`
	Timeout            time.Duration `yaml:"timeout"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
}

type EagleConfig struct {
	DatabaseURL string `yaml:"database_url"`
}

type GalaxyZoo3DConfig struct {
	BaseURL string `yaml:"base_url"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Download: DownloadConfig{
			Retries: download.DefaultRetries,
			Backoff: download.DefaultBackoff,
			Timeout: download.DefaultTimeout,
		},
		Eagle:       EagleConfig{DatabaseURL: download.DefaultDatabaseURL},
		GalaxyZoo3D: GalaxyZoo3DConfig{BaseURL: download.GalaxyZoo3DURL},
	}
}

// LoadConfig reads the file at path over the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Download.Retries < 0 {
		return errors.New("download.retries must not be negative")
	}
	if c.Download.Backoff < 0 {
		return errors.New("download.backoff must not be negative")
	}
	if c.Download.Timeout < 0 {
		return errors.New("download.timeout must not be negative")
	}
	for name, raw := range map[string]string{
		"eagle.database_url":   c.Eagle.DatabaseURL,
		"galaxyzoo3d.base_url": c.GalaxyZoo3D.BaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL", name)
		}
	}
	return nil
}
