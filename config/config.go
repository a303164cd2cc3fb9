// Package config reads .srcspan.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".srcspan.yaml"

type Config struct {
	Dialect string `yaml:"dialect"`
	Color   string `yaml:"color"`
	Workers int    `yaml:"workers"`
	Verify  bool   `yaml:"verify"`
	Log     Log    `yaml:"log"`
	Watch   Watch  `yaml:"watch"`
}

type Log struct {
	Verbosity int    `yaml:"verbosity"`
	File      string `yaml:"file"`
}

type Watch struct {
	Interval time.Duration `yaml:"interval"`
	Exclude  []string      `yaml:"exclude"`
}

func Default() *Config {
	return &Config{
		Dialect: "python",
		Color:   "auto",
		Workers: 4,
		Verify:  true,
		Watch: Watch{
			Interval: time.Second,
			Exclude:  []string{".git", "__pycache__", ".venv"},
		},
	}
}

// Load reads the file at path over the defaults. A missing file is not an
// error when path is the default file name.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Dialect {
	case "python", "treesitter":
	default:
		return fmt.Errorf("unknown dialect %q", c.Dialect)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("color must be auto, always or never, got %q", c.Color)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %s", c.Watch.Interval)
	}
	return nil
}
