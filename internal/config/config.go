// Package config loads the launcher configuration from a YAML file and
// provides the documented defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no config file is given.
const DefaultPath = "portclaim.yaml"

const (
	DefaultPort  = 8000
	DefaultHost  = "0.0.0.0"
	DefaultGrace = 2 * time.Second
)

// Duration wraps time.Duration so YAML can use "2s" notation.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Config describes one launch: the port to reclaim and the service to
// start on it.
type Config struct {
	Port        int      `yaml:"port"`
	Host        string   `yaml:"host"`
	GracePeriod Duration `yaml:"grace_period"`

	// Command is the service to spawn, argv style. A bare program name
	// resolves against the managed environment first.
	Command []string `yaml:"command"`

	// EnvDir is the virtual environment directory; empty disables
	// environment bootstrap.
	EnvDir       string   `yaml:"env_dir"`
	Python       string   `yaml:"python"`
	Requirements []string `yaml:"requirements"`
}

// Default returns the built-in configuration, used when no file overrides it.
func Default() Config {
	return Config{
		Port:         DefaultPort,
		Host:         DefaultHost,
		GracePeriod:  Duration(DefaultGrace),
		Command:      []string{"python", "app.py"},
		EnvDir:       ".venv",
		Python:       "python3",
		Requirements: []string{"fastapi", "uvicorn", "httpx"},
	}
}

// Load reads a config file and overlays it on the defaults. With an
// empty path the default location is tried and a missing file is fine;
// an explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields that would otherwise fail deep inside a
// launch.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range (1-65535)", c.Port)
	}
	if len(c.Command) == 0 {
		return fmt.Errorf("command must not be empty")
	}
	if time.Duration(c.GracePeriod) < 0 {
		return fmt.Errorf("grace_period must not be negative")
	}
	return nil
}

// Grace returns the grace period as a plain time.Duration.
func (c Config) Grace() time.Duration {
	return time.Duration(c.GracePeriod)
}
