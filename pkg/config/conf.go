package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/mchmarny/triage/pkg/label"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600

	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config represents app config object.
type Config struct {
	// Format is the report output format [text, json, yaml].
	Format string `yaml:"format" env:"TRIAGE_FORMAT"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"TRIAGE_LOG_LEVEL"`
	// DB is the task store location: a sqlite file path or a postgres:// DSN.
	DB string `yaml:"db,omitempty" env:"TRIAGE_DB"`
	// Scored lists the labels averaged into the macro F-score.
	Scored []string `yaml:"scored" env:"TRIAGE_SCORED" envSeparator:","`
	// Tasks maps task names to constraint files used when the task is not
	// in the task store.
	Tasks map[string]string `yaml:"tasks,omitempty"`
}

func getDefaultConfig() *Config {
	scored := label.DefaultScored()
	list := make([]string, len(scored))
	for i, l := range scored {
		list[i] = string(l)
	}
	return &Config{
		Format:   FormatText,
		LogLevel: "info",
		Scored:   list,
		Tasks:    map[string]string{},
	}
}

// ScoredLabels parses the configured scored label subset.
func (c *Config) ScoredLabels() ([]label.Label, error) {
	if len(c.Scored) == 0 {
		return label.DefaultScored(), nil
	}
	return label.ParseList(strings.Join(c.Scored, ","))
}

// Validate checks the config values.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("invalid format: %s", c.Format)
	}
	if _, err := c.ScoredLabels(); err != nil {
		return fmt.Errorf("invalid scored labels: %w", err)
	}
	return nil
}

// TaskFile returns the constraint file configured for the named task.
func (c *Config) TaskFile(name string) (string, bool) {
	p, ok := c.Tasks[name]
	return p, ok && p != ""
}

func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", configFileName, err)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one.
// Environment variables override values read from the file.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		err := os.MkdirAll(dirPath, dirMode)
		if err != nil {
			return nil, fmt.Errorf("failed to create dir %s: %w", dirPath, err)
		}
	}

	path := filepath.Join(dirPath, configFileName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating default config", "path", path)
		if err := Save(dirPath, getDefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	c := getDefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("error unmarshalling config file %s: %w", path, err)
	}

	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("error parsing config environment: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return c, nil
}

// GetOrCreateHomeDir returns the home directory for the current user.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("failed to get user home dir: %w", err)
	}
	slog.Debug("home dir", "path", home)

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		err := os.Mkdir(dir, dirMode)
		if err != nil {
			return "", false, fmt.Errorf("failed to create dir %s: %w", dir, err)
		}
		created = true
	}
	return dir, created, nil
}
