// Package config loads chomp's settings from defaults, an optional YAML file
// and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables overriding the file.
const (
	EnvDatabase    = "CHOMP_DB"
	EnvLogLevel    = "CHOMP_LOG_LEVEL"
	EnvLogFile     = "CHOMP_LOG_FILE"
	EnvHistoryDays = "CHOMP_HISTORY_DAYS"
)

type Config struct {
	Database Database `yaml:"database"`
	Log      Log      `yaml:"log"`
	Chart    Chart    `yaml:"chart"`
}

type Database struct {
	Path string `yaml:"path"`
}

type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
}

// Chart controls what the weight chart shows and how densely it is
// annotated.
type Chart struct {
	HistoryDays int     `yaml:"history_days"`
	GridX       int     `yaml:"grid_x"`
	GridY       int     `yaml:"grid_y"`
	LabelsX     int     `yaml:"labels_x"`
	LabelsY     int     `yaml:"labels_y"`
	FontSize    float32 `yaml:"font_size"`
}

// DefaultDatabasePath is where chomp keeps its data when nothing else is
// configured.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, "AppData", "Roaming", "chomp", "data.db")
	}
	return filepath.Join(home, ".local", "share", "chomp", "data.db")
}

func Default() Config {
	return Config{
		Database: Database{Path: DefaultDatabasePath()},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Chart: Chart{
			HistoryDays: 30,
			GridX:       5,
			GridY:       20,
			LabelsX:     5,
			LabelsY:     5,
			FontSize:    12,
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path, if any, and
// then with the environment. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("cannot read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("cannot parse YAML in %q: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDatabase); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFile); ok {
		c.Log.File = v
	}
	if v, ok := lookup(EnvHistoryDays); ok && v != "" {
		days, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvHistoryDays, v, err)
		}
		c.Chart.HistoryDays = days
	}
	return nil
}

// Validate reports every setting that cannot be used.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database path must not be empty"))
	}
	for _, f := range []struct {
		name  string
		value int
	}{
		{"chart.history_days", c.Chart.HistoryDays},
		{"chart.grid_x", c.Chart.GridX},
		{"chart.grid_y", c.Chart.GridY},
		{"chart.labels_x", c.Chart.LabelsX},
		{"chart.labels_y", c.Chart.LabelsY},
	} {
		if f.value < 1 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", f.name, f.value))
		}
	}
	if c.Chart.FontSize <= 0 {
		errs = append(errs, fmt.Errorf("chart.font_size must be positive, got %v", c.Chart.FontSize))
	}
	return errors.Join(errs...)
}
