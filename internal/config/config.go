package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/retrace/config.yaml"

// Sampling interval bounds in seconds. Values outside are clamped on load.
const (
	MinIntervalSeconds = 5
	MaxIntervalSeconds = 120
)

// Config holds all retrace configuration.
type Config struct {
	Capture     CaptureConfig     `yaml:"capture"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Retention   RetentionConfig   `yaml:"retention"`
	Storage     StorageConfig     `yaml:"storage"`
}

type CaptureConfig struct {
	IntervalSeconds int      `yaml:"interval_seconds"`
	ExcludedApps    []string `yaml:"excluded_apps"`
	OCREnabled      bool     `yaml:"ocr_enabled"`
	OCRCommand      []string `yaml:"ocr_command"`
}

type AggregationConfig struct {
	IntervalSeconds   int  `yaml:"interval_seconds"`
	DebounceSeconds   int  `yaml:"debounce_seconds"`
	MinSamples        int  `yaml:"min_samples"`
	DeleteImagesAfter bool `yaml:"delete_images_after_summarize"`
}

type RetentionConfig struct {
	SampleDays         int   `yaml:"sample_days"`
	EntryDays          int   `yaml:"entry_days"`
	SummaryDays        int   `yaml:"summary_days"`
	UsageDays          int   `yaml:"usage_days"`
	StorageBudgetBytes int64 `yaml:"storage_budget_bytes"`
	EvictStepDays      int   `yaml:"evict_step_days"`
}

type StorageConfig struct {
	Path       string `yaml:"path"`
	SQLiteFile string `yaml:"sqlite_file"`
	ImageDir   string `yaml:"image_dir"`
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Capture.IntervalSeconds = clampInterval(cfg.Capture.IntervalSeconds)

	return cfg, nil
}

// LoadOrCreate loads the config from the default path, creating it with
// defaults if missing.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does not
// exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}

// DatabasePath resolves the SQLite file location.
func (c *Config) DatabasePath() (string, error) {
	dir, err := expandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}

// ImagePath resolves the capture-image directory.
func (c *Config) ImagePath() (string, error) {
	dir, err := expandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.ImageDir), nil
}

func clampInterval(secs int) int {
	if secs < MinIntervalSeconds {
		return MinIntervalSeconds
	}
	if secs > MaxIntervalSeconds {
		return MaxIntervalSeconds
	}
	return secs
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
