// Package config manages application configuration from files and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/klytics/tsconv/internal/export"
	"github.com/klytics/tsconv/internal/logging"
)

// Config holds the application configuration.
type Config struct {
	Input struct {
		Sheet string `mapstructure:"sheet"`
	} `mapstructure:"input"`
	Output struct {
		Dir      string `mapstructure:"dir"`
		FileName string `mapstructure:"filename"`
		Format   string `mapstructure:"format"`
		Color    bool   `mapstructure:"color"`
	} `mapstructure:"output"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	Watch struct {
		DebounceMs int  `mapstructure:"debounce_ms"`
		Recursive  bool `mapstructure:"recursive"`
	} `mapstructure:"watch"`
	Batch struct {
		Workers int `mapstructure:"workers"`
	} `mapstructure:"batch"`
}

// ConfigIssue represents a validation finding.
type ConfigIssue struct {
	Key      string `json:"key"`
	Severity string `json:"severity"` // "error", "warning"
	Message  string `json:"message"`
	Fix      string `json:"fix"`
}

var defaults = map[string]interface{}{
	"input.sheet":       "",
	"output.dir":        ".",
	"output.filename":   "QCIF_format.xlsx",
	"output.format":     "xlsx",
	"output.color":      true,
	"log.level":         "info",
	"watch.debounce_ms": 500,
	"watch.recursive":   false,
	"batch.workers":     4,
}

// Load reads the configuration from ~/.tsconv/config.yaml and environment
// variables (TSCONV_OUTPUT_DIR, TSCONV_LOG_LEVEL, ...).
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir())

	for k, v := range defaults {
		viper.SetDefault(k, v)
	}

	viper.SetEnvPrefix("TSCONV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file (non-fatal if missing)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("could not read %s: %w", ConfigPath(), err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks config values and returns a list of issues.
func Validate() []ConfigIssue {
	var issues []ConfigIssue

	if _, err := export.ParseFormat(viper.GetString("output.format")); err != nil {
		issues = append(issues, ConfigIssue{
			Key:      "output.format",
			Severity: "error",
			Message:  err.Error(),
			Fix:      "tsconv config set output.format xlsx",
		})
	}

	if _, err := logging.ParseLevel(viper.GetString("log.level")); err != nil {
		issues = append(issues, ConfigIssue{
			Key:      "log.level",
			Severity: "error",
			Message:  err.Error(),
			Fix:      "tsconv config set log.level info",
		})
	}

	name := viper.GetString("output.filename")
	if name == "" || filepath.Base(name) != name {
		issues = append(issues, ConfigIssue{
			Key:      "output.filename",
			Severity: "error",
			Message:  fmt.Sprintf("output.filename must be a plain file name, got %q", name),
			Fix:      "tsconv config set output.filename QCIF_format.xlsx",
		})
	}

	if viper.GetInt("batch.workers") < 1 {
		issues = append(issues, ConfigIssue{
			Key:      "batch.workers",
			Severity: "warning",
			Message:  "batch.workers is below 1 — falling back to 4",
			Fix:      "tsconv config set batch.workers 4",
		})
	}

	if viper.GetInt("watch.debounce_ms") < 0 {
		issues = append(issues, ConfigIssue{
			Key:      "watch.debounce_ms",
			Severity: "warning",
			Message:  "watch.debounce_ms is negative — falling back to 500",
			Fix:      "tsconv config set watch.debounce_ms 500",
		})
	}

	return issues
}

// Set stores a value and persists the config file.
func Set(key, value string) error {
	if _, ok := defaults[key]; !ok {
		return fmt.Errorf("unknown config key %q — known keys: %s", key, strings.Join(Keys(), ", "))
	}
	viper.Set(key, value)
	return SaveConfig()
}

// Get returns a value as a string.
func Get(key string) string {
	return viper.GetString(key)
}

// Keys returns every known config key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ResetConfig deletes the config file and restores defaults.
func ResetConfig() error {
	path := ConfigPath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete config: %w", err)
	}
	for k, v := range defaults {
		viper.Set(k, v)
	}
	return nil
}

// SaveConfig writes the current settings to the config file.
func SaveConfig() error {
	dir := configDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("could not write config: %w", err)
	}
	return nil
}

// ConfigPath returns the config file location.
func ConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// ShowConfig renders the effective settings for display.
func ShowConfig() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Config: %s\n\n", ConfigPath()))
	for _, k := range Keys() {
		v := viper.GetString(k)
		if v == "" {
			v = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("  %-18s %s\n", k+":", v))
	}

	return sb.String()
}

// All returns the effective settings keyed by config key.
func All() map[string]string {
	out := make(map[string]string, len(defaults))
	for _, k := range Keys() {
		out[k] = viper.GetString(k)
	}
	return out
}

// Dir returns the directory holding the config file and watcher state.
func Dir() string {
	return configDir()
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tsconv"
	}
	return filepath.Join(home, ".tsconv")
}
