package logger

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds logging configuration
type Config struct {
	Level          string `yaml:"level"`
	ConsoleEnabled bool   `yaml:"console_enabled"`
	ConsoleFormat  string `yaml:"console_format"`
	FileEnabled    bool   `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileFormat     string `yaml:"file_format"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
	FileCompress   bool   `yaml:"file_compress"`

	// Console overrides the console destination. Nil means stderr, which
	// keeps stdout free for command output.
	Console io.Writer `yaml:"-"`
}

// LoggingConfig wraps the Config for YAML parsing
type LoggingConfig struct {
	Logging Config `yaml:"logging"`
}

// DefaultConfig logs INFO and above as text to the console.
func DefaultConfig() Config {
	return Config{
		Level:          "INFO",
		ConsoleEnabled: true,
		ConsoleFormat:  "text",
		FilePath:       "logs/landforge.log",
		FileFormat:     "text",
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}
}

// LoadConfig reads the logging section of a YAML file over the defaults and
// applies LANDFORGE_LOG_* environment overrides. A missing file or an empty
// path yields the defaults; a malformed file is an error.
func LoadConfig(configPath string) (Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			// Keys absent from the file keep their default values.
			wrapped := LoggingConfig{Logging: config}
			if err := yaml.Unmarshal(data, &wrapped); err != nil {
				return DefaultConfig(), fmt.Errorf("failed to parse logging config %s: %w", configPath, err)
			}
			config = wrapped.Logging
		case !os.IsNotExist(err):
			return config, fmt.Errorf("failed to read logging config %s: %w", configPath, err)
		}
	}

	applyEnv(&config)
	return config, nil
}

func applyEnv(config *Config) {
	if v := os.Getenv("LANDFORGE_LOG_LEVEL"); v != "" {
		config.Level = v
	}
	if v := os.Getenv("LANDFORGE_LOG_FORMAT"); v != "" {
		config.ConsoleFormat = v
		config.FileFormat = v
	}
	if v := os.Getenv("LANDFORGE_LOG_FILE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			config.FileEnabled = enabled
		}
	}
	if v := os.Getenv("LANDFORGE_LOG_FILE"); v != "" {
		config.FilePath = v
		config.FileEnabled = true
	}
}
