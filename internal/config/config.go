package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	envLogLevel  = "ANDROID_SMS2CSV_LOG_LEVEL"
	envLogFormat = "ANDROID_SMS2CSV_LOG_FORMAT"
)

// Run modes.
const (
	ModeAuto = "auto"
	ModeCLI  = "cli"
	ModeGUI  = "gui"
)

// Config is the runtime configuration for one conversion run.
type Config struct {
	// Folder is the root of the unpacked backup to scan.
	Folder string `yaml:"folder"`
	// Output is the CSV file to write. Attachments go next to it.
	Output string `yaml:"output"`
	// SQLite optionally names a database that receives the same rows.
	SQLite   string        `yaml:"sqlite,omitempty"`
	Mode     string        `yaml:"mode"`
	Progress bool          `yaml:"progress"`
	Logging  LoggingConfig `yaml:"logging"`
}

// LoggingConfig controls log output format and verbosity.
type LoggingConfig struct {
	Format    string `yaml:"format,omitempty"`
	Level     string `yaml:"level,omitempty"`
	AddSource bool   `yaml:"add_source,omitempty"`
}

// Default returns the configuration used when no file or flag overrides it.
func Default() *Config {
	return &Config{
		Folder:   ".",
		Output:   "sms_backup.csv",
		Mode:     ModeAuto,
		Progress: true,
		Logging: LoggingConfig{
			Format: "text",
			Level:  "info",
		},
	}
}

// Load reads path on top of the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(envLogLevel)); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(envLogFormat)); v != "" {
		cfg.Logging.Format = v
	}
}

// Validate checks values that flags and files cannot constrain on their own.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeAuto, ModeCLI, ModeGUI:
	default:
		return fmt.Errorf("unknown mode %q (want auto, cli or gui)", c.Mode)
	}
	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("output file must not be empty")
	}
	if strings.TrimSpace(c.Folder) == "" {
		return fmt.Errorf("source folder must not be empty")
	}
	return nil
}
