// Package config defines the easymap configuration file, its defaults and
// its validation rules.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/anstrom/easymap/internal/errors"
	"github.com/anstrom/easymap/internal/logging"
)

const (
	// DefaultBinary is the scanner executable looked up on PATH.
	DefaultBinary = "nmap"
	// DefaultPrivilegeCommand prefixes every scan invocation.
	DefaultPrivilegeCommand = "sudo"
	// DefaultMessageDelay paces informational messages.
	DefaultMessageDelay = 2 * time.Second
)

// Config represents the complete easymap configuration
type Config struct {
	// Scanner configuration
	Scanner ScannerConfig `yaml:"scanner" json:"scanner"`

	// Interactive session configuration
	Session SessionConfig `yaml:"session" json:"session"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ScannerConfig describes how the external scanner is invoked
type ScannerConfig struct {
	// Scanner executable name or path
	Binary string `yaml:"binary" json:"binary" validate:"required"`

	// Command used to elevate privileges; empty runs the scanner directly
	PrivilegeCommand string `yaml:"privilege_command" json:"privilege_command"`

	// Arguments passed when checking that the scanner can be invoked
	ProbeArgs []string `yaml:"probe_args" json:"probe_args" validate:"min=1,dive,required"`
}

// SessionConfig holds settings for the interactive menu
type SessionConfig struct {
	// Pause after informational messages
	MessageDelay time.Duration `yaml:"message_delay" json:"message_delay" validate:"gte=0"`

	// Print the ASCII banner before the menu
	ShowBanner bool `yaml:"show_banner" json:"show_banner"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`

	// Log format (text, json)
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`

	// Log output (stdout, stderr, file path)
	Output string `yaml:"output" json:"output" validate:"required"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Scanner: ScannerConfig{
			Binary:           DefaultBinary,
			PrivilegeCommand: DefaultPrivilegeCommand,
			ProbeArgs:        []string{"-V"},
		},
		Session: SessionConfig{
			MessageDelay: DefaultMessageDelay,
			ShowBanner:   true,
		},
		Logging: LoggingConfig{
			Level:  string(logging.LevelWarn),
			Format: string(logging.FormatText),
			Output: "stderr",
		},
	}
}

// Load loads configuration from a file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, errors.WrapConfigError(errors.CodeFileNotFound, "failed to read config file", err)
	}

	// JSON is a subset of YAML, so one decoder covers both extensions
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration,
			fmt.Sprintf("failed to parse config %s", filepath.Base(path)), err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the configuration
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		cfgErr := errors.ErrConfigInvalid(fe.Namespace(), fe.Value())
		cfgErr.Cause = err
		return cfgErr
	}
	return errors.WrapConfigError(errors.CodeValidation, "invalid configuration", err)
}

// LoggerConfig converts the logging section into a logger configuration
func (c *Config) LoggerConfig() logging.Config {
	return logging.Config{
		Level:     logging.LogLevel(c.Logging.Level),
		Format:    logging.LogFormat(c.Logging.Format),
		Output:    c.Logging.Output,
		AddSource: c.Logging.Level == string(logging.LevelDebug),
	}
}
