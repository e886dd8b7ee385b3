// Package config loads netforge settings from a YAML file, the environment
// and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. NETFORGE_SERVER_PORT.
const EnvPrefix = "NETFORGE"

// Config is the full netforge configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Editor  EditorConfig  `mapstructure:"editor" yaml:"editor"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=auto console json"`
}

// EditorConfig holds the defaults of a new network and the file names used
// when documents are written.
type EditorConfig struct {
	DefaultModel  string  `mapstructure:"default_model" yaml:"default_model" validate:"required"`
	Temperature   float64 `mapstructure:"temperature" yaml:"temperature" validate:"min=0,max=1"`
	NetworkFile   string  `mapstructure:"network_file" yaml:"network_file" validate:"required"`
	FunctionFile  string  `mapstructure:"function_file" yaml:"function_file" validate:"required"`
	VariablesFile string  `mapstructure:"variables_file" yaml:"variables_file" validate:"required"`
	OutputFormat  string  `mapstructure:"output_format" yaml:"output_format" validate:"oneof=hocon json yaml"`
}

// ServerConfig configures the editor API.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes" validate:"min=1"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		Editor: EditorConfig{
			DefaultModel:  "gpt-4o",
			Temperature:   0.5,
			NetworkFile:   "network.hocon",
			FunctionFile:  "functions.hocon",
			VariablesFile: "variables.hocon",
			OutputFormat:  "hocon",
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8765,
			MaxBodyBytes:    1 << 20,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// configDirFunc is swapped out in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "netforge")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "netforge")
	}
	return filepath.Join(home, ".config", "netforge")
}

// Dir returns the directory holding the default config file.
func Dir() string {
	return configDirFunc()
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads configuration from path. An empty path means DefaultPath, and a
// missing default file is not an error. Environment variables override the
// file and defaults fill whatever is left.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	if path == "" {
		path = DefaultPath()
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
		}
	} else {
		v.SetConfigFile(path)
	}

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can see it during
// Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("editor.default_model", d.Editor.DefaultModel)
	v.SetDefault("editor.temperature", d.Editor.Temperature)
	v.SetDefault("editor.network_file", d.Editor.NetworkFile)
	v.SetDefault("editor.function_file", d.Editor.FunctionFile)
	v.SetDefault("editor.variables_file", d.Editor.VariablesFile)
	v.SetDefault("editor.output_format", d.Editor.OutputFormat)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
}

var validate = validator.New()

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("configuration is nil")
	}
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validation error: %w", err)
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		messages = append(messages, formatFieldError(e))
	}
	return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(messages, "\n  - "))
}

func formatFieldError(e validator.FieldError) string {
	path := fieldPath(e.Namespace())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", path)
	case "min":
		return fmt.Sprintf("%s must be at least %s (got: %v)", path, e.Param(), e.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s (got: %v)", path, e.Param(), e.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got: %v)", path, e.Param(), e.Value())
	default:
		return fmt.Sprintf("%s failed validation '%s' (got: %v)", path, e.Tag(), e.Value())
	}
}

// fieldPath turns "Config.Server.MaxBodyBytes" into "server.max_body_bytes".
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) <= 1 {
		return namespace
	}
	out := make([]string, 0, len(parts)-1)
	for _, part := range parts[1:] {
		var b strings.Builder
		for i, r := range part {
			if i > 0 && r >= 'A' && r <= 'Z' {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		}
		out = append(out, strings.ToLower(b.String()))
	}
	return strings.Join(out, ".")
}
