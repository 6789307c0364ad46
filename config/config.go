// SPDX-License-Identifier: EPL-2.0

// Package config loads the application configuration from defaults, an
// optional YAML file and AUDGRAPH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ik5/audgraph/logger"
	"github.com/ik5/audgraph/sound"
)

const EnvPrefix = "AUDGRAPH"

// Config holds all configuration for the application
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type EngineConfig struct {
	SampleRate   int           `mapstructure:"sample_rate"`
	FadeDuration time.Duration `mapstructure:"fade_duration"`
}

type OutputConfig struct {
	// BufferSize is the speaker buffer in frames.
	BufferSize int `mapstructure:"buffer_size"`
}

type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"` // json or text
	File      string `mapstructure:"file"`
	MaxSizeKB int64  `mapstructure:"max_size_kb"`
	MaxRolls  int    `mapstructure:"max_rolls"`
}

type MetricsConfig struct {
	// Listen is the address of the /metrics endpoint. Empty disables it.
	Listen string `mapstructure:"listen"`
}

// SetDefaults installs the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("engine.sample_rate", 44100)
	v.SetDefault("engine.fade_duration", sound.DefaultFadeDuration)
	v.SetDefault("output.buffer_size", 2048)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_kb", 1024)
	v.SetDefault("logging.max_rolls", 3)
	v.SetDefault("metrics.listen", "")
}

// New returns a viper instance with defaults and environment binding set
// up. path, when not empty, is the config file to read; otherwise
// config.yaml is searched in the working directory and $HOME/.audgraph.
func New(path string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.audgraph")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the configuration held by v. A missing config file is not an
// error unless it was named explicitly.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Debug("No config file found, using defaults and environment variables")
	} else {
		slog.Debug("Using config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return &cfg, nil
}

// Validate checks value ranges. The first problem found is returned as a
// *ConfigError.
func (c *Config) Validate() error {
	switch {
	case c.Engine.SampleRate < 3000 || c.Engine.SampleRate > 768000:
		return &ConfigError{Field: "engine.sample_rate", Message: "must be between 3000 and 768000"}
	case c.Engine.FadeDuration < 0 || c.Engine.FadeDuration > time.Second:
		return &ConfigError{Field: "engine.fade_duration", Message: "must be between 0 and 1s"}
	case c.Output.BufferSize <= 0:
		return &ConfigError{Field: "output.buffer_size", Message: "must be positive"}
	case c.Logging.MaxRolls < 0:
		return &ConfigError{Field: "logging.max_rolls", Message: "must not be negative"}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be text or json"}
	}

	return nil
}

// SoundOptions maps the engine section onto sound.Options.
func (c EngineConfig) SoundOptions(log *slog.Logger, metrics *sound.Metrics) sound.Options {
	return sound.Options{
		Logger:       log,
		Metrics:      metrics,
		FadeDuration: c.FadeDuration,
	}
}

// LoggerOptions maps the logging section onto logger.Options.
func (c LoggingConfig) LoggerOptions() logger.Options {
	return logger.Options{
		Level:     c.Level,
		Format:    c.Format,
		File:      c.File,
		MaxSizeKB: c.MaxSizeKB,
		MaxRolls:  c.MaxRolls,
	}
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
