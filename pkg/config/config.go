// Package config loads tzbuild configuration. Sources, highest priority
// first: command-line flags, TZBUILD_* environment variables, an optional
// .tzbuild.yaml file in the working directory, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/trainzkit/tzbuild/pkg/asset"
)

// Config holds all configuration for tzbuild
type Config struct {
	Trainzutil  string        `mapstructure:"trainzutil"`
	StagingDir  string        `mapstructure:"staging-dir"`
	Cleanup     bool          `mapstructure:"cleanup"`
	SettleDelay time.Duration `mapstructure:"settle-delay"`
	Report      string        `mapstructure:"report"`
	Discovery   Discovery     `mapstructure:"discovery"`
}

// Discovery holds asset-discovery configuration
type Discovery struct {
	// Skip lists glob patterns for directory names never entered during
	// discovery.
	Skip []string `mapstructure:"skip"`
}

// Load builds the effective configuration, binding the given command flags
// on top of environment and file sources.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("discovery.skip", asset.DefaultSkipPatterns)

	v.SetConfigName(".tzbuild")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TZBUILD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return &cfg, nil
}
