// Package config resolves mixlab settings from flags, MIXLAB_* environment
// variables, an optional .env file and an optional config file.
package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by mixlab.
const EnvPrefix = "MIXLAB"

// Setting keys.
const (
	KeyCatalog  = "catalog"
	KeyRules    = "rules"
	KeyOutput   = "output"
	KeyTable    = "table"
	KeyLogLevel = "log_level"
)

// Defaults for paths that are not set anywhere.
const (
	DefaultOutput   = "reactions.json"
	DefaultLogLevel = "warn"
)

// Config holds resolved settings.
type Config struct {
	Catalog  string `mapstructure:"catalog"`
	Rules    string `mapstructure:"rules"`
	Output   string `mapstructure:"output"`
	Table    string `mapstructure:"table"`
	LogLevel string `mapstructure:"log_level"`
}

// New returns a viper instance with defaults and environment binding.
// Values from a .env file in the working directory are loaded into the
// process environment first; variables already set are not overridden.
func New() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// SetDefaults registers the default value of every key. Registering each
// key also makes it visible to AutomaticEnv during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyCatalog, "")
	v.SetDefault(KeyRules, "")
	v.SetDefault(KeyOutput, DefaultOutput)
	v.SetDefault(KeyTable, DefaultOutput)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
}

// ReadFile merges a config file (yaml, json or toml by extension) into v.
// An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return errors.Wrapf(err, "config file %s", path)
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	return nil
}

// Load unmarshals v into a Config.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}
