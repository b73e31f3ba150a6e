package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FLUENT"

// Options control where Load looks for configuration.
type Options struct {
	// EnvFile is an optional dotenv file loaded into the process environment.
	// Variables already set are not overridden.
	EnvFile string
	// ConfigFile is an optional YAML file. When empty, config.yaml in the
	// working directory is used if present.
	ConfigFile string
}

// Load reads configuration with default options.
func Load() (*Config, error) {
	return LoadWithOptions(Options{EnvFile: ".env"})
}

// LoadWithOptions reads configuration from defaults, an optional YAML file
// and FLUENT_-prefixed environment variables, in increasing precedence, and
// validates the result.
func LoadWithOptions(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("auth.clock_skew", "30s")
	v.SetDefault("auth.token_lifetime", "24h")
	v.SetDefault("catalog.path", "content/catalog.json")
	v.SetDefault("engine.timezone", "UTC")
	v.SetDefault("engine.default_daily_goal", 10)
	v.SetDefault("events.workers", 2)
	v.SetDefault("events.queue_size", 256)
}

// bindEnv registers keys without defaults so AutomaticEnv picks them up
// during Unmarshal.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{"database.url", "auth.jwt_secret", "redis.url"} {
		_ = v.BindEnv(key)
	}
}
