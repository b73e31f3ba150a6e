package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Catalog  CatalogConfig  `mapstructure:"catalog"  validate:"required"`
	Engine   EngineConfig   `mapstructure:"engine"   validate:"required"`
	Events   EventsConfig   `mapstructure:"events"   validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"               validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// AuthConfig contains the settings for validating learner access tokens.
// Tokens are issued by the external identity service; TokenLifetime only
// applies to development tokens minted by the CLI.
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"     validate:"required,min=32"`
	ClockSkew     time.Duration `mapstructure:"clock_skew"     validate:"gte=0"`
	TokenLifetime time.Duration `mapstructure:"token_lifetime" validate:"gt=0"`
}

// RedisConfig configures the optional Redis usage counter. When URL is empty
// quota counters are kept in Postgres.
type RedisConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// CatalogConfig locates the content catalog file.
type CatalogConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// EngineConfig tunes the progress engine.
type EngineConfig struct {
	// Timezone is the IANA zone used to decide which calendar day an answer
	// belongs to.
	Timezone         string `mapstructure:"timezone"           validate:"required,timezone"`
	DefaultDailyGoal int    `mapstructure:"default_daily_goal" validate:"required,gt=0"`
}

// EventsConfig sizes the background pool that delivers learner events.
type EventsConfig struct {
	Workers   int `mapstructure:"workers"    validate:"required,gt=0"`
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`
}

// Location resolves Timezone, falling back to UTC.
func (c EngineConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
