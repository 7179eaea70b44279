// Package config loads and validates application configuration from
// environment variables and an optional config file.
package config

// Config holds all application configuration, organized into logical
// groups.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
}

// ServerConfig contains all server-related settings.
type ServerConfig struct {
	Port            int    `mapstructure:"port"              validate:"required,gt=0,lt=65536"`
	LogLevel        string `mapstructure:"log_level"         validate:"required,oneof=debug info warn error"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"  validate:"gte=0"` // seconds
}

// DatabaseConfig contains all database-related settings. The URL scheme
// selects the driver: postgres:// uses pgx, anything else is treated as
// a SQLite path.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains the settings for validating learner tokens issued
// by the identity service.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// TaskConfig sizes the background persistence retry runner.
type TaskConfig struct {
	QueueSize   int `mapstructure:"queue_size"   validate:"required,gt=0"`
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`
	MaxRetries  int `mapstructure:"max_retries"  validate:"required,gt=0"`
}
