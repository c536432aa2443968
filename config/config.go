package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Backend     BackendConfig     `mapstructure:"backend"`
	Preferences PreferencesConfig `mapstructure:"preferences"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	RateLimit   RateLimitConfig   `mapstructure:"ratelimit"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required,numeric"`
	Environment     string        `mapstructure:"environment" validate:"oneof=development production test"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// BackendConfig holds the aggregation backend configuration
type BackendConfig struct {
	// BaseURLs are tried in order; the first one is the primary
	BaseURLs          []string      `mapstructure:"base_urls" validate:"required,min=1,dive,url"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute" validate:"gte=0"`
}

// PreferencesConfig holds where the source toggles are persisted
type PreferencesConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format     string `mapstructure:"format" validate:"oneof=text json"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip" validate:"gte=0"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/medcompare/")

	// Environment variable settings
	v.SetEnvPrefix("MEDCOMPARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	normalize(&config)

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a .env file from the working directory when present.
// Variables already set in the environment win.
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.shutdown_timeout", "10s")

	// Backend defaults
	v.SetDefault("backend.base_urls", []string{"http://localhost:3001", "http://localhost:3002"})
	v.SetDefault("backend.timeout", "30s")
	v.SetDefault("backend.user_agent", "medcompare-backend/1.0")
	v.SetDefault("backend.requests_per_minute", 0)

	// Preferences defaults
	v.SetDefault("preferences.path", "data/preferences.json")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// normalize trims list entries and splits comma separated ones
func normalize(config *Config) {
	config.Backend.BaseURLs = splitList(config.Backend.BaseURLs)
	config.Server.AllowedOrigins = splitList(config.Server.AllowedOrigins)
	config.Logging.Level = strings.ToLower(strings.TrimSpace(config.Logging.Level))
	config.Logging.Format = strings.ToLower(strings.TrimSpace(config.Logging.Format))
}

func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// validate validates the configuration
func validate(config *Config) error {
	if err := structValidator.Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed on '%s' (value: %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	return nil
}
