package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Secondary SecondaryConfig `mapstructure:"secondary"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Shopping  ShoppingConfig  `mapstructure:"shopping"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string   `mapstructure:"port"`
	Environment     string   `mapstructure:"environment"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	RateLimitPerSec float64  `mapstructure:"rate_limit_per_sec"`
	RateLimitBurst  int      `mapstructure:"rate_limit_burst"`
}

// DatabaseConfig holds the primary SQLite store configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// Secondary store types.
const (
	SecondaryFile  = "file"
	SecondaryMongo = "mongo"
	SecondaryNone  = "none"
)

// SecondaryConfig selects the store used when the primary fails
type SecondaryConfig struct {
	Type            string        `mapstructure:"type"` // "file", "mongo" or "none"
	Path            string        `mapstructure:"path"`
	MongoURI        string        `mapstructure:"mongo_uri"`
	MongoDatabase   string        `mapstructure:"mongo_database"`
	MongoCollection string        `mapstructure:"mongo_collection"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// AuthConfig holds bearer token configuration
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// ShoppingConfig tunes the shopping service
type ShoppingConfig struct {
	DuplicateWindow time.Duration `mapstructure:"duplicate_window"`
}

// LoggingConfig selects the slog handler
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
}

// TelegramConfig holds the chat front-end configuration. The bot is off
// when BotToken is empty.
type TelegramConfig struct {
	BotToken   string         `mapstructure:"bot_token"`
	WebhookURL string         `mapstructure:"webhook_url"`
	Users      []TelegramUser `mapstructure:"users"`
}

// TelegramUser maps an allowed Telegram account to a household member.
type TelegramUser struct {
	TelegramID int64  `mapstructure:"telegram_id"`
	UserID     string `mapstructure:"user_id"`
	FamilyID   string `mapstructure:"family_id"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file. An empty path searches the
// default locations.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/family-planner/")
	}

	// FAMILY_PLANNER_SERVER_PORT overrides server.port
	v.SetEnvPrefix("FAMILY_PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit_per_sec", 10.0)
	v.SetDefault("server.rate_limit_burst", 20)

	v.SetDefault("database.path", "data/family-planner.db")

	v.SetDefault("secondary.type", SecondaryFile)
	v.SetDefault("secondary.path", "data/shopping")
	v.SetDefault("secondary.mongo_uri", "")
	v.SetDefault("secondary.mongo_database", "family_planner")
	v.SetDefault("secondary.mongo_collection", "shopping_items")
	v.SetDefault("secondary.timeout", "10s")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "family-planner")
	v.SetDefault("auth.token_ttl", "720h")

	v.SetDefault("shopping.duplicate_window", "5s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.webhook_url", "")
}

// validate validates the configuration
func validate(config *Config) error {
	if len(config.Auth.JWTSecret) < 16 {
		return fmt.Errorf("JWT secret of at least 16 characters is required (set FAMILY_PLANNER_AUTH_JWT_SECRET)")
	}

	switch config.Secondary.Type {
	case SecondaryFile:
		if config.Secondary.Path == "" {
			return fmt.Errorf("secondary path is required when secondary type is 'file'")
		}
	case SecondaryMongo:
		if config.Secondary.MongoURI == "" {
			return fmt.Errorf("mongo URI is required when secondary type is 'mongo'")
		}
	case SecondaryNone:
	default:
		return fmt.Errorf("secondary type must be 'file', 'mongo' or 'none', got: %s", config.Secondary.Type)
	}

	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be debug, info, warn or error, got: %s", config.Logging.Level)
	}
	if config.Logging.Format != "text" && config.Logging.Format != "json" {
		return fmt.Errorf("log format must be 'text' or 'json', got: %s", config.Logging.Format)
	}

	if config.Shopping.DuplicateWindow < 0 {
		return fmt.Errorf("shopping duplicate window must not be negative")
	}
	if config.Server.RateLimitPerSec <= 0 || config.Server.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}

	for _, u := range config.Telegram.Users {
		if u.TelegramID == 0 || u.UserID == "" {
			return fmt.Errorf("telegram users need telegram_id and user_id")
		}
	}
	return nil
}

// TelegramActor returns the household member mapped to a Telegram account.
func (c TelegramConfig) TelegramActor(telegramID int64) (TelegramUser, bool) {
	for _, u := range c.Users {
		if u.TelegramID == telegramID {
			return u, true
		}
	}
	return TelegramUser{}, false
}
