package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"codefossils/logger"
)

const (
	DefaultPort            = 8080
	DefaultRefreshInterval = 6 * time.Hour
	DefaultRefreshCooldown = 5 * time.Minute
	DefaultLogLevel        = "info"
	DefaultAPIBaseURL      = "http://localhost:8080"
	DefaultPerPage         = 30
	DefaultConfigFile      = ".env"
)

// Config holds all configuration for the application
type Config struct {
	Port            int
	DatabaseURL     string
	GitHubToken     string
	RefreshInterval time.Duration
	RefreshCooldown time.Duration
	LogLevel        string

	// APIBaseURL and PerPage are used by the browse command.
	APIBaseURL string
	PerPage    int
}

// NewConfig creates a new Config instance
func NewConfig() *Config {
	return &Config{}
}

// Load reads configuration from the environment, overlaid on an optional
// .env file. A missing file is not an error. Use LoadFile to point at a
// different file.
func (c *Config) Load() error {
	return c.LoadFile(DefaultConfigFile)
}

// LoadFile is Load with an explicit config file path.
func (c *Config) LoadFile(path string) error {
	setDefaults()

	if path != "" {
		viper.SetConfigFile(path)
		viper.SetConfigType("env")
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}
	viper.AutomaticEnv()

	c.Port = viper.GetInt("PORT")
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}

	c.DatabaseURL = viper.GetString("DATABASE_URL")
	c.GitHubToken = viper.GetString("GITHUB_TOKEN")
	c.LogLevel = viper.GetString("LOG_LEVEL")
	c.APIBaseURL = viper.GetString("API_BASE_URL")

	c.RefreshInterval = durationOr("REFRESH_INTERVAL", DefaultRefreshInterval)
	c.RefreshCooldown = durationOr("REFRESH_COOLDOWN", DefaultRefreshCooldown)

	c.PerPage = viper.GetInt("PER_PAGE")
	if c.PerPage < 1 || c.PerPage > 100 {
		c.PerPage = DefaultPerPage
	}

	return nil
}

// RequireDatabase reports an error when no database URL is configured. Only
// the server needs one.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func setDefaults() {
	viper.SetDefault("PORT", DefaultPort)
	viper.SetDefault("LOG_LEVEL", DefaultLogLevel)
	viper.SetDefault("REFRESH_INTERVAL", DefaultRefreshInterval.String())
	viper.SetDefault("REFRESH_COOLDOWN", DefaultRefreshCooldown.String())
	viper.SetDefault("API_BASE_URL", DefaultAPIBaseURL)
	viper.SetDefault("PER_PAGE", DefaultPerPage)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 25)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
}

// durationOr parses key as a Go duration. Invalid or non-positive values fall
// back to def with a warning.
func durationOr(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logger.Warn("Invalid duration, using default",
			zap.String("key", key),
			zap.String("value", raw),
			zap.Duration("default", def))
		return def
	}
	return d
}
