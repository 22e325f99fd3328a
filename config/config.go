// config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds the complete configuration for the console.
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Server ServerConfig `mapstructure:"server"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Poll   PollConfig   `mapstructure:"poll"`
	Export ExportConfig `mapstructure:"export"`
	Logger *logrus.Logger
}

// APIConfig holds the backend connection settings.
type APIConfig struct {
	// BaseURL is the backend API root, e.g.
	// http://127.0.0.1:8000/api/v2. When empty the same-origin
	// default path prefix applies.
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`

	// Development-only fallback credential, used when no session is
	// active. Leave empty in real deployments.
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// ServerConfig holds the dashboard gateway HTTP settings.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CacheConfig holds the query cache settings.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// PollConfig holds the refresh settings for externally-driven state
// (command status, latest values).
type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// ExportConfig holds CSV download settings.
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads configuration from a file and environment variables.
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("COMPOST")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("api.base_url", "")
	viper.SetDefault("api.timeout", "20s")

	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")

	viper.SetDefault("cache.ttl", "30s")
	viper.SetDefault("poll.interval", "5s")

	viper.SetDefault("export.dir", "./exports")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error if using env vars
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
