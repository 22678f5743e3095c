package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	JWT     JWTConfig
	Billing BillingConfig
	Draw    DrawConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int // seconds
}

// BillingConfig holds billing-provider configuration
type BillingConfig struct {
	APIKey  string
	Timeout time.Duration
	MockAPI bool
}

// DrawConfig holds draw defaults used when the system config collection has
// no overrides
type DrawConfig struct {
	NumberCount     int
	MaxNumber       int
	CharitySplitBps int32
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional; environment variables suffice.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "luckygiving")
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("Billing.Timeout", 10*time.Second)
	viper.SetDefault("Billing.MockAPI", true)
	viper.SetDefault("Draw.NumberCount", 6)
	viper.SetDefault("Draw.MaxNumber", 49)
	viper.SetDefault("Draw.CharitySplitBps", 1000) // 10% of gross prize
	viper.SetDefault("LogLevel", "info")
}
