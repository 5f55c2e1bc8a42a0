package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the application's configuration
type Config struct {
	StreamAPIURL          string        `mapstructure:"STREAM_API_URL"`
	MLAPIURL              string        `mapstructure:"ML_API_URL"`
	GenAPIURL             string        `mapstructure:"GEN_API_URL"`
	GenAPIKey             string        `mapstructure:"GEN_API_KEY"`
	InventoryTopic        string        `mapstructure:"INVENTORY_TOPIC"`
	RequestsTopic         string        `mapstructure:"REQUESTS_TOPIC"`
	ConsumeLimit          int           `mapstructure:"CONSUME_LIMIT"`
	OffsetReset           string        `mapstructure:"OFFSET_RESET"`
	MaxGenAttempts        int           `mapstructure:"MAX_GEN_ATTEMPTS"`
	RetryBaseDelaySeconds time.Duration `mapstructure:"RETRY_BASE_DELAY_SECONDS"`
	GenRequestTimeout     time.Duration `mapstructure:"GEN_REQUEST_TIMEOUT"`
	StreamRequestTimeout  time.Duration `mapstructure:"STREAM_REQUEST_TIMEOUT"`
	MLRequestTimeout      time.Duration `mapstructure:"ML_REQUEST_TIMEOUT"`
	ForecastWeeks         int           `mapstructure:"FORECAST_WEEKS"`
	TopItems              int           `mapstructure:"TOP_ITEMS"`
	TopProjects           int           `mapstructure:"TOP_PROJECTS"`
	RecentRecords         int           `mapstructure:"RECENT_RECORDS"`
	InventoryCap          int           `mapstructure:"INVENTORY_CAP"`
	PredictionCacheSize   int           `mapstructure:"PREDICTION_CACHE_SIZE"`
	RateLimitMessages     int           `mapstructure:"RATE_LIMIT_MESSAGES_PER_MIN"`
	RateLimitBurstSize    int           `mapstructure:"RATE_LIMIT_BURST_SIZE"`
	DatabaseURL           string        `mapstructure:"DATABASE_URL"`
	WebPort               int           `mapstructure:"WEB_PORT"`
	LogLevel              string        `mapstructure:"LOG_LEVEL"`
}

func Load(logger *zap.Logger) *Config {
	var config Config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("STREAM_API_URL", "http://localhost:5000")
	viper.SetDefault("ML_API_URL", "http://localhost:8001")
	viper.SetDefault("GEN_API_URL", "")
	viper.SetDefault("GEN_API_KEY", "")
	viper.SetDefault("INVENTORY_TOPIC", "scm_inventory")
	viper.SetDefault("REQUESTS_TOPIC", "scm_requests")
	viper.SetDefault("CONSUME_LIMIT", 5000)
	viper.SetDefault("OFFSET_RESET", "earliest")
	viper.SetDefault("MAX_GEN_ATTEMPTS", 3)
	viper.SetDefault("RETRY_BASE_DELAY_SECONDS", 1)
	viper.SetDefault("GEN_REQUEST_TIMEOUT", 30)
	viper.SetDefault("STREAM_REQUEST_TIMEOUT", 15)
	viper.SetDefault("ML_REQUEST_TIMEOUT", 10)
	viper.SetDefault("FORECAST_WEEKS", 12)
	viper.SetDefault("TOP_ITEMS", 10)
	viper.SetDefault("TOP_PROJECTS", 5)
	viper.SetDefault("RECENT_RECORDS", 50)
	viper.SetDefault("INVENTORY_CAP", 100)
	viper.SetDefault("PREDICTION_CACHE_SIZE", 128)
	viper.SetDefault("RATE_LIMIT_MESSAGES_PER_MIN", 20)
	viper.SetDefault("RATE_LIMIT_BURST_SIZE", 5)
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("WEB_PORT", 8090)
	viper.SetDefault("LOG_LEVEL", "info")

	if err := viper.ReadInConfig(); err != nil {
		if logger != nil {
			logger.Warn("Could not read config file, using defaults/env vars", zap.Error(err))
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		// Config unmarshaling is critical - fail fast during bootstrap
		if logger != nil {
			logger.Fatal("Unable to decode config into struct", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: Unable to decode config into struct: %v\n", err)
			os.Exit(1)
		}
	}

	// Convert seconds to proper time.Duration
	config.RetryBaseDelaySeconds = config.RetryBaseDelaySeconds * time.Second
	config.GenRequestTimeout = config.GenRequestTimeout * time.Second
	config.StreamRequestTimeout = config.StreamRequestTimeout * time.Second
	config.MLRequestTimeout = config.MLRequestTimeout * time.Second

	return &config
}
