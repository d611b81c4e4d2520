package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// Config holds all configuration for the storefront binaries.
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server   ServerConfig
	API      APIConfig
	Checkout CheckoutConfig
	Store    StoreConfig
	Stream   StreamConfig
	Catalog  CatalogConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// APIConfig points the shopper at the storefront API and its image CDN
type APIConfig struct {
	URL     string
	CDNURL  string
	Timeout time.Duration
}

type CheckoutConfig struct {
	ResetOnFailure bool
	SubmitTimeout  time.Duration
}

// StoreConfig selects where the server keeps placed orders.
// An empty RedisAddr keeps them in memory.
type StoreConfig struct {
	RedisAddr     string
	RedisPassword string
	OrderTTL      time.Duration
}

// StreamConfig enables exporting bus events. No brokers disables it.
type StreamConfig struct {
	Brokers []string
	Topic   string
}

type CatalogConfig struct {
	ProductsFile string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
		},
		API: APIConfig{
			URL:     getEnv("API_URL", "http://localhost:8080"),
			CDNURL:  getEnv("CDN_URL", "http://localhost:8080/content"),
			Timeout: getEnvAsDuration("API_TIMEOUT", 15*time.Second),
		},
		Checkout: CheckoutConfig{
			ResetOnFailure: getEnvAsBool("CHECKOUT_RESET_ON_FAILURE", true),
			SubmitTimeout:  getEnvAsDuration("CHECKOUT_SUBMIT_TIMEOUT", 10*time.Second),
		},
		Store: StoreConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			OrderTTL:      getEnvAsDuration("ORDER_TTL", 24*time.Hour),
		},
		Stream: StreamConfig{
			Brokers: getEnvAsSlice("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "storefront-events"),
		},
		Catalog: CatalogConfig{
			ProductsFile: getEnv("PRODUCTS_FILE", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("PORT is required")
	}

	u, err := url.Parse(c.API.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Errorf("invalid API_URL: %q", c.API.URL)
	}

	if c.API.Timeout <= 0 {
		return errors.New("API_TIMEOUT must be positive")
	}

	if c.Checkout.SubmitTimeout < 0 {
		return errors.New("CHECKOUT_SUBMIT_TIMEOUT must not be negative")
	}

	if c.Store.OrderTTL < 0 {
		return errors.New("ORDER_TTL must not be negative")
	}

	if len(c.Stream.Brokers) > 0 && c.Stream.Topic == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return errors.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
