package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Persistence configuration
	Persistence PersistenceConfig `mapstructure:"persistence"`

	// Engine tuning
	Engine EngineConfig `mapstructure:"engine"`

	// Extraction configuration
	Extraction ExtractionConfig `mapstructure:"extraction"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// PersistenceConfig holds snapshot persistence configuration
type PersistenceConfig struct {
	Driver           string `mapstructure:"driver"` // file, badger
	Path             string `mapstructure:"path"`
	TypeRegistryPath string `mapstructure:"type_registry_path"`
	FlushSeconds     int    `mapstructure:"flush_seconds"`
}

// EngineConfig holds graph engine tuning
type EngineConfig struct {
	CoOccurrenceWindowSeconds int `mapstructure:"cooccurrence_window_seconds"`
	RingCapacity              int `mapstructure:"ring_capacity"`
	PromotionThreshold        int `mapstructure:"promotion_threshold"`
	PendingTTLHours           int `mapstructure:"pending_ttl_hours"`
	DecayCutoffDays           int `mapstructure:"decay_cutoff_days"`
	DecayIntervalHours        int `mapstructure:"decay_interval_hours"`
}

// ExtractionConfig holds LLM extraction configuration
type ExtractionConfig struct {
	Provider string `mapstructure:"provider"` // openai, mock
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Persistence defaults
	home, err := os.UserHomeDir()
	base := ".lifegraph"
	if err == nil {
		base = fmt.Sprintf("%s/.lifegraph", home)
	}
	viper.SetDefault("persistence.driver", "file")
	viper.SetDefault("persistence.path", fmt.Sprintf("%s/graph.json", base))
	viper.SetDefault("persistence.type_registry_path", fmt.Sprintf("%s/types.json", base))
	viper.SetDefault("persistence.flush_seconds", 60)

	// Engine defaults
	viper.SetDefault("engine.cooccurrence_window_seconds", 30)
	viper.SetDefault("engine.ring_capacity", 50)
	viper.SetDefault("engine.promotion_threshold", 2)
	viper.SetDefault("engine.pending_ttl_hours", 24)
	viper.SetDefault("engine.decay_cutoff_days", 7)
	viper.SetDefault("engine.decay_interval_hours", 24)

	// Extraction defaults
	viper.SetDefault("extraction.provider", "openai")
	viper.SetDefault("extraction.model", "gpt-4o-mini")

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 120)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	// Telemetry defaults
	viper.SetDefault("telemetry.parquet_path", fmt.Sprintf("%s/telemetry", base))
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Extraction.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.Extraction.BaseURL = baseURL
	}
	if model := os.Getenv("LIFEGRAPH_MODEL"); model != "" {
		config.Extraction.Model = model
	}

	// Persistence settings
	if driver := os.Getenv("LIFEGRAPH_DRIVER"); driver != "" {
		config.Persistence.Driver = driver
	}
	if path := os.Getenv("LIFEGRAPH_PATH"); path != "" {
		config.Persistence.Path = path
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		viper.Set("server.port", port)
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
