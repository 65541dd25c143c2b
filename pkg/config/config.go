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

	// Store configuration
	Store StoreConfig `mapstructure:"store"`

	// LLM configuration
	LLM LLMConfig `mapstructure:"llm"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// Simplify configuration
	Simplify SimplifyConfig `mapstructure:"simplify"`

	// Retrieval configuration
	Retrieval RetrievalConfig `mapstructure:"retrieval"`

	// Export configuration
	Export ExportConfig `mapstructure:"export"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
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

// StoreConfig holds graph persistence configuration
type StoreConfig struct {
	// Driver selects the persistence backend: json, badger or neo4j
	Driver string `mapstructure:"driver"`
	// Path is the JSON file path, the badger directory, or the neo4j URI
	Path string `mapstructure:"path"`
	// Username, Password and Database apply to neo4j only
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// LLMConfig holds answer/extraction model configuration
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"` // openai
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// EmbeddingConfig holds embedding configuration
type EmbeddingConfig struct {
	Provider  string `mapstructure:"provider"` // openai, embedeverything
	Model     string `mapstructure:"model"`
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	BatchSize int    `mapstructure:"batch_size"`
}

// SimplifyConfig holds node-deduplication configuration
type SimplifyConfig struct {
	Threshold           float64  `mapstructure:"threshold"`
	ExcludedSuffixes    []string `mapstructure:"excluded_suffixes"`
	RecomputeEmbeddings bool     `mapstructure:"recompute_embeddings"`
}

// RetrievalConfig holds query-time configuration
type RetrievalConfig struct {
	TopK          int     `mapstructure:"top_k"`
	MaxPathLength int     `mapstructure:"max_path_length"`
	Threshold     float64 `mapstructure:"threshold"`
	MaxTokens     int     `mapstructure:"max_tokens"`
}

// ExportConfig holds parquet export configuration
type ExportConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
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

	// Store defaults
	viper.SetDefault("store.driver", "json")
	viper.SetDefault("store.path", "./legame.json")

	// LLM defaults
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.max_tokens", 1024)

	// Embedding defaults
	viper.SetDefault("embedding.provider", "openai")
	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.batch_size", 100)

	// Simplify defaults
	viper.SetDefault("simplify.threshold", 0.9)

	// Retrieval defaults
	viper.SetDefault("retrieval.top_k", 5)
	viper.SetDefault("retrieval.max_path_length", 4)
	viper.SetDefault("retrieval.threshold", 0.5)
	viper.SetDefault("retrieval.max_tokens", 2000)

	// Export defaults
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("export.parquet_path", fmt.Sprintf("%s/.legame/export", home))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		if config.LLM.APIKey == "" {
			config.LLM.APIKey = apiKey
		}
		if config.Embedding.APIKey == "" {
			config.Embedding.APIKey = apiKey
		}
	}

	// Store settings
	if driver := os.Getenv("STORE_DRIVER"); driver != "" {
		config.Store.Driver = driver
	}
	if path := os.Getenv("STORE_PATH"); path != "" {
		config.Store.Path = path
	}
	if username := os.Getenv("STORE_USERNAME"); username != "" {
		config.Store.Username = username
	}
	if password := os.Getenv("STORE_PASSWORD"); password != "" {
		config.Store.Password = password
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		viper.Set("server.port", port)
	}

	// Export settings
	if path := os.Getenv("EXPORT_PARQUET_PATH"); path != "" {
		config.Export.ParquetPath = path
	}
}
