package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	GenAI    GenAIConfig    `mapstructure:"genai"`
	Search   SearchConfig   `mapstructure:"search"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// GenAIConfig holds the Gemini model client settings.
type GenAIConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base_url"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
}

type SearchConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxResults int    `mapstructure:"max_results"`
}

type FetchConfig struct {
	Timeout        int `mapstructure:"timeout"` // milliseconds, per page load
	MaxBytes       int `mapstructure:"max_bytes"`
	MaxConcurrency int `mapstructure:"max_concurrency"`
}

type CacheConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl"` // milliseconds
}

// PipelineConfig holds knobs for the orchestration stages.
type PipelineConfig struct {
	SnippetLimit       int  `mapstructure:"snippet_limit"`        // characters per citation snippet
	FallbackQueryLimit int  `mapstructure:"fallback_query_limit"` // characters of the message used as fallback query
	MaxTotalResults    int  `mapstructure:"max_total_results"`    // 0 = no global cap across queries
	DedupeByURL        bool `mapstructure:"dedupe_by_url"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks critical configuration fields.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.GenAI.Model == "" {
		return fmt.Errorf("genai.model is required")
	}
	if c.Cache.Enabled && c.Cache.Address == "" {
		return fmt.Errorf("cache.address is required when cache is enabled")
	}
	return nil
}
