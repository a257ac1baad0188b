package intent

// Config controls the intent-extraction call.
type Config struct {
	Temperature float64
	MaxTokens   int
	// FallbackQueryLimit bounds the rune length of the fallback query
	// built from the raw message.
	FallbackQueryLimit int
}

func DefaultConfig() *Config {
	return &Config{
		Temperature:        0.1,
		MaxTokens:          500,
		FallbackQueryLimit: 100,
	}
}
