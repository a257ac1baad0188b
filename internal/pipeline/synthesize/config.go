package synthesize

// Config holds defaults for the synthesis call. Request-level values
// override these when set.
type Config struct {
	Temperature float64
	MaxTokens   int
}

func DefaultConfig() *Config {
	return &Config{
		Temperature: 0.3,
		MaxTokens:   700,
	}
}
