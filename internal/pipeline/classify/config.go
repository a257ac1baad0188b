package classify

// Config controls the search-decision call.
type Config struct {
	Temperature float64
	MaxTokens   int
}

func DefaultConfig() *Config {
	return &Config{
		Temperature: 0.1,
		MaxTokens:   10,
	}
}
