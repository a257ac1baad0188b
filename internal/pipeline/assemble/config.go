package assemble

// Config controls citation assembly.
type Config struct {
	// SnippetLimit bounds each snippet's rune length.
	SnippetLimit int
}

func DefaultConfig() *Config {
	return &Config{
		SnippetLimit: 1200,
	}
}
