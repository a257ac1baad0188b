package fanout

// Config controls the fan-out search.
type Config struct {
	// MaxConcurrency bounds concurrent page fetches across all queries.
	MaxConcurrency int
	// MaxTotalResults caps the aggregated result count across queries.
	// Zero means no cap.
	MaxTotalResults int
	// DedupeByURL drops repeated URLs across queries when set. Off by
	// default so every query keeps its full result list.
	DedupeByURL bool
}

func DefaultConfig() *Config {
	return &Config{
		MaxConcurrency: 4,
	}
}
