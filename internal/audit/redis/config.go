package redis

// Config holds Redis connection and batching settings for the audit sink
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// Stream is the name of the audit stream (without prefix)
	Stream string
	// MaxLen caps the stream length (approximate trimming); 0 disables it
	MaxLen int64
	// BatchSize is how many entries are buffered before a pipelined write
	BatchSize int
}

// DefaultConfig returns sensible defaults for the audit sink
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     4,
		MinIdleConns: 1,
		Stream:       "audit",
		MaxLen:       100000,
		BatchSize:    16,
	}
}
