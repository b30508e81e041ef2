package snapshot

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	PoolSize     int
	MinIdleConns int

	// TableTTL bounds how long a snapshot may live without an invalidation.
	// Invalidation on commit is the primary freshness mechanism; the TTL is
	// a backstop.
	TableTTL time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		TableTTL:     time.Hour,
	}
}
