// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of dispatch workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// OutboxSize bounds the number of retained submission records.
	OutboxSize int `koanf:"outbox_size"`

	// MaxRecentLimit caps GET /submissions?limit.
	MaxRecentLimit int `koanf:"max_recent_limit"`

	// DispatchLatencyMinMS and DispatchLatencyMaxMS simulate external
	// delivery latency bounds.
	DispatchLatencyMinMS int `koanf:"dispatch_latency_min_ms"`
	DispatchLatencyMaxMS int `koanf:"dispatch_latency_max_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		QueueSize:            10_000,
		WorkerCount:          4,
		DedupeSize:           50_000,
		OutboxSize:           10_000,
		MaxRecentLimit:       100,
		DispatchLatencyMinMS: 80,
		DispatchLatencyMaxMS: 150,
	}
}
