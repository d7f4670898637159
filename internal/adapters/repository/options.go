package repository

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithCapacity bounds the number of tracked submissions.
// If capacity <= 0 the outbox grows without bound.
func WithCapacity(capacity int) Option {
	return func(s *MemStore) {
		s.capacity = capacity
	}
}
