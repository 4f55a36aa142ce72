package repository

import "github.com/okian/mergington/pkg/metrics"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMetrics sets the manager that receives roster gauges and latencies.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *MemoryStore) {
		if m != nil {
			s.metrics = m
		}
	}
}
