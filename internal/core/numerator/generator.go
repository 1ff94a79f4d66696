package numerator

import (
	"context"
)

// Generator generates sequential document numbers.
// Implementations live in pkg/numerator.
type Generator interface {
	// GetNextNumber returns the next formatted number, e.g. INV-00001.
	GetNextNumber(ctx context.Context, cfg Config) (string, error)
}

// Counter is the monotonically increasing store behind a Generator.
// Values start at 1 for an unseen key.
type Counter interface {
	// Next increments key by one and returns the new value.
	Next(ctx context.Context, key string) (int64, error)

	// Reserve increments key by n and returns the new value, so the caller
	// owns the range (value-n, value].
	Reserve(ctx context.Context, key string, n int64) (int64, error)
}
