// Package counter provides durable sequence counters for document numbering.
package counter

import (
	"context"
	"fmt"

	"pharmadesk/internal/core/numerator"
	"pharmadesk/internal/infrastructure/storage/postgres"
)

var _ numerator.Counter = (*PostgresCounter)(nil)

// PostgresCounter keeps sequences in the sys_sequences table. Each call is a
// single UPSERT, so concurrent callers never receive the same value.
type PostgresCounter struct {
	db postgres.QuerierProvider
}

// NewPostgresCounter creates a counter over db.
func NewPostgresCounter(db postgres.QuerierProvider) *PostgresCounter {
	return &PostgresCounter{db: db}
}

// Next increments key by one.
func (c *PostgresCounter) Next(ctx context.Context, key string) (int64, error) {
	return c.Reserve(ctx, key, 1)
}

// Reserve increments key by n and returns the new value. A missing key
// starts at zero.
func (c *PostgresCounter) Reserve(ctx context.Context, key string, n int64) (int64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("reserve %q: size must be positive, got %d", key, n)
	}

	var v int64
	err := c.db.GetQuerier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + $2
		RETURNING current_val
	`, key, n).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("reserve %q: %w", key, err)
	}
	return v, nil
}
