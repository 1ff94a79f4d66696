// Package tx defines the transaction boundary used by the document services.
package tx

import (
	"context"
)

// Manager runs a unit of work atomically. Repositories find the active
// transaction in the context passed to fn.
//
// Nested calls join the transaction already in ctx.
type Manager interface {
	// RunInTransaction commits when fn returns nil and rolls back otherwise.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager is a Manager that can also open read-only snapshots.
// Document reads use it to load headers and lines consistently.
type ReadOnlyManager interface {
	Manager

	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
