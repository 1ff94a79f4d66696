// Package memory provides an in-process storage backend for development
// and tests. Transactions are serialized and roll back by restoring a
// snapshot taken at BEGIN.
package memory

import (
	"context"
	"maps"
	"sync"

	"pharmadesk/internal/core/id"
	"pharmadesk/internal/core/tx"
	"pharmadesk/internal/domain/billing"
	"pharmadesk/internal/domain/registers/stock"
)

// Store holds every table of the in-memory backend.
type Store struct {
	// txMu serializes writers; mu guards the maps.
	txMu sync.Mutex
	mu   sync.RWMutex

	medicines map[string]stock.Medicine
	counters  map[string]int64
	docs      map[string]map[id.ID]any
	lines     map[string]map[id.ID][]billing.LineItem
}

// New creates an empty store.
func New() *Store {
	return &Store{
		medicines: make(map[string]stock.Medicine),
		counters:  make(map[string]int64),
		docs:      make(map[string]map[id.ID]any),
		lines:     make(map[string]map[id.ID][]billing.LineItem),
	}
}

type snapshot struct {
	medicines map[string]stock.Medicine
	counters  map[string]int64
	docs      map[string]map[id.ID]any
	lines     map[string]map[id.ID][]billing.LineItem
}

// Stored documents and line slices are replaced, never mutated in place,
// so copying the maps one level deep is a full snapshot.
func (s *Store) takeSnapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		medicines: maps.Clone(s.medicines),
		counters:  maps.Clone(s.counters),
		docs:      make(map[string]map[id.ID]any, len(s.docs)),
		lines:     make(map[string]map[id.ID][]billing.LineItem, len(s.lines)),
	}
	for kind, t := range s.docs {
		snap.docs[kind] = maps.Clone(t)
	}
	for kind, t := range s.lines {
		snap.lines[kind] = maps.Clone(t)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.medicines = snap.medicines
	s.counters = snap.counters
	s.docs = snap.docs
	s.lines = snap.lines
}

// --- Transactions ---

// Compile-time check that TxManager implements tx.Manager interface.
var _ tx.Manager = (*TxManager)(nil)

// TxManager runs functions as serialized, all-or-nothing units over a Store.
type TxManager struct {
	store *Store
}

// NewTxManager creates a transaction manager for store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

type txKey struct{}

// RunInTransaction executes fn exclusively. If fn returns an error every
// change made since the call is undone. Nested calls join the outer transaction.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	snap := m.store.takeSnapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// write runs fn with the data lock held. Outside a transaction it also takes
// the writer lock so a concurrent rollback cannot erase the change.
func (s *Store) write(ctx context.Context, fn func()) {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *Store) read(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

// Ping always succeeds; it lets the store stand in for a database in health checks.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}
