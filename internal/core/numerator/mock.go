package numerator

import (
	"context"
	"fmt"
	"sync"
)

// MockGenerator is a test implementation of Generator.
// Without GetNextNumberFunc it counts per key in memory.
type MockGenerator struct {
	GetNextNumberFunc func(ctx context.Context, cfg Config) (string, error)

	mu    sync.Mutex
	calls map[string]int
}

// GetNextNumber implements Generator.
func (m *MockGenerator) GetNextNumber(ctx context.Context, cfg Config) (string, error) {
	if m.GetNextNumberFunc != nil {
		return m.GetNextNumberFunc(ctx, cfg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[cfg.Key]++
	return fmt.Sprintf("%s-%05d", cfg.Prefix, m.calls[cfg.Key]), nil
}

// Calls returns how many numbers were issued for key.
func (m *MockGenerator) Calls(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[key]
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)
