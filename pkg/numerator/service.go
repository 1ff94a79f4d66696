// Package numerator provides document auto-numbering on top of a Counter.
package numerator

import (
	"context"
	"fmt"
	"sync"

	corenumerator "pharmadesk/internal/core/numerator"
)

type cachedRange struct {
	current int64
	max     int64
}

// Service formats sequential document numbers.
// It implements core/numerator.Generator.
type Service struct {
	counter corenumerator.Counter
	opts    corenumerator.Options

	// cacheMu protects ranges
	cacheMu sync.Mutex
	ranges  map[string]*cachedRange
}

var _ corenumerator.Generator = (*Service)(nil)

// New creates a numerator over counter. A nil opts means strict numbering.
func New(counter corenumerator.Counter, opts *corenumerator.Options) *Service {
	if opts == nil {
		opts = corenumerator.DefaultOptions()
	}
	return &Service{
		counter: counter,
		opts:    *opts,
		ranges:  make(map[string]*cachedRange),
	}
}

// GetNextNumber generates the next document number.
// Pattern: PREFIX-XXXXX (e.g. INV-00001).
func (s *Service) GetNextNumber(ctx context.Context, cfg corenumerator.Config) (string, error) {
	if s == nil || s.counter == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}
	if cfg.Key == "" {
		return "", fmt.Errorf("numerator key is empty")
	}

	var (
		num int64
		err error
	)
	switch s.opts.Strategy {
	case corenumerator.StrategyCached:
		num, err = s.getNextCached(ctx, cfg.Key)
	default:
		num, err = s.counter.Next(ctx, cfg.Key)
		if err != nil {
			err = fmt.Errorf("strict next: %w", err)
		}
	}
	if err != nil {
		return "", err
	}

	return FormatNumber(cfg, num), nil
}

// getNextCached hands out the next number from memory, refilling the range from the counter.
func (s *Service) getNextCached(ctx context.Context, key string) (int64, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	rng, exists := s.ranges[key]
	if !exists {
		rng = &cachedRange{}
		s.ranges[key] = rng
	}

	if rng.current >= rng.max {
		size := s.opts.RangeSize
		if size <= 0 {
			size = 50
		}

		newMax, err := s.counter.Reserve(ctx, key, size)
		if err != nil {
			return 0, fmt.Errorf("reserve range: %w", err)
		}

		// The counter returns the end of the reserved range (newMax-size, newMax].
		rng.current = newMax - size
		rng.max = newMax
	}

	rng.current++
	return rng.current, nil
}

// FormatNumber creates the final number string.
func FormatNumber(cfg corenumerator.Config, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}
	if cfg.Prefix == "" {
		return fmt.Sprintf("%0*d", padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}
