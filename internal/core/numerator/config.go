// Package numerator provides domain contracts for document auto-numbering.
package numerator

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict asks the counter for every number.
	// Sequential numbers without gaps.
	StrategyStrict Strategy = iota

	// StrategyCached reserves ranges of numbers and hands them out from memory.
	// Faster, but a restart leaves a gap.
	StrategyCached
)

// ParseStrategy maps a configuration value to a Strategy.
func ParseStrategy(s string) (Strategy, bool) {
	switch s {
	case "", "strict":
		return StrategyStrict, true
	case "cached":
		return StrategyCached, true
	default:
		return StrategyStrict, false
	}
}

// Options configuration for number generation.
type Options struct {
	// Strategy to use for number generation
	Strategy Strategy
	// RangeSize is the number of values reserved at once by the cached strategy.
	// Default is 50.
	RangeSize int64
}

// DefaultOptions returns standard options (Strict).
func DefaultOptions() *Options {
	return &Options{
		Strategy: StrategyStrict,
	}
}

// Config holds numbering configuration for one document type.
type Config struct {
	// Key names the shared counter, e.g. "invoice"
	Key string

	// Prefix added to all numbers (e.g. "INV")
	Prefix string

	// PadWidth is the minimum digit count (default 5)
	PadWidth int
}

// Document numbering used by the pharmacy documents.
var (
	InvoiceConfig  = Config{Key: "invoice", Prefix: "INV", PadWidth: 5}
	PurchaseConfig = Config{Key: "purchase", Prefix: "PUR", PadWidth: 5}
)
