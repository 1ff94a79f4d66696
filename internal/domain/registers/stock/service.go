package stock

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"pharmadesk/internal/core/apperror"
	"pharmadesk/pkg/logger"
)

const meterName = "pharmadesk/stock"

// Engine validates and applies stock deltas against a MedicineStore.
// It never owns medicine records; it only moves the counters it is given.
type Engine struct {
	store    MedicineStore
	failures metric.Int64Counter
	moved    metric.Int64Counter
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	meterProvider metric.MeterProvider
}

// WithMeterProvider records engine metrics on mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *engineOptions) { o.meterProvider = mp }
}

// NewEngine creates a stock engine.
func NewEngine(store MedicineStore, opts ...Option) *Engine {
	o := engineOptions{meterProvider: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt(&o)
	}
	meter := o.meterProvider.Meter(meterName)

	failures, err := meter.Int64Counter("pharmadesk.stock.apply.failures",
		metric.WithDescription("Stock increments that failed after the document was saved"))
	if err != nil {
		logger.Warn(context.Background(), "stock failure counter unavailable", "error", err)
	}
	moved, err := meter.Int64Counter("pharmadesk.stock.apply.units",
		metric.WithDescription("Absolute stock units moved by documents"),
		metric.WithUnit("{unit}"))
	if err != nil {
		logger.Warn(context.Background(), "stock units counter unavailable", "error", err)
	}

	return &Engine{store: store, failures: failures, moved: moved}
}

// ValidateSufficientStock is a dry pass over every consuming entry of d.
// It reads counters only; the first shortfall in id order is returned as
// an INSUFFICIENT_STOCK error.
func (e *Engine) ValidateSufficientStock(ctx context.Context, d Delta) error {
	for _, medID := range d.IDs() {
		units := d[medID]
		if units >= 0 {
			continue
		}

		med, err := e.store.FindByID(ctx, medID)
		if err != nil {
			return e.lookupError(medID, err)
		}
		if med.Stock+units < 0 {
			return apperror.NewInsufficientStock(med.ID, med.Name, med.Stock, -units)
		}
	}
	return nil
}

// Apply moves every counter in d, stopping at the first failure.
// Callers run it inside a transaction so a failure undoes the whole operation.
func (e *Engine) Apply(ctx context.Context, d Delta) error {
	for _, medID := range d.IDs() {
		units := d[medID]
		if _, err := e.store.IncrementStock(ctx, medID, units); err != nil {
			return e.applyError(ctx, medID, err)
		}
		e.recordMoved(ctx, units)
	}
	return nil
}

// ApplyReport summarizes a best-effort application.
type ApplyReport struct {
	Applied []string
	Failed  map[string]error
}

// OK reports whether every counter moved.
func (r ApplyReport) OK() bool {
	return len(r.Failed) == 0
}

// ApplyBestEffort attempts every counter in d and never returns an error.
// Each failure is logged and counted so the drift between document and stock is visible.
func (e *Engine) ApplyBestEffort(ctx context.Context, d Delta, op Operation) ApplyReport {
	report := ApplyReport{Failed: make(map[string]error)}
	for _, medID := range d.IDs() {
		units := d[medID]
		if _, err := e.store.IncrementStock(ctx, medID, units); err != nil {
			report.Failed[medID] = err
			logger.Warn(ctx, "stock update failed after document was saved",
				"medicine_id", medID,
				"delta", units,
				"operation", op.String(),
				"error", err,
			)
			if e.failures != nil {
				e.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op.String())))
			}
			continue
		}
		report.Applied = append(report.Applied, medID)
		e.recordMoved(ctx, units)
	}
	return report
}

func (e *Engine) recordMoved(ctx context.Context, units int64) {
	if e.moved == nil {
		return
	}
	direction := "in"
	if units < 0 {
		direction, units = "out", -units
	}
	e.moved.Add(ctx, units, metric.WithAttributes(attribute.String("direction", direction)))
}

func (e *Engine) lookupError(medID string, err error) error {
	if errors.Is(err, ErrMedicineNotFound) {
		return apperror.NewNotFound("medicine", medID)
	}
	return apperror.NewDatabase("find medicine", fmt.Errorf("medicine %s: %w", medID, err))
}

func (e *Engine) applyError(ctx context.Context, medID string, err error) error {
	var underflow *UnderflowError
	if errors.As(err, &underflow) {
		name := ""
		if med, findErr := e.store.FindByID(ctx, medID); findErr == nil {
			name = med.Name
		}
		return apperror.NewInsufficientStock(medID, name, underflow.Available, underflow.Requested)
	}
	if errors.Is(err, ErrMedicineNotFound) {
		return apperror.NewNotFound("medicine", medID)
	}
	return apperror.NewDatabase("increment stock", fmt.Errorf("medicine %s: %w", medID, err))
}
