// Package stock reconciles document line items against the per-medicine
// stock counters of the catalog.
package stock

import (
	"context"
	"errors"
	"fmt"
)

// ErrMedicineNotFound is returned by a MedicineStore for an unknown id or name.
var ErrMedicineNotFound = errors.New("medicine not found")

// Medicine is the slice of a catalog record the stock engine reads.
// The catalog owns it; the engine only touches Stock through IncrementStock.
type Medicine struct {
	ID          string  `db:"id" json:"id" mapstructure:"id"`
	Name        string  `db:"name" json:"name" mapstructure:"name"`
	Stock       int64   `db:"stock" json:"stock" mapstructure:"stock"`
	UnitsPerBox float64 `db:"units_per_box" json:"unitsPerBox" mapstructure:"units_per_box"`
}

// UnderflowError is returned by IncrementStock when a decrement would take
// the counter below zero. Nothing is written in that case.
type UnderflowError struct {
	MedicineID string
	Available  int64
	Requested  int64
}

func (e *UnderflowError) Error() string {
	return fmt.Sprintf("stock underflow for medicine %s: available %d, requested %d", e.MedicineID, e.Available, e.Requested)
}

// MedicineStore is the catalog collaborator.
type MedicineStore interface {
	FindByID(ctx context.Context, medicineID string) (*Medicine, error)
	FindByName(ctx context.Context, name string) (*Medicine, error)

	// IncrementStock adds delta to the counter and returns the new value.
	// A negative delta is applied only if the result stays >= 0, as one
	// atomic step; otherwise it returns *UnderflowError.
	IncrementStock(ctx context.Context, medicineID string, delta int64) (int64, error)
}
