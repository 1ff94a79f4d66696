package stock

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"pharmadesk/internal/domain/billing"
)

// ErrUnitsOutOfRange is returned when a row or a per-medicine sum does not fit
// a stock counter.
var ErrUnitsOutOfRange = errors.New("stock units out of range")

// Operation is a document lifecycle step that moves stock.
type Operation int

const (
	InvoiceCreate Operation = iota + 1
	InvoiceDelete
	PurchaseCreate
	PurchaseDelete
)

// Sign is the direction the operation moves stock in.
func (op Operation) Sign() int64 {
	switch op {
	case InvoiceCreate, PurchaseDelete:
		return -1
	case InvoiceDelete, PurchaseCreate:
		return 1
	default:
		return 0
	}
}

func (op Operation) String() string {
	switch op {
	case InvoiceCreate:
		return "invoice_create"
	case InvoiceDelete:
		return "invoice_delete"
	case PurchaseCreate:
		return "purchase_create"
	case PurchaseDelete:
		return "purchase_delete"
	default:
		return "unknown"
	}
}

// Delta maps a medicine id to a signed unit change. Zero entries are never stored.
type Delta map[string]int64

// IDs returns the medicine ids in sorted order so that stock is always
// touched in the same sequence.
func (d Delta) IDs() []string {
	return slices.Sorted(maps.Keys(d))
}

// IsEmpty reports whether applying d would change nothing.
func (d Delta) IsEmpty() bool {
	return len(d) == 0
}

func (d Delta) add(medicineID string, units int64) error {
	v, err := addUnits(d[medicineID], units)
	if err != nil {
		return fmt.Errorf("medicine %s: %w", medicineID, err)
	}
	if v == 0 {
		delete(d, medicineID)
		return nil
	}
	d[medicineID] = v
	return nil
}

// addUnits adds a and b, failing instead of wrapping around.
func addUnits(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrUnitsOutOfRange
	}
	return a + b, nil
}

// unitsByMedicine sums whole units per resolved medicine. Free-text rows are skipped.
func unitsByMedicine(items []billing.LineItem) (map[string]int64, error) {
	units := make(map[string]int64)
	for i, it := range items {
		if !it.Resolved() {
			continue
		}
		if !it.UnitsInRange() {
			return nil, fmt.Errorf("row %d: %w", i+1, ErrUnitsOutOfRange)
		}
		sum, err := addUnits(units[it.ReferenceID], it.StockUnits())
		if err != nil {
			return nil, fmt.Errorf("medicine %s: %w", it.ReferenceID, err)
		}
		units[it.ReferenceID] = sum
	}
	return units, nil
}

// ComputeDelta is the stock effect of creating or deleting a document with items.
func ComputeDelta(items []billing.LineItem, op Operation) (Delta, error) {
	units, err := unitsByMedicine(items)
	if err != nil {
		return nil, err
	}
	d := make(Delta)
	sign := op.Sign()
	for medID, n := range units {
		if err := d.add(medID, sign*n); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// ComputeReconciliationDelta is the net stock change of replacing oldItems with
// newItems on a document created by createOp: sign(createOp) * (new - old).
func ComputeReconciliationDelta(oldItems, newItems []billing.LineItem, createOp Operation) (Delta, error) {
	newUnits, err := unitsByMedicine(newItems)
	if err != nil {
		return nil, err
	}
	oldUnits, err := unitsByMedicine(oldItems)
	if err != nil {
		return nil, err
	}

	d := make(Delta)
	sign := createOp.Sign()
	for medID, n := range newUnits {
		if err := d.add(medID, sign*n); err != nil {
			return nil, err
		}
	}
	for medID, n := range oldUnits {
		if err := d.add(medID, -sign*n); err != nil {
			return nil, err
		}
	}
	return d, nil
}
