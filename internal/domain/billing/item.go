// Package billing turns raw document rows into priced line items and
// aggregates them into document totals.
package billing

import (
	"math"

	"pharmadesk/internal/core/types"
)

// Mode selects how a row's stock-moving units are derived.
// It is always chosen by the caller, never inferred from the row.
type Mode string

const (
	// ModeAdditive counts loose units plus box units (invoices).
	ModeAdditive Mode = "additive"
	// ModeMultiplicative multiplies units per box by box count (purchases).
	ModeMultiplicative Mode = "multiplicative"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeAdditive || m == ModeMultiplicative
}

// RawItem is one row as submitted by a client. Numeric fields tolerate
// strings, nulls and garbage; see types.Number.
type RawItem struct {
	Name        string       `json:"name"`
	MedicineID  string       `json:"medicineId"`
	Quantity    types.Number `json:"quantity"`
	BoxQuantity types.Number `json:"boxQuantity"`
	UnitsPerBox types.Number `json:"unitsPerBox"`
	Price       types.Number `json:"price"`
	Discount    types.Number `json:"discount"`
	VAT         types.Number `json:"vat"`
	Batch       string       `json:"batch"`
	ExpiryDate  string       `json:"expiryDate"`
}

// LineItem is a normalized row. Monetary fields keep full precision until
// Rounded is called at the storage boundary.
type LineItem struct {
	ReferenceName   string  `json:"referenceName" db:"name"`
	ReferenceID     string  `json:"referenceId,omitempty" db:"medicine_id"`
	Quantity        float64 `json:"quantity" db:"quantity"`
	BoxQuantity     float64 `json:"boxQuantity" db:"box_quantity"`
	UnitsPerBox     float64 `json:"unitsPerBox,omitempty" db:"units_per_box"`
	UnitPrice       float64 `json:"unitPrice" db:"unit_price"`
	DiscountPercent float64 `json:"discountPercent" db:"discount_percent"`
	VATPercent      float64 `json:"vatPercent" db:"vat_percent"`
	EffectiveUnits  float64 `json:"effectiveUnits" db:"effective_units"`
	LineBase        float64 `json:"lineBase" db:"line_base"`
	LineDiscount    float64 `json:"lineDiscount" db:"line_discount"`
	LineVAT         float64 `json:"lineVat" db:"line_vat"`
	LineTotal       float64 `json:"lineTotal" db:"line_total"`
	Batch           string  `json:"batch,omitempty" db:"batch"`
	ExpiryDate      string  `json:"expiryDate,omitempty" db:"expiry_date"`
}

// Resolved reports whether the row points at a catalog medicine and can move stock.
func (li LineItem) Resolved() bool {
	return li.ReferenceID != ""
}

// MaxStockUnits is the most units a single row may move.
const MaxStockUnits = 1_000_000_000

// UnitsInRange reports whether the row's units fit the stock counters.
func (li LineItem) UnitsInRange() bool {
	return li.EffectiveUnits >= 0 && li.EffectiveUnits <= MaxStockUnits
}

// StockUnits is the whole number of units the row moves. It is only
// meaningful when UnitsInRange holds.
func (li LineItem) StockUnits() int64 {
	return int64(math.Round(li.EffectiveUnits))
}

// Rounded returns a copy with the monetary fields rounded to two decimals.
func (li LineItem) Rounded() LineItem {
	li.LineBase = types.Round2(li.LineBase)
	li.LineDiscount = types.Round2(li.LineDiscount)
	li.LineVAT = types.Round2(li.LineVAT)
	li.LineTotal = types.Round2(li.LineTotal)
	return li
}

// RoundItems rounds every item for storage.
func RoundItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, it := range items {
		out[i] = it.Rounded()
	}
	return out
}
