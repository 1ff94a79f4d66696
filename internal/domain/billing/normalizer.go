package billing

import (
	"fmt"
	"strings"

	"pharmadesk/internal/core/types"
)

// Normalize converts raw rows into line items using the given mode.
// Numeric garbage becomes 0 and negative inputs are clamped to 0; only an
// unknown mode is an error.
func Normalize(rows []RawItem, mode Mode) ([]LineItem, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown normalization mode %q", mode)
	}

	items := make([]LineItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, normalizeRow(row, mode))
	}
	return items, nil
}

func normalizeRow(row RawItem, mode Mode) LineItem {
	li := LineItem{
		ReferenceName:   strings.TrimSpace(row.Name),
		ReferenceID:     strings.TrimSpace(row.MedicineID),
		Quantity:        types.NonNegative(types.ToNumberOrZero(row.Quantity)),
		BoxQuantity:     types.NonNegative(types.ToNumberOrZero(row.BoxQuantity)),
		UnitsPerBox:     types.NonNegative(types.ToNumberOrZero(row.UnitsPerBox)),
		UnitPrice:       types.NonNegative(types.ToNumberOrZero(row.Price)),
		DiscountPercent: types.NonNegative(types.ToNumberOrZero(row.Discount)),
		VATPercent:      types.NonNegative(types.ToNumberOrZero(row.VAT)),
		Batch:           strings.TrimSpace(row.Batch),
		ExpiryDate:      strings.TrimSpace(row.ExpiryDate),
	}

	li.EffectiveUnits = EffectiveUnits(li.Quantity, li.BoxQuantity, li.UnitsPerBox, mode)
	li.LineBase = li.EffectiveUnits * li.UnitPrice
	li.LineDiscount = li.LineBase * li.DiscountPercent / 100
	li.LineVAT = li.LineBase * li.VATPercent / 100
	// VAT is aggregated on the document, not folded into the line.
	li.LineTotal = li.LineBase - li.LineDiscount
	return li
}

// EffectiveUnits applies the unit rule for mode.
//
// Additive: quantity + boxQuantity.
// Multiplicative: perBox * (boxQuantity || 1) where perBox is
// quantity || unitsPerBox || 1, so an empty row still counts one unit.
func EffectiveUnits(quantity, boxQuantity, unitsPerBox float64, mode Mode) float64 {
	if mode == ModeAdditive {
		return quantity + boxQuantity
	}
	perBox := quantity
	if perBox == 0 {
		perBox = unitsPerBox
	}
	return types.OrOne(perBox) * types.OrOne(boxQuantity)
}
