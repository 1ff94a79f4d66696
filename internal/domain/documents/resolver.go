// Package documents holds the pieces shared by the invoice and purchase packages.
package documents

import (
	"context"
	"errors"
	"strings"

	"pharmadesk/internal/core/apperror"
	"pharmadesk/internal/core/types"
	"pharmadesk/internal/domain"
	"pharmadesk/internal/domain/billing"
	"pharmadesk/internal/domain/registers/stock"
)

var _ domain.ItemResolver = (*MedicineResolver)(nil)

// MedicineResolver links rows to catalog medicines.
type MedicineResolver struct {
	medicines stock.MedicineStore
}

// NewMedicineResolver creates a new MedicineResolver.
func NewMedicineResolver(medicines stock.MedicineStore) *MedicineResolver {
	return &MedicineResolver{medicines: medicines}
}

// Resolve determines the catalog medicine of every row:
//
//  1. An explicit medicineId must exist in the catalog.
//  2. Otherwise the row name is looked up; a miss leaves a free-text row
//     that never moves stock.
//
// With withBoxPattern, rows without their own unitsPerBox take the
// medicine's box pattern. The input slice is not modified.
func (r *MedicineResolver) Resolve(ctx context.Context, rows []billing.RawItem, withBoxPattern bool) ([]billing.RawItem, error) {
	out := make([]billing.RawItem, len(rows))
	for i, row := range rows {
		med, err := r.lookup(ctx, row)
		if err != nil {
			return nil, err
		}
		if med != nil {
			row.MedicineID = med.ID
			if strings.TrimSpace(row.Name) == "" {
				row.Name = med.Name
			}
			if withBoxPattern && row.UnitsPerBox == 0 {
				row.UnitsPerBox = types.Number(med.UnitsPerBox)
			}
		}
		out[i] = row
	}
	return out, nil
}

func (r *MedicineResolver) lookup(ctx context.Context, row billing.RawItem) (*stock.Medicine, error) {
	if medID := strings.TrimSpace(row.MedicineID); medID != "" {
		med, err := r.medicines.FindByID(ctx, medID)
		if errors.Is(err, stock.ErrMedicineNotFound) {
			return nil, apperror.NewNotFound("medicine", medID)
		}
		if err != nil {
			return nil, apperror.NewDatabase("find medicine", err)
		}
		return med, nil
	}

	name := strings.TrimSpace(row.Name)
	if name == "" {
		return nil, nil
	}
	med, err := r.medicines.FindByName(ctx, name)
	if errors.Is(err, stock.ErrMedicineNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.NewDatabase("find medicine", err)
	}
	return med, nil
}
