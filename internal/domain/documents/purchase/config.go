package purchase

import (
	"pharmadesk/internal/core/numerator"
	"pharmadesk/internal/domain"
	"pharmadesk/internal/domain/billing"
	"pharmadesk/internal/domain/registers/stock"
)

// NewPolicy returns the purchase lifecycle rules.
func NewPolicy() domain.Policy {
	return domain.Policy{
		Entity:            "purchase",
		Mode:              billing.ModeMultiplicative,
		CreateOp:          stock.PurchaseCreate,
		DeleteOp:          stock.PurchaseDelete,
		Numbering:         numerator.PurchaseConfig,
		ReconcileOnUpdate: true,
		Calculate:         billing.CalculatePayable,
	}
}
