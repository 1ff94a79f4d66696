package invoice

import (
	"pharmadesk/internal/core/numerator"
	"pharmadesk/internal/domain"
	"pharmadesk/internal/domain/billing"
	"pharmadesk/internal/domain/registers/stock"
)

// NewPolicy returns the invoice lifecycle rules. Invoices consume stock and
// must not oversell. Stock follows item edits only when reconcileUpdates is set.
func NewPolicy(reconcileUpdates bool) domain.Policy {
	return domain.Policy{
		Entity:            "invoice",
		Mode:              billing.ModeAdditive,
		CreateOp:          stock.InvoiceCreate,
		DeleteOp:          stock.InvoiceDelete,
		Numbering:         numerator.InvoiceConfig,
		RequireStock:      true,
		ReconcileOnUpdate: reconcileUpdates,
		Calculate:         billing.Calculate,
	}
}
