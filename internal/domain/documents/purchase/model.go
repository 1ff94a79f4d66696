// Package purchase implements supplier purchases: multiplicative line units,
// stock added on create, reconciled on update and removed on delete.
package purchase

import (
	"context"
	"slices"

	"pharmadesk/internal/core/entity"
	"pharmadesk/internal/domain"
	"pharmadesk/internal/domain/billing"
)

// Purchase is a receipt of goods from a supplier.
type Purchase struct {
	entity.Document

	// SupplierInvoiceNo is the supplier's own document number
	SupplierInvoiceNo string `db:"supplier_invoice_no" json:"supplierInvoiceNo,omitempty"`

	billing.DocumentTotals

	Lines []billing.LineItem `db:"-" json:"items"`
}

var _ domain.Document = (*Purchase)(nil)

// NewPurchase creates an empty purchase with a generated ID.
func NewPurchase(pharmacyID string) *Purchase {
	return &Purchase{Document: entity.NewDocument(pharmacyID)}
}

// Validate checks the header fields a purchase cannot be saved without.
func (p *Purchase) Validate(ctx context.Context) error {
	return p.ValidateHeader("supplierName")
}

func (p *Purchase) Header() *entity.Document { return &p.Document }
func (p *Purchase) LineItems() []billing.LineItem { return p.Lines }
func (p *Purchase) SetLineItems(items []billing.LineItem) { p.Lines = items }
func (p *Purchase) Totals() billing.DocumentTotals { return p.DocumentTotals }
func (p *Purchase) SetTotals(totals billing.DocumentTotals) { p.DocumentTotals = totals }

// Clone returns a deep copy.
func (p *Purchase) Clone() *Purchase {
	c := *p
	c.Lines = slices.Clone(p.Lines)
	return &c
}
