// Package invoice implements sales invoices: additive line units, stock
// consumed on create and restored on delete.
package invoice

import (
	"context"
	"slices"

	"pharmadesk/internal/core/entity"
	"pharmadesk/internal/domain"
	"pharmadesk/internal/domain/billing"
)

// Invoice is a sale to a customer.
type Invoice struct {
	entity.Document

	CustomerPhone string `db:"customer_phone" json:"customerPhone,omitempty"`

	billing.DocumentTotals

	Lines []billing.LineItem `db:"-" json:"items"`
}

var _ domain.Document = (*Invoice)(nil)

// NewInvoice creates an empty invoice with a generated ID.
func NewInvoice(pharmacyID string) *Invoice {
	return &Invoice{Document: entity.NewDocument(pharmacyID)}
}

// Validate checks the header fields an invoice cannot be saved without.
func (i *Invoice) Validate(ctx context.Context) error {
	return i.ValidateHeader("customerName")
}

func (i *Invoice) Header() *entity.Document { return &i.Document }
func (i *Invoice) LineItems() []billing.LineItem { return i.Lines }
func (i *Invoice) SetLineItems(items []billing.LineItem) { i.Lines = items }
func (i *Invoice) Totals() billing.DocumentTotals { return i.DocumentTotals }
func (i *Invoice) SetTotals(totals billing.DocumentTotals) { i.DocumentTotals = totals }

// Clone returns a deep copy.
func (i *Invoice) Clone() *Invoice {
	c := *i
	c.Lines = slices.Clone(i.Lines)
	return &c
}
