// Package entity holds the header shared by every persisted document.
package entity

import (
	"context"
	"strings"
	"time"

	"pharmadesk/internal/core/apperror"
	"pharmadesk/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants without storage access.
type Validatable interface {
	Validate(ctx context.Context) error
}

// Document is the header of an invoice or a purchase.
type Document struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Number is the human-readable sequence number. Caller-supplied numbers are kept verbatim.
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// CounterpartyName is the customer (invoice) or supplier (purchase)
	CounterpartyName string `db:"counterparty_name" json:"counterpartyName"`

	PaymentType string `db:"payment_type" json:"paymentType,omitempty"`
	Details     string `db:"details" json:"details,omitempty"`

	// PharmacyID scopes the document to its owner; empty for unscoped deployments
	PharmacyID string `db:"pharmacy_id" json:"pharmacyId,omitempty"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewDocument creates a Document with a generated ID.
func NewDocument(pharmacyID string) Document {
	now := time.Now().UTC()
	return Document{
		ID:         id.New(),
		PharmacyID: pharmacyID,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ValidateHeader checks the required header fields. counterpartyField names
// the JSON field reported back to the client, e.g. "customerName".
func (d *Document) ValidateHeader(counterpartyField string) error {
	d.CounterpartyName = strings.TrimSpace(d.CounterpartyName)
	if d.CounterpartyName == "" {
		return apperror.NewValidation(counterpartyField+" is required").
			WithDetail("field", counterpartyField)
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}

// Touch refreshes the modification timestamp.
func (d *Document) Touch() {
	d.UpdatedAt = time.Now().UTC()
}
