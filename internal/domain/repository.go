// Package domain provides the document contracts and the shared document
// lifecycle used by invoices and purchases.
package domain

import (
	"context"
	"time"

	"pharmadesk/internal/core/entity"
	"pharmadesk/internal/core/id"
	"pharmadesk/internal/domain/billing"
)

// --- Filter & Pagination ---

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// ListFilter contains filtering options for document lists.
type ListFilter struct {
	// Search matches number or counterparty name (case-insensitive substring)
	Search string

	DateFrom *time.Time
	DateTo   *time.Time

	// PharmacyID restricts results to one pharmacy; set by the service from the caller
	PharmacyID string

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{Limit: defaultListLimit}
}

// Normalize clamps pagination to supported bounds.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Aggregate contract ---

// Document is implemented by the persisted aggregates (invoice, purchase).
type Document interface {
	entity.Validatable
	Header() *entity.Document
	LineItems() []billing.LineItem
	SetLineItems(items []billing.LineItem)
	Totals() billing.DocumentTotals
	SetTotals(totals billing.DocumentTotals)
}

// --- Repository Interfaces ---

// DocumentRepository persists one document type. Header and totals live in
// one record, line items in another; callers save both in one transaction.
type DocumentRepository[T Document] interface {
	Create(ctx context.Context, doc T) error
	GetByID(ctx context.Context, docID id.ID) (T, error)

	// GetForUpdate locks the record for the rest of the transaction.
	GetForUpdate(ctx context.Context, docID id.ID) (T, error)

	// Update writes header and totals and bumps Version.
	Update(ctx context.Context, doc T) error

	// Delete removes the document and its lines.
	Delete(ctx context.Context, docID id.ID) error

	List(ctx context.Context, filter ListFilter) (ListResult[T], error)

	GetLines(ctx context.Context, docID id.ID) ([]billing.LineItem, error)

	// GetLinesBatch returns lines of several documents keyed by document id.
	GetLinesBatch(ctx context.Context, docIDs []id.ID) (map[id.ID][]billing.LineItem, error)

	// SaveLines replaces all lines of the document.
	SaveLines(ctx context.Context, docID id.ID, lines []billing.LineItem) error
}

// ItemResolver links raw rows to catalog medicines before normalization.
type ItemResolver interface {
	// Resolve fills MedicineID for rows that name a catalog medicine and,
	// when withBoxPattern is set, UnitsPerBox from the catalog.
	Resolve(ctx context.Context, rows []billing.RawItem, withBoxPattern bool) ([]billing.RawItem, error)
}
