// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"strings"
	"time"

	"pharmadesk/internal/core/apperror"
	"pharmadesk/internal/core/entity"
	"pharmadesk/internal/core/types"
	"pharmadesk/internal/domain"
	"pharmadesk/internal/domain/billing"
)

// --- Envelopes ---

// DataResponse wraps a single payload.
type DataResponse[T any] struct {
	Data T `json:"data"`
}

// ListResponse wraps list results with pagination.
type ListResponse[T any] struct {
	Data   []T   `json:"data"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// DeletedResponse confirms a delete.
type DeletedResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// --- List query ---

// ListQuery contains the list parameters accepted by document endpoints.
type ListQuery struct {
	Search   string `form:"search"`
	DateFrom string `form:"dateFrom"`
	DateTo   string `form:"dateTo"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}

// ToFilter converts the query into a domain filter.
func (q ListQuery) ToFilter() (domain.ListFilter, error) {
	filter := domain.DefaultListFilter()
	filter.Search = strings.TrimSpace(q.Search)
	if q.Limit > 0 {
		filter.Limit = q.Limit
	}
	filter.Offset = q.Offset

	if q.DateFrom != "" {
		from, err := ParseDate("dateFrom", q.DateFrom)
		if err != nil {
			return filter, err
		}
		filter.DateFrom = &from
	}
	if q.DateTo != "" {
		to, err := ParseDate("dateTo", q.DateTo)
		if err != nil {
			return filter, err
		}
		// A bare date includes the whole day.
		if len(q.DateTo) == len(time.DateOnly) {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		filter.DateTo = &to
	}
	return filter.Normalize(), nil
}

// --- Dates ---

// ParseDate accepts a calendar date or an RFC 3339 timestamp. An empty
// value yields the zero time so header validation can report it.
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperror.NewValidation("invalid "+field).
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return t.UTC(), nil
}

// --- Shared document payloads ---

// Adjustments are the document-level amounts a client submits.
type Adjustments struct {
	Discount        types.Number `json:"discount"`
	PreviousBalance types.Number `json:"previousBalance"`
	PaidAmount      types.Number `json:"paidAmount"`
}

// ToDomain converts the amounts into calculator input.
func (a Adjustments) ToDomain() billing.Adjustments {
	return billing.Adjustments{
		DocumentDiscount: a.Discount.Float64(),
		PreviousBalance:  a.PreviousBalance.Float64(),
		PaidAmount:       a.PaidAmount.Float64(),
	}
}

// DocumentRequest carries the request fields shared by every document.
type DocumentRequest struct {
	Number      string            `json:"number"`
	Date        string            `json:"date"`
	PaymentType string            `json:"paymentType"`
	Details     string            `json:"details"`
	Version     int               `json:"version"`
	Items       []billing.RawItem `json:"items"`
	Adjustments
}

// applyHeader copies the shared request fields onto a document header.
func (r DocumentRequest) applyHeader(h *entity.Document, counterparty string) error {
	date, err := ParseDate("date", r.Date)
	if err != nil {
		return err
	}
	h.Number = strings.TrimSpace(r.Number)
	h.Date = date
	h.CounterpartyName = counterparty
	h.PaymentType = r.PaymentType
	h.Details = r.Details
	return nil
}

// input is what the service derives items and totals from.
func (r DocumentRequest) input() domain.Input {
	return domain.Input{Items: r.Items, Adjustments: r.Adjustments.ToDomain()}
}

// DocumentHeader carries the response fields shared by every document.
type DocumentHeader struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	Date        time.Time `json:"date"`
	PaymentType string    `json:"paymentType,omitempty"`
	Details     string    `json:"details,omitempty"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func fromHeader(h *entity.Document) DocumentHeader {
	return DocumentHeader{
		ID:          h.ID.String(),
		Number:      h.Number,
		Date:        h.Date,
		PaymentType: h.PaymentType,
		Details:     h.Details,
		Version:     h.Version,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

func lines(items []billing.LineItem) []billing.LineItem {
	if items == nil {
		return []billing.LineItem{}
	}
	return items
}
