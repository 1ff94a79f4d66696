package dto

import (
	"strings"

	"pharmadesk/internal/core/id"
	"pharmadesk/internal/domain"
	"pharmadesk/internal/domain/billing"
	"pharmadesk/internal/domain/documents/invoice"
)

// InvoiceRequest is the body of invoice create and update calls.
// Totals are always recomputed; any totals sent by the client are ignored.
type InvoiceRequest struct {
	DocumentRequest
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
}

// ToCreate builds a new invoice from the request.
func (r InvoiceRequest) ToCreate() (*invoice.Invoice, domain.Input, error) {
	doc := invoice.NewInvoice("")
	if err := r.fill(doc); err != nil {
		return nil, domain.Input{}, err
	}
	return doc, r.input(), nil
}

// ToUpdate builds the replacement for the invoice docID. A zero version
// skips the optimistic lock check.
func (r InvoiceRequest) ToUpdate(docID id.ID) (*invoice.Invoice, domain.Input, error) {
	doc := &invoice.Invoice{}
	doc.ID = docID
	doc.Version = r.Version
	if err := r.fill(doc); err != nil {
		return nil, domain.Input{}, err
	}
	return doc, r.input(), nil
}

func (r InvoiceRequest) fill(doc *invoice.Invoice) error {
	if err := r.applyHeader(doc.Header(), r.CustomerName); err != nil {
		return err
	}
	doc.CustomerPhone = strings.TrimSpace(r.CustomerPhone)
	return nil
}

// InvoiceResponse is an invoice as returned to clients.
type InvoiceResponse struct {
	DocumentHeader
	CustomerName  string             `json:"customerName"`
	CustomerPhone string             `json:"customerPhone,omitempty"`
	Items         []billing.LineItem `json:"items"`
	billing.DocumentTotals
}

// FromInvoice creates the response for doc.
func FromInvoice(doc *invoice.Invoice) InvoiceResponse {
	return InvoiceResponse{
		DocumentHeader: fromHeader(doc.Header()),
		CustomerName:   doc.CounterpartyName,
		CustomerPhone:  doc.CustomerPhone,
		Items:          lines(doc.Lines),
		DocumentTotals: doc.DocumentTotals,
	}
}
