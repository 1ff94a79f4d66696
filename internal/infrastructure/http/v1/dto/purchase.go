package dto

import (
	"strings"

	"pharmadesk/internal/core/id"
	"pharmadesk/internal/domain"
	"pharmadesk/internal/domain/billing"
	"pharmadesk/internal/domain/documents/purchase"
)

// PurchaseRequest is the body of purchase create and update calls.
// previousBalance is accepted but has no effect on purchase totals.
type PurchaseRequest struct {
	DocumentRequest
	SupplierName      string `json:"supplierName"`
	SupplierInvoiceNo string `json:"supplierInvoiceNo"`
}

// ToCreate builds a new purchase from the request.
func (r PurchaseRequest) ToCreate() (*purchase.Purchase, domain.Input, error) {
	doc := purchase.NewPurchase("")
	if err := r.fill(doc); err != nil {
		return nil, domain.Input{}, err
	}
	return doc, r.input(), nil
}

// ToUpdate builds the replacement for the purchase docID.
func (r PurchaseRequest) ToUpdate(docID id.ID) (*purchase.Purchase, domain.Input, error) {
	doc := &purchase.Purchase{}
	doc.ID = docID
	doc.Version = r.Version
	if err := r.fill(doc); err != nil {
		return nil, domain.Input{}, err
	}
	return doc, r.input(), nil
}

func (r PurchaseRequest) fill(doc *purchase.Purchase) error {
	if err := r.applyHeader(doc.Header(), r.SupplierName); err != nil {
		return err
	}
	doc.SupplierInvoiceNo = strings.TrimSpace(r.SupplierInvoiceNo)
	return nil
}

// PurchaseResponse is a purchase as returned to clients.
type PurchaseResponse struct {
	DocumentHeader
	SupplierName      string             `json:"supplierName"`
	SupplierInvoiceNo string             `json:"supplierInvoiceNo,omitempty"`
	Items             []billing.LineItem `json:"items"`
	billing.DocumentTotals
}

// FromPurchase creates the response for doc.
func FromPurchase(doc *purchase.Purchase) PurchaseResponse {
	return PurchaseResponse{
		DocumentHeader:    fromHeader(doc.Header()),
		SupplierName:      doc.CounterpartyName,
		SupplierInvoiceNo: doc.SupplierInvoiceNo,
		Items:             lines(doc.Lines),
		DocumentTotals:    doc.DocumentTotals,
	}
}
