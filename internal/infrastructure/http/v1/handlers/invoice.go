package handlers

import (
	"pharmadesk/internal/domain/documents/invoice"
	"pharmadesk/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler handles HTTP requests for invoices.
type InvoiceHandler struct {
	*BaseDocumentHandler[*invoice.Invoice, dto.InvoiceRequest, dto.InvoiceResponse]
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service) *InvoiceHandler {
	cfg := BaseDocumentHandlerConfig[*invoice.Invoice, dto.InvoiceRequest, dto.InvoiceResponse]{
		Service:   service,
		MapCreate: dto.InvoiceRequest.ToCreate,
		MapUpdate: dto.InvoiceRequest.ToUpdate,
		MapToDTO:  dto.FromInvoice,
	}

	return &InvoiceHandler{
		BaseDocumentHandler: NewBaseDocumentHandler(base, cfg),
	}
}
