package handlers

import (
	"pharmadesk/internal/domain/documents/purchase"
	"pharmadesk/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler handles HTTP requests for purchases.
type PurchaseHandler struct {
	*BaseDocumentHandler[*purchase.Purchase, dto.PurchaseRequest, dto.PurchaseResponse]
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service) *PurchaseHandler {
	cfg := BaseDocumentHandlerConfig[*purchase.Purchase, dto.PurchaseRequest, dto.PurchaseResponse]{
		Service:   service,
		MapCreate: dto.PurchaseRequest.ToCreate,
		MapUpdate: dto.PurchaseRequest.ToUpdate,
		MapToDTO:  dto.FromPurchase,
	}

	return &PurchaseHandler{
		BaseDocumentHandler: NewBaseDocumentHandler(base, cfg),
	}
}
