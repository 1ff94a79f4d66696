package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmadesk/internal/core/id"
	"pharmadesk/internal/domain"
	"pharmadesk/internal/infrastructure/http/v1/dto"
)

// DocumentService defines the interface that services must implement for BaseDocumentHandler.
type DocumentService[T domain.Document] interface {
	GetByID(ctx context.Context, docID id.ID) (T, error)
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error)
	Create(ctx context.Context, doc T, in domain.Input) error
	Update(ctx context.Context, doc T, in domain.Input) error
	Delete(ctx context.Context, docID id.ID) error
}

// BaseDocumentHandler provides generic HTTP handlers for document entities.
type BaseDocumentHandler[T domain.Document, Req any, Resp any] struct {
	*BaseHandler
	service DocumentService[T]

	// Mapper functions
	mapCreate func(req Req) (T, domain.Input, error)
	mapUpdate func(req Req, docID id.ID) (T, domain.Input, error)
	mapToDTO  func(doc T) Resp
}

// BaseDocumentHandlerConfig configures the document handler.
type BaseDocumentHandlerConfig[T domain.Document, Req any, Resp any] struct {
	Service   DocumentService[T]
	MapCreate func(req Req) (T, domain.Input, error)
	MapUpdate func(req Req, docID id.ID) (T, domain.Input, error)
	MapToDTO  func(doc T) Resp
}

// NewBaseDocumentHandler creates a new base document handler.
func NewBaseDocumentHandler[T domain.Document, Req any, Resp any](
	base *BaseHandler,
	cfg BaseDocumentHandlerConfig[T, Req, Resp],
) *BaseDocumentHandler[T, Req, Resp] {
	return &BaseDocumentHandler[T, Req, Resp]{
		BaseHandler: base,
		service:     cfg.Service,
		mapCreate:   cfg.MapCreate,
		mapUpdate:   cfg.MapUpdate,
		mapToDTO:    cfg.MapToDTO,
	}
}

// List handles GET /{entity}
func (h *BaseDocumentHandler[T, Req, Resp]) List(c *gin.Context) {
	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}
	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]Resp, 0, len(result.Items))
	for _, doc := range result.Items {
		items = append(items, h.mapToDTO(doc))
	}
	c.JSON(http.StatusOK, dto.ListResponse[Resp]{
		Data:   items,
		Total:  result.TotalCount,
		Limit:  result.Limit,
		Offset: result.Offset,
	})
}

// Get handles GET /{entity}/:id
func (h *BaseDocumentHandler[T, Req, Resp]) Get(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.mapToDTO(doc))
}

// Create handles POST /{entity}
func (h *BaseDocumentHandler[T, Req, Resp]) Create(c *gin.Context) {
	var req Req
	if !h.BindJSON(c, &req) {
		return
	}

	doc, in, err := h.mapCreate(req)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), doc, in); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, h.mapToDTO(doc))
}

// Update handles PUT /{entity}/:id
func (h *BaseDocumentHandler[T, Req, Resp]) Update(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req Req
	if !h.BindJSON(c, &req) {
		return
	}

	doc, in, err := h.mapUpdate(req, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(c.Request.Context(), doc, in); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.mapToDTO(doc))
}

// Delete handles DELETE /{entity}/:id
func (h *BaseDocumentHandler[T, Req, Resp]) Delete(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.DeletedResponse{ID: docID.String(), Deleted: true})
}
