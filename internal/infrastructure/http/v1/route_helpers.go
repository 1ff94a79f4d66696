package v1

import (
	"slices"

	"github.com/gin-gonic/gin"
)

// DocumentRouteHandler defines the interface for document handlers.
type DocumentRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// RegisterDocumentRoutes registers the standard CRUD routes for a document.
// guard runs before every mutating handler.
//
// Usage:
//
//	handler := handlers.NewInvoiceHandler(baseHandler, service)
//	RegisterDocumentRoutes(api.Group("/invoices"), handler)
func RegisterDocumentRoutes(group *gin.RouterGroup, handler DocumentRouteHandler, guard ...gin.HandlerFunc) {
	group.GET("", handler.List)
	group.GET("/:id", handler.Get)
	group.POST("", chain(guard, handler.Create)...)
	group.PUT("/:id", chain(guard, handler.Update)...)
	group.DELETE("/:id", chain(guard, handler.Delete)...)
}

func chain(guard []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	return append(slices.Clone(guard), h)
}
