package products

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the catalog endpoints on the /api/v1 group. Static
// segments are registered alongside :id; echo prefers them on conflict.
func RegisterRoutes(api *echo.Group, h *Handler) {
	g := api.Group("/products")
	g.GET("", h.ListProducts)
	g.GET("/facets", h.Facets)
	g.GET("/export.xlsx", h.ExportXLSX)
	g.POST("/bulk/tags", h.BulkTags)
	g.GET("/:id", h.GetProduct)
	g.POST("/:id/tags/:tagId", h.AddTag)
	g.DELETE("/:id/tags/:tagId", h.RemoveTag)
}
