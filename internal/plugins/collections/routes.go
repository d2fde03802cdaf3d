package collections

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the collection endpoints on the /api/v1 group.
func RegisterRoutes(api *echo.Group, h *Handler) {
	g := api.Group("/collections")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.POST("/preview", h.Preview)
	g.POST("/import", h.Import)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/reorder", h.Move)
}
