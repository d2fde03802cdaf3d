package tags

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the tag endpoints on the /api/v1 group.
func RegisterRoutes(api *echo.Group, h *Handler) {
	g := api.Group("/tags")
	g.GET("", h.ListTags)
	g.POST("", h.CreateTag)
	g.GET("/:id", h.GetTag)
	g.PUT("/:id", h.UpdateTag)
	g.DELETE("/:id", h.DeleteTag)
	g.POST("/:id/duplicate", h.DuplicateTag)
	g.POST("/:id/archive", h.ArchiveTag)
	g.POST("/:id/restore", h.RestoreTag)
}
