package posts

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the feed endpoints on the /api/v1 group.
func RegisterRoutes(api *echo.Group, h *Handler) {
	g := api.Group("/posts")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/comments", h.AddComment)
	g.DELETE("/:id/comments/:commentId", h.DeleteComment)
	g.POST("/:id/reactions/:label", h.ToggleReaction)
	g.POST("/:id/publish", h.Publish)
	g.POST("/:id/unpublish", h.Unpublish)
}
