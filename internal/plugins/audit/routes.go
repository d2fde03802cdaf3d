package audit

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the audit log on the /api/v1 group.
func RegisterRoutes(api *echo.Group, h *Handler) {
	api.GET("/audit", h.List)
}
