package audit

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/tagboard/internal/apperror"
)

// Handler serves the audit log.
type Handler struct {
	service AuditService
}

// NewHandler creates an audit handler.
func NewHandler(service AuditService) *Handler {
	return &Handler{service: service}
}

// List handles GET /audit?actor=&resourceType=&resourceId=&page=.
func (h *Handler) List(c echo.Context) error {
	var filter ListFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &filter); err != nil {
		return apperror.NewBadRequest("invalid query parameters")
	}

	page, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}
