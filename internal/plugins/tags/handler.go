package tags

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/tagboard/internal/apperror"
	"github.com/keyxmakerx/tagboard/internal/middleware"
)

// Handler serves the tag endpoints. Handlers are thin: bind the request,
// call the service, write JSON.
type Handler struct {
	service TagService
}

// NewHandler creates a tag handler backed by the given service.
func NewHandler(service TagService) *Handler {
	return &Handler{service: service}
}

// ListTags handles GET /tags?search=&visibility=&status=&sort=.
func (h *Handler) ListTags(c echo.Context) error {
	var filter ListFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &filter); err != nil {
		return apperror.NewBadRequest("invalid query parameters")
	}

	tags, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

// GetTag handles GET /tags/:id.
func (h *Handler) GetTag(c echo.Context) error {
	tag, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tag)
}

// CreateTag handles POST /tags.
func (h *Handler) CreateTag(c echo.Context) error {
	var input TagInput
	if err := json.NewDecoder(c.Request().Body).Decode(&input); err != nil {
		return apperror.NewBadRequest("invalid JSON body")
	}

	tag, err := h.service.Create(c.Request().Context(), input, middleware.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tag)
}

// UpdateTag handles PUT /tags/:id.
func (h *Handler) UpdateTag(c echo.Context) error {
	var input TagInput
	if err := json.NewDecoder(c.Request().Body).Decode(&input); err != nil {
		return apperror.NewBadRequest("invalid JSON body")
	}

	tag, err := h.service.Update(c.Request().Context(), c.Param("id"), input, middleware.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tag)
}

// DeleteTag handles DELETE /tags/:id.
func (h *Handler) DeleteTag(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DuplicateTag handles POST /tags/:id/duplicate.
func (h *Handler) DuplicateTag(c echo.Context) error {
	tag, err := h.service.Duplicate(c.Request().Context(), c.Param("id"), middleware.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tag)
}

// ArchiveTag handles POST /tags/:id/archive.
func (h *Handler) ArchiveTag(c echo.Context) error {
	tag, err := h.service.Archive(c.Request().Context(), c.Param("id"), middleware.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tag)
}

// RestoreTag handles POST /tags/:id/restore.
func (h *Handler) RestoreTag(c echo.Context) error {
	tag, err := h.service.Restore(c.Request().Context(), c.Param("id"), middleware.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tag)
}
