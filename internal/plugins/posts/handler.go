package posts

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/tagboard/internal/apperror"
)

// Handler serves the feed endpoints.
type Handler struct {
	service PostService
}

// NewHandler creates a post handler backed by the given service.
func NewHandler(service PostService) *Handler {
	return &Handler{service: service}
}

// List handles GET /posts.
func (h *Handler) List(c echo.Context) error {
	posts, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

// Get handles GET /posts/:id.
func (h *Handler) Get(c echo.Context) error {
	p, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Create handles POST /posts.
func (h *Handler) Create(c echo.Context) error {
	var input PostInput
	if err := json.NewDecoder(c.Request().Body).Decode(&input); err != nil {
		return apperror.NewBadRequest("invalid JSON body")
	}
	p, err := h.service.Create(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// Update handles PUT /posts/:id.
func (h *Handler) Update(c echo.Context) error {
	var input PostInput
	if err := json.NewDecoder(c.Request().Body).Decode(&input); err != nil {
		return apperror.NewBadRequest("invalid JSON body")
	}
	p, err := h.service.Update(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /posts/:id.
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AddComment handles POST /posts/:id/comments.
func (h *Handler) AddComment(c echo.Context) error {
	var input CommentInput
	if err := json.NewDecoder(c.Request().Body).Decode(&input); err != nil {
		return apperror.NewBadRequest("invalid JSON body")
	}
	p, err := h.service.AddComment(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// DeleteComment handles DELETE /posts/:id/comments/:commentId.
func (h *Handler) DeleteComment(c echo.Context) error {
	p, err := h.service.DeleteComment(c.Request().Context(), c.Param("id"), c.Param("commentId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// ToggleReaction handles POST /posts/:id/reactions/:label.
func (h *Handler) ToggleReaction(c echo.Context) error {
	p, err := h.service.ToggleReaction(c.Request().Context(), c.Param("id"), c.Param("label"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Publish handles POST /posts/:id/publish.
func (h *Handler) Publish(c echo.Context) error {
	p, err := h.service.Publish(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Unpublish handles POST /posts/:id/unpublish.
func (h *Handler) Unpublish(c echo.Context) error {
	p, err := h.service.Unpublish(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}
