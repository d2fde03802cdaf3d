package collections

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/tagboard/internal/apperror"
	"github.com/keyxmakerx/tagboard/internal/membership"
	"github.com/keyxmakerx/tagboard/internal/middleware"
)

// Handler serves the collection endpoints.
type Handler struct {
	service       CollectionService
	maxUploadSize int64
}

// NewHandler creates a collection handler. maxUploadSize caps import files.
func NewHandler(service CollectionService, maxUploadSize int64) *Handler {
	return &Handler{service: service, maxUploadSize: maxUploadSize}
}

// List handles GET /collections.
func (h *Handler) List(c echo.Context) error {
	var filter ListFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &filter); err != nil {
		return apperror.NewBadRequest("invalid query parameters")
	}
	collections, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, collections)
}

// Get handles GET /collections/:id.
func (h *Handler) Get(c echo.Context) error {
	col, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, col)
}

// Create handles POST /collections.
func (h *Handler) Create(c echo.Context) error {
	var input CollectionInput
	if err := json.NewDecoder(c.Request().Body).Decode(&input); err != nil {
		return apperror.NewBadRequest("invalid JSON body")
	}
	col, err := h.service.Create(c.Request().Context(), input, middleware.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, col)
}

// Update handles PUT /collections/:id.
func (h *Handler) Update(c echo.Context) error {
	var input CollectionInput
	if err := json.NewDecoder(c.Request().Body).Decode(&input); err != nil {
		return apperror.NewBadRequest("invalid JSON body")
	}
	col, err := h.service.Update(c.Request().Context(), c.Param("id"), input, middleware.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, col)
}

// Delete handles DELETE /collections/:id.
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Preview handles POST /collections/preview with a TagConditions body.
func (h *Handler) Preview(c echo.Context) error {
	var conditions membership.TagConditions
	if err := json.NewDecoder(c.Request().Body).Decode(&conditions); err != nil {
		return apperror.NewBadRequest("invalid JSON body")
	}
	result, err := h.service.Preview(c.Request().Context(), conditions)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Import handles POST /collections/import with a multipart "file" field.
func (h *Handler) Import(c echo.Context) error {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, h.maxUploadSize+1<<20)

	file, err := c.FormFile("file")
	if err != nil {
		return apperror.NewBadRequest("no file provided")
	}
	if file.Size > h.maxUploadSize {
		return apperror.NewBadRequest(fmt.Sprintf("file is larger than %d bytes", h.maxUploadSize))
	}

	src, err := file.Open()
	if err != nil {
		return apperror.NewInternal(err)
	}
	defer src.Close()

	result, err := h.service.ImportProductIDs(req.Context(), file.Filename, src)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

type moveRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Move handles POST /collections/:id/reorder.
func (h *Handler) Move(c echo.Context) error {
	var req moveRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return apperror.NewBadRequest("invalid JSON body")
	}
	col, err := h.service.MoveProduct(c.Request().Context(), c.Param("id"), req.From, req.To, middleware.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, col)
}
