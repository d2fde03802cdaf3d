package products

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/tagboard/internal/apperror"
)

// xlsxMIME is the content type of .xlsx workbooks.
const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler serves the catalog endpoints.
type Handler struct {
	service ProductService
}

// NewHandler creates a product handler backed by the given service.
func NewHandler(service ProductService) *Handler {
	return &Handler{service: service}
}

func bindFilter(c echo.Context) (ListFilter, error) {
	var filter ListFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &filter); err != nil {
		return filter, apperror.NewBadRequest("invalid query parameters")
	}
	return filter, nil
}

// ListProducts handles GET /products.
func (h *Handler) ListProducts(c echo.Context) error {
	filter, err := bindFilter(c)
	if err != nil {
		return err
	}
	products, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct handles GET /products/:id.
func (h *Handler) GetProduct(c echo.Context) error {
	p, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// AddTag handles POST /products/:id/tags/:tagId.
func (h *Handler) AddTag(c echo.Context) error {
	change, err := h.service.AddTag(c.Request().Context(), c.Param("id"), c.Param("tagId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, change)
}

// RemoveTag handles DELETE /products/:id/tags/:tagId.
func (h *Handler) RemoveTag(c echo.Context) error {
	change, err := h.service.RemoveTag(c.Request().Context(), c.Param("id"), c.Param("tagId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, change)
}

// BulkTags handles POST /products/bulk/tags.
func (h *Handler) BulkTags(c echo.Context) error {
	var req BulkTagRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return apperror.NewBadRequest("invalid JSON body")
	}
	change, err := h.service.Bulk(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, change)
}

// Facets handles GET /products/facets.
func (h *Handler) Facets(c echo.Context) error {
	facets, err := h.service.Facets(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, facets)
}

// ExportXLSX handles GET /products/export.xlsx with the list filters.
// The workbook is built in memory so a failure still yields a JSON error.
func (h *Handler) ExportXLSX(c echo.Context) error {
	filter, err := bindFilter(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := h.service.ExportXLSX(c.Request().Context(), filter, &buf); err != nil {
		return err
	}

	name := fmt.Sprintf("products-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}
