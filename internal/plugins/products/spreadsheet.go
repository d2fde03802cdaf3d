package products

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/keyxmakerx/tagboard/internal/membership"
)

// catalogSheet is the sheet name used for exported catalogs.
const catalogSheet = "Products"

// catalogHeader is the column layout of exported catalogs. ReadCatalogXLSX
// expects the same order.
var catalogHeader = []string{
	"ID", "Article", "Name", "Seller", "Category", "Price", "Rating", "Type", "Parent SPU", "Tags",
}

var catalogColumnWidths = []float64{10, 18, 48, 20, 20, 12, 8, 6, 12, 60}

// WriteCatalogXLSX writes products as a single-sheet workbook with a
// frozen, styled header row. Tags are written as "id:source:name" joined
// by "; ".
func WriteCatalogXLSX(w io.Writer, products []Product) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(catalogSheet); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(catalogSheet)
	if err != nil {
		return fmt.Errorf("locating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	header := make([]any, len(catalogHeader))
	for i, h := range catalogHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(catalogSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(catalogHeader), 1)
	if err := f.SetCellStyle(catalogSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	for i, width := range catalogColumnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(catalogSheet, col, col, width); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}

	for i, p := range products {
		price, _ := p.Price.Float64()
		row := []any{
			p.ID, p.ProductID, p.Name, p.Seller, p.Category,
			price, p.Rating, string(p.Type), p.ParentSPUID, formatTags(p.Tags),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(catalogSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(catalogSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// ReadCatalogXLSX reads a workbook in the WriteCatalogXLSX layout from its
// first sheet. Used by tagboardctl to evaluate rules offline.
func ReadCatalogXLSX(r io.Reader) ([]Product, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	if len(rows) == 0 {
		return []Product{}, nil
	}

	products := make([]Product, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		cell := func(col int) string {
			if col < len(row) {
				return strings.TrimSpace(row[col])
			}
			return ""
		}
		if cell(0) == "" {
			continue
		}

		price, err := decimal.NewFromString(cell(5))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid price %q", line, cell(5))
		}
		var rating float64
		if raw := cell(6); raw != "" {
			if rating, err = strconv.ParseFloat(raw, 64); err != nil {
				return nil, fmt.Errorf("row %d: invalid rating %q", line, raw)
			}
		}
		typ := membership.ProductType(strings.ToUpper(cell(7)))
		if typ != membership.TypeSPU && typ != membership.TypeSKU {
			return nil, fmt.Errorf("row %d: type must be SPU or SKU, got %q", line, cell(7))
		}
		tags, err := parseTags(cell(9))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		products = append(products, Product{
			ID:          cell(0),
			ProductID:   cell(1),
			Name:        cell(2),
			Seller:      cell(3),
			Category:    cell(4),
			Price:       price,
			Rating:      rating,
			Type:        typ,
			ParentSPUID: cell(8),
			Tags:        tags,
		})
	}
	return products, nil
}

func formatTags(tags []membership.ProductTag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = t.TagID + ":" + string(t.Source) + ":" + t.TagName
	}
	return strings.Join(parts, "; ")
}

func parseTags(raw string) ([]membership.ProductTag, error) {
	tags := []membership.ProductTag{}
	if raw == "" {
		return tags, nil
	}
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.SplitN(part, ":", 3)
		if len(fields) != 3 || fields[0] == "" {
			return nil, fmt.Errorf("tag %q must look like id:source:name", part)
		}
		tags = append(tags, membership.ProductTag{
			TagID:   fields[0],
			Source:  membership.TagSource(fields[1]),
			TagName: fields[2],
		})
	}
	return tags, nil
}
