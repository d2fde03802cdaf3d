package collections

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/keyxmakerx/tagboard/internal/apperror"
	"github.com/keyxmakerx/tagboard/internal/membership"
)

// readIDColumn returns the trimmed, non-empty first-column values of a CSV
// or XLSX file, header row included.
func readIDColumn(filename string, r io.Reader) ([]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return readCSVColumn(r)
	case ".xlsx":
		return readXLSXColumn(r)
	case ".xls":
		return nil, apperror.NewBadRequest("legacy .xls files are not supported, save the sheet as .xlsx or .csv")
	default:
		return nil, apperror.NewBadRequest("file must be .csv or .xlsx")
	}
}

func readCSVColumn(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var values []string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperror.NewBadRequest(fmt.Sprintf("invalid CSV: %v", err))
		}
		if len(record) == 0 {
			continue
		}
		if v := strings.TrimSpace(record[0]); v != "" {
			values = append(values, v)
		}
	}
	return values, nil
}

// sniffDelimiter picks ';' for spreadsheet exports from Russian locales,
// which use it in place of ','.
func sniffDelimiter(data []byte) rune {
	line, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

func readXLSXColumn(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperror.NewBadRequest("file is not a valid .xlsx workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperror.NewBadRequest("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading workbook rows: %w", err)
	}

	var values []string
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if v := strings.TrimSpace(row[0]); v != "" {
			values = append(values, v)
		}
	}
	return values, nil
}

// matchIDs resolves raw values against the catalog by internal id or
// article. The first value is treated as a header and dropped when it
// matches nothing. Results are de-duplicated and keep file order.
func matchIDs(catalog []membership.Product, values []string) *ImportResult {
	index := make(map[string]string, len(catalog)*2)
	for _, p := range catalog {
		if p.ProductID != "" {
			index[p.ProductID] = p.ID
		}
		index[p.ID] = p.ID
	}

	if len(values) > 0 {
		if _, ok := index[values[0]]; !ok {
			values = values[1:]
		}
	}

	result := &ImportResult{Matched: []string{}, Unknown: []string{}}
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		id, ok := index[v]
		key := id
		if !ok {
			key = "?" + v
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		if ok {
			result.Matched = append(result.Matched, id)
		} else {
			result.Unknown = append(result.Unknown, v)
		}
	}
	return result
}
