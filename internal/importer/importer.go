// Package importer reads stock catalogs from CSV and Excel files and plate
// outlines from DXF drawings.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/platenest/internal/model"
)

// ImportResult holds the results of an import operation. Stocks is filled
// by the catalog importers, Plates by ImportDXF. Errors are per row or per
// entity; a result can carry both data and errors.
type ImportResult struct {
	Stocks   []model.StockSize
	Plates   []*model.PlateGeometry
	Errors   []string
	Warnings []string
}

// Catalog returns the imported stock sizes as a catalog.
func (r ImportResult) Catalog() model.StockCatalog {
	return model.StockCatalog{Stocks: r.Stocks}
}

func (r *ImportResult) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// ColumnMapping holds the column index of each stock field, -1 when absent.
type ColumnMapping struct {
	Label     int
	Width     int
	Height    int
	Thickness int
}

// positional is the layout assumed for files without a header row.
var positional = ColumnMapping{Label: 0, Width: 1, Height: 2, Thickness: 3}

// columnAliases lists the accepted header spellings, lowercase.
var columnAliases = []struct {
	field   func(*ColumnMapping) *int
	aliases []string
}{
	{func(m *ColumnMapping) *int { return &m.Label }, []string{"label", "name", "stock", "format", "description", "desc", "item"}},
	{func(m *ColumnMapping) *int { return &m.Width }, []string{"width", "w", "x"}},
	{func(m *ColumnMapping) *int { return &m.Height }, []string{"height", "h", "length", "len", "y"}},
	{func(m *ColumnMapping) *int { return &m.Thickness }, []string{"thickness", "thick", "thk", "t", "gauge"}},
}

var delimiterNames = map[rune]string{',': "comma", ';': "semicolon", '\t': "tab", '|': "pipe"}

// DetectCSVDelimiter picks the delimiter that splits the first line into
// the most columns and keeps that count on the most following lines.
// Comma wins when nothing splits.
func DetectCSVDelimiter(data []byte) rune {
	var lines []string
	for _, l := range strings.Split(string(data), "\n") {
		if l = strings.TrimRight(l, "\r"); strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return ','
	}

	best, bestScore := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		sep := string(d)
		cols := strings.Count(lines[0], sep) + 1
		if cols < 2 {
			continue
		}
		consistent := 0
		for _, l := range lines {
			if strings.Count(l, sep)+1 == cols {
				consistent++
			}
		}
		if score := consistent*10 + cols; score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

// DetectColumns maps header cells to fields. The first cell matching a
// field's alias wins. When no cell matches, the positional mapping is
// returned with false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	m := ColumnMapping{Label: -1, Width: -1, Height: -1, Thickness: -1}
	found := false
	for i, cell := range row {
		name := strings.ToLower(strings.TrimSpace(cell))
		for _, c := range columnAliases {
			idx := c.field(&m)
			if *idx != -1 {
				continue
			}
			for _, a := range c.aliases {
				if name == a {
					*idx = i
					found = true
					break
				}
			}
		}
	}
	if !found {
		return positional, false
	}
	return m, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func number(row []string, idx int, field string, required bool) (float64, error) {
	s := cell(row, idx)
	if s == "" {
		if required {
			return 0, fmt.Errorf("missing %s value", field)
		}
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", field, s)
	}
	return v, nil
}

// stockFromRow reads one stock size. An empty thickness means any thickness
// and an empty label becomes "Stock n".
func stockFromRow(row []string, m ColumnMapping, n int) (model.StockSize, error) {
	w, err := number(row, m.Width, "width", true)
	if err != nil {
		return model.StockSize{}, err
	}
	h, err := number(row, m.Height, "height", true)
	if err != nil {
		return model.StockSize{}, err
	}
	t, err := number(row, m.Thickness, "thickness", false)
	if err != nil {
		return model.StockSize{}, err
	}
	switch {
	case w <= 0 || h <= 0:
		return model.StockSize{}, fmt.Errorf("width and height must be positive")
	case t < 0:
		return model.StockSize{}, fmt.Errorf("thickness must not be negative")
	}

	label := cell(row, m.Label)
	if label == "" {
		label = fmt.Sprintf("Stock %d", n)
	}
	return model.NewStockSize(label, w, h, t), nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}

// ImportStockCSV imports stock sizes from a CSV file with any of the
// supported delimiters.
func ImportStockCSV(path string) ImportResult {
	var result ImportResult
	data, err := os.ReadFile(path)
	if err != nil {
		result.errorf("Cannot open file: %v", err)
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.errorf("File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimiterNames[delimiter]))
	}
	rows, err := readCSV(bytes.NewReader(data), delimiter)
	if err != nil {
		result.errorf("Cannot read CSV: %v", err)
		return result
	}
	return stocksFromRows(result, rows, "Line")
}

// ImportStockFromReader imports stock sizes from CSV data with a known
// delimiter.
func ImportStockFromReader(reader io.Reader, delimiter rune) ImportResult {
	var result ImportResult
	rows, err := readCSV(reader, delimiter)
	if err != nil {
		result.errorf("Cannot read CSV: %v", err)
		return result
	}
	return stocksFromRows(result, rows, "Line")
}

// ImportStockExcel imports stock sizes from the first sheet of a workbook.
func ImportStockExcel(path string) ImportResult {
	var result ImportResult
	f, err := excelize.OpenFile(path)
	if err != nil {
		result.errorf("Cannot open Excel file: %v", err)
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.errorf("Excel file has no sheets")
		return result
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.errorf("Cannot read Excel data: %v", err)
		return result
	}
	return stocksFromRows(result, rows, "Row")
}

// ImportStock picks the Excel importer for .xlsx and .xlsm files and the
// CSV importer otherwise.
func ImportStock(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ImportStockExcel(path)
	}
	return ImportStockCSV(path)
}

// stocksFromRows maps the header, then converts every non-blank data row.
// Row numbers in messages are 1-based.
func stocksFromRows(result ImportResult, rows [][]string, unit string) ImportResult {
	if len(rows) == 0 {
		result.errorf("File is empty")
		return result
	}

	m, header := DetectColumns(rows[0])
	data := rows
	switch {
	case header:
		var missing []string
		if m.Width == -1 {
			missing = append(missing, "Width")
		}
		if m.Height == -1 {
			missing = append(missing, "Height")
		}
		if len(missing) > 0 {
			result.errorf("Required columns not found in header: %s", strings.Join(missing, ", "))
			return result
		}
		data = rows[1:]
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
	case len(rows[0]) >= 3:
		// Unknown header names still leave a non-numeric width cell.
		if _, err := strconv.ParseFloat(cell(rows[0], positional.Width), 64); err != nil {
			data = rows[1:]
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}
	offset := len(rows) - len(data)

	for i, row := range data {
		if blank(row) {
			continue
		}
		stock, err := stockFromRow(row, m, len(result.Stocks)+1)
		if err != nil {
			result.errorf("%s %d: %v", unit, offset+i+1, err)
			continue
		}
		result.Stocks = append(result.Stocks, stock)
	}

	if len(result.Stocks) == 0 && len(result.Errors) == 0 {
		result.errorf("No data rows found")
	}
	return result
}
