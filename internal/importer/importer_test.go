package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter_Comma(t *testing.T) {
	data := []byte("Label,Width,Height,Thickness\nA,3000,1500,10\nB,6000,2000,20\n")
	got := DetectCSVDelimiter(data)
	if got != ',' {
		t.Errorf("expected comma delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Semicolon(t *testing.T) {
	data := []byte("Label;Width;Height;Thickness\nA;3000;1500;10\nB;6000;2000;20\n")
	got := DetectCSVDelimiter(data)
	if got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Tab(t *testing.T) {
	data := []byte("Label\tWidth\tHeight\nA\t3000\t1500\n")
	got := DetectCSVDelimiter(data)
	if got != '\t' {
		t.Errorf("expected tab delimiter, got %q", got)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Label", "Width", "Height", "Thickness"})

	if !isHeader {
		t.Error("expected header to be detected")
	}
	if mapping.Label != 0 || mapping.Width != 1 || mapping.Height != 2 || mapping.Thickness != 3 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
}

func TestDetectColumns_AliasesAndOrder(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"THK", " length ", "Name", "w"})

	if !isHeader {
		t.Error("expected header to be detected")
	}
	if mapping.Thickness != 0 {
		t.Errorf("expected Thickness at 0, got %d", mapping.Thickness)
	}
	if mapping.Height != 1 {
		t.Errorf("expected Height at 1, got %d", mapping.Height)
	}
	if mapping.Label != 2 {
		t.Errorf("expected Label at 2, got %d", mapping.Label)
	}
	if mapping.Width != 3 {
		t.Errorf("expected Width at 3, got %d", mapping.Width)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"A", "3000", "1500", "10"})

	if isHeader {
		t.Error("expected no header")
	}
	if mapping.Width != 1 || mapping.Thickness != 3 {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportStockFromReader_WithHeaders(t *testing.T) {
	input := "Label,Width,Height,Thickness\nPlate 3000x1500,3000,1500,10\nAny,2000,1000,\n"

	result := ImportStockFromReader(strings.NewReader(input), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Stocks) != 2 {
		t.Fatalf("expected 2 stocks, got %d", len(result.Stocks))
	}
	s := result.Stocks[0]
	if s.Label != "Plate 3000x1500" || s.Width != 3000 || s.Height != 1500 || s.Thickness != 10 {
		t.Errorf("unexpected stock %+v", s)
	}
	if result.Stocks[1].Thickness != 0 {
		t.Errorf("expected empty thickness to mean any, got %g", result.Stocks[1].Thickness)
	}
	if err := result.Catalog().Validate(); err != nil {
		t.Errorf("imported catalog should validate: %v", err)
	}
}

func TestImportStockFromReader_WithoutHeaders(t *testing.T) {
	result := ImportStockFromReader(strings.NewReader("A,3000,1500,12\n"), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Stocks) != 1 || result.Stocks[0].Thickness != 12 {
		t.Fatalf("unexpected stocks %+v", result.Stocks)
	}
}

func TestImportStockFromReader_DefaultLabel(t *testing.T) {
	result := ImportStockFromReader(strings.NewReader("Width;Height\n3000;1500\n"), ';')

	if len(result.Stocks) != 1 {
		t.Fatalf("expected 1 stock, got %d (%v)", len(result.Stocks), result.Errors)
	}
	if result.Stocks[0].Label != "Stock 1" {
		t.Errorf("expected default label, got %q", result.Stocks[0].Label)
	}
}

func TestImportStockFromReader_InvalidRows(t *testing.T) {
	input := "Label,Width,Height,Thickness\nbad,abc,100,10\nneg,-5,100,10\nthk,100,100,-1\nok,100,100,5\n"

	result := ImportStockFromReader(strings.NewReader(input), ',')

	if len(result.Errors) != 3 {
		t.Errorf("expected 3 errors, got %v", result.Errors)
	}
	if len(result.Stocks) != 1 || result.Stocks[0].Label != "ok" {
		t.Errorf("expected only the valid row, got %+v", result.Stocks)
	}
}

func TestImportStockFromReader_MissingRequiredColumn(t *testing.T) {
	result := ImportStockFromReader(strings.NewReader("Label,Width,Thickness\nA,100,10\n"), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Height") {
		t.Errorf("expected missing Height error, got %v", result.Errors)
	}
}

func TestImportStockFromReader_Empty(t *testing.T) {
	result := ImportStockFromReader(strings.NewReader(""), ',')

	if len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}
}

func TestImportStockCSV_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.csv")
	if err := os.WriteFile(path, []byte("Label;Width;Height\nA;2500;1250\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result := ImportStock(path)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Stocks) != 1 {
		t.Fatalf("expected 1 stock, got %d", len(result.Stocks))
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "semicolon") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a semicolon warning, got %v", result.Warnings)
	}
}

func TestImportStockCSV_FileNotFound(t *testing.T) {
	result := ImportStockCSV(filepath.Join(t.TempDir(), "missing.csv"))

	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stock.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportStockExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Thickness", "Width", "Length", "Label"},
		{10, 3000, 1500, "Ten"},
		{20, 6000, 2000, "Twenty"},
	})

	result := ImportStock(path)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Stocks) != 2 {
		t.Fatalf("expected 2 stocks, got %d", len(result.Stocks))
	}
	s := result.Stocks[1]
	if s.Label != "Twenty" || s.Width != 6000 || s.Height != 2000 || s.Thickness != 20 {
		t.Errorf("unexpected stock %+v", s)
	}
}

func TestImportStockExcel_FileNotFound(t *testing.T) {
	result := ImportStockExcel(filepath.Join(t.TempDir(), "missing.xlsx"))

	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}
