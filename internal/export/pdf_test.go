package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/platenest/internal/model"
)

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.pdf")

	err := ExportPDF(path, buildTestResult(), model.DefaultSettings())
	if err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() < 1000 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	if err := ExportPDF(path, model.NestingResult{}, model.DefaultSettings()); err == nil {
		t.Fatal("expected error for empty result, got nil")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be written for an empty result")
	}
}

func TestExportPDF_EdgeMarginAndIncomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "margin.pdf")
	settings := model.DefaultSettings()
	settings.EdgeMargin = 20
	result := buildTestResult()
	result.Incomplete = true

	if err := ExportPDF(path, result, settings); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
}

func TestExportPDF_ManyPlates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many.pdf")
	sheet := model.NestingSheet{ID: "T8-1", Stock: model.NewStockSize("Plate 3000x1500", 3000, 1500, 0), Thickness: 8}
	for i := 0; i < 40; i++ {
		x := float64(i%10) * 290
		y := float64(i/10) * 350
		sheet.Add(model.Placement{Plate: testPlate("M", 280, 340, 8, 1), X: x, Y: y})
	}
	result := model.NestingResult{Groups: map[float64][]model.NestingSheet{8: {sheet}}}
	result.Stats = model.ComputeStats(result, 40, 0)

	if err := ExportPDF(path, result, model.DefaultSettings()); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
}

func TestSheetTransform_FlipsY(t *testing.T) {
	tr := sheetTransform{scale: 0.1, offsetX: 15, offsetY: 32, canvasH: 100}

	x, y := tr.point(0, 0)
	if x != 15 || y != 132 {
		t.Errorf("origin should map to the bottom-left, got (%g, %g)", x, y)
	}
	x, y = tr.point(100, 1000)
	if x != 25 || y != 32 {
		t.Errorf("top edge should map to offsetY, got (%g, %g)", x, y)
	}
}

func TestUnplacedText(t *testing.T) {
	result := buildTestResult()

	got := unplacedText(result.Unplaced[0])
	want := "Plate BIG: 7000 x 100 x 10 mm (exceeds every stock size: unplaceable)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		w, h float64
		want float64
	}{
		{100, 50, 8},
		{30, 25, 7},
		{18, 10, 6},
	}
	for _, tt := range tests {
		if got := labelFontSize(tt.w, tt.h); got != tt.want {
			t.Errorf("labelFontSize(%g, %g) = %g, want %g", tt.w, tt.h, got, tt.want)
		}
	}
}
