package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/platenest/internal/model"
)

func TestSaveAndLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	c := model.StockCatalog{Stocks: []model.StockSize{
		model.NewStockSize("Ten", 3000, 1500, 10),
		model.NewStockSize("Any", 2000, 1000, 0),
	}}

	if err := SaveCatalog(path, c); err != nil {
		t.Fatalf("SaveCatalog failed: %v", err)
	}
	loaded, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}

	if len(loaded.Stocks) != 2 {
		t.Fatalf("expected 2 stocks, got %d", len(loaded.Stocks))
	}
	if loaded.Stocks[0] != c.Stocks[0] {
		t.Errorf("stock mismatch: got %+v, want %+v", loaded.Stocks[0], c.Stocks[0])
	}
}

func TestLoadCatalogCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.json")

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if len(c.Stocks) != len(model.DefaultStockCatalog().Stocks) {
		t.Errorf("expected default catalog, got %d stocks", len(c.Stocks))
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default catalog should be saved: %v", err)
	}
}

func TestLoadCatalogInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCatalog(bad); err == nil {
		t.Error("expected error for invalid JSON")
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte(`{"stocks":[]}`), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadCatalog(empty)
	if !model.IsConfigError(err) {
		t.Errorf("expected a config error for an empty catalog, got %v", err)
	}
}

func TestImportCatalogMergesByID(t *testing.T) {
	dir := t.TempDir()
	existing := model.StockCatalog{Stocks: []model.StockSize{
		{ID: "a", Label: "A", Width: 1000, Height: 500},
	}}
	other := model.StockCatalog{Stocks: []model.StockSize{
		{ID: "a", Label: "A duplicate", Width: 1, Height: 1},
		{ID: "b", Label: "B", Width: 2000, Height: 1000, Thickness: 12},
	}}
	path := filepath.Join(dir, "other.json")
	if err := SaveCatalog(path, other); err != nil {
		t.Fatal(err)
	}

	merged, err := ImportCatalog(path, existing)
	if err != nil {
		t.Fatalf("ImportCatalog failed: %v", err)
	}

	if len(merged.Stocks) != 2 {
		t.Fatalf("expected 2 stocks, got %d", len(merged.Stocks))
	}
	if merged.Stocks[0].Label != "A" || merged.Stocks[1].ID != "b" {
		t.Errorf("unexpected merge result %+v", merged.Stocks)
	}
	if len(existing.Stocks) != 1 {
		t.Error("existing catalog must not be modified")
	}
}

func TestImportCatalogMissingFile(t *testing.T) {
	existing := model.DefaultStockCatalog()

	got, err := ImportCatalog(filepath.Join(t.TempDir(), "missing.json"), existing)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if len(got.Stocks) != len(existing.Stocks) {
		t.Error("existing catalog should be returned on error")
	}
}

func TestMergeCatalogSkipsDuplicateIDs(t *testing.T) {
	c := model.StockCatalog{}
	stocks := []model.StockSize{
		{ID: "x", Label: "X", Width: 100, Height: 100},
		{ID: "x", Label: "X again", Width: 100, Height: 100},
	}

	merged := MergeCatalog(c, stocks)
	if len(merged.Stocks) != 1 {
		t.Fatalf("expected 1 stock, got %d", len(merged.Stocks))
	}
	if merged.Stocks[0].Label != "X" {
		t.Errorf("expected the first entry to win, got %s", merged.Stocks[0].Label)
	}
}

func TestRemoveStock(t *testing.T) {
	c := model.StockCatalog{Stocks: []model.StockSize{
		{ID: "a", Label: "A", Width: 100, Height: 100},
		{ID: "b", Label: "B", Width: 200, Height: 100},
	}}

	out, err := RemoveStock(c, "A")
	if err != nil {
		t.Fatalf("RemoveStock failed: %v", err)
	}
	if len(out.Stocks) != 1 || out.Stocks[0].ID != "b" {
		t.Errorf("unexpected catalog after removal: %+v", out.Stocks)
	}
	if len(c.Stocks) != 2 {
		t.Error("input catalog must not be modified")
	}

	if _, err := RemoveStock(c, "missing"); err == nil {
		t.Error("expected error for unknown label")
	}
}
