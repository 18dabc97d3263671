package model

import (
	"fmt"
	"sort"
)

// StockCatalog holds the stock sheet sizes available for nesting.
type StockCatalog struct {
	Stocks []StockSize `json:"stocks"`
}

// DefaultStockCatalog returns the common hot-rolled plate formats, stocked
// for every thickness.
func DefaultStockCatalog() StockCatalog {
	return StockCatalog{
		Stocks: []StockSize{
			NewStockSize("Plate 3000x1500", 3000, 1500, 0),
			NewStockSize("Plate 6000x2000", 6000, 2000, 0),
			NewStockSize("Plate 2500x1250", 2500, 1250, 0),
			NewStockSize("Plate 2000x1000", 2000, 1000, 0),
		},
	}
}

// Validate checks the catalog against the caller contract.
func (c StockCatalog) Validate() error {
	if len(c.Stocks) == 0 {
		return &ConfigError{Field: "stocks", Reason: "catalog is empty"}
	}
	for i, s := range c.Stocks {
		if s.Width <= 0 || s.Height <= 0 {
			return &ConfigError{
				Field:  fmt.Sprintf("stocks[%d]", i),
				Reason: fmt.Sprintf("non-positive dimension %gx%g", s.Width, s.Height),
			}
		}
		if s.Thickness < 0 {
			return &ConfigError{
				Field:  fmt.Sprintf("stocks[%d]", i),
				Reason: fmt.Sprintf("negative thickness %g", s.Thickness),
			}
		}
	}
	return nil
}

// ForThickness returns the stock sizes usable for plates of thickness t:
// exact matches and universal (zero thickness) entries, in catalog order.
func (c StockCatalog) ForThickness(t float64) []StockSize {
	var out []StockSize
	for _, s := range c.Stocks {
		if s.Thickness == 0 || s.Thickness == t {
			out = append(out, s)
		}
	}
	return out
}

// Thicknesses returns the distinct non-zero thicknesses in the catalog, ascending.
func (c StockCatalog) Thicknesses() []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, s := range c.Stocks {
		if s.Thickness > 0 && !seen[s.Thickness] {
			seen[s.Thickness] = true
			out = append(out, s.Thickness)
		}
	}
	sort.Float64s(out)
	return out
}

// FindByID returns a pointer to the stock with the given ID, or nil.
func (c *StockCatalog) FindByID(id string) *StockSize {
	for i := range c.Stocks {
		if c.Stocks[i].ID == id {
			return &c.Stocks[i]
		}
	}
	return nil
}

// FindByLabel returns a pointer to the first stock with the given label, or nil.
func (c *StockCatalog) FindByLabel(label string) *StockSize {
	for i := range c.Stocks {
		if c.Stocks[i].Label == label {
			return &c.Stocks[i]
		}
	}
	return nil
}

// Labels returns the stock labels in catalog order.
func (c *StockCatalog) Labels() []string {
	labels := make([]string, len(c.Stocks))
	for i, s := range c.Stocks {
		labels[i] = s.Label
	}
	return labels
}
