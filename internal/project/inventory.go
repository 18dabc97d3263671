package project

import (
	"fmt"
	"path/filepath"

	"github.com/piwi3910/platenest/internal/model"
)

// DefaultCatalogPath returns ~/.platenest/catalog.json.
func DefaultCatalogPath() string {
	return filepath.Join(DefaultConfigDir(), "catalog.json")
}

// SaveCatalog writes c to path.
func SaveCatalog(path string, c model.StockCatalog) error {
	return writeJSON(path, c)
}

// LoadCatalog reads the catalog at path. A missing file is replaced by the
// default catalog, which is saved there. A catalog that fails validation is
// returned together with its ConfigError.
func LoadCatalog(path string) (model.StockCatalog, error) {
	var c model.StockCatalog
	if err := readJSON(path, &c); err != nil {
		if notExist(err) {
			c = model.DefaultStockCatalog()
			return c, SaveCatalog(path, c)
		}
		return model.StockCatalog{}, err
	}
	return c, c.Validate()
}

// LoadOrCreateCatalog is LoadCatalog on DefaultCatalogPath.
func LoadOrCreateCatalog() (model.StockCatalog, string, error) {
	path := DefaultCatalogPath()
	c, err := LoadCatalog(path)
	return c, path, err
}

// ImportCatalog merges the catalog stored at path into existing. Entries
// whose ID is already present are skipped.
func ImportCatalog(path string, existing model.StockCatalog) (model.StockCatalog, error) {
	var imported model.StockCatalog
	if err := readJSON(path, &imported); err != nil {
		return existing, err
	}
	return MergeCatalog(existing, imported.Stocks), nil
}

// MergeCatalog appends stocks to c, skipping IDs that are already present.
func MergeCatalog(c model.StockCatalog, stocks []model.StockSize) model.StockCatalog {
	out := model.StockCatalog{Stocks: append([]model.StockSize(nil), c.Stocks...)}
	for _, s := range stocks {
		if out.FindByID(s.ID) == nil {
			out.Stocks = append(out.Stocks, s)
		}
	}
	return out
}

// RemoveStock deletes the first stock with the given label.
func RemoveStock(c model.StockCatalog, label string) (model.StockCatalog, error) {
	target := c.FindByLabel(label)
	if target == nil {
		return c, fmt.Errorf("no stock labelled %q", label)
	}
	id := target.ID
	out := model.StockCatalog{Stocks: make([]model.StockSize, 0, len(c.Stocks))}
	for _, s := range c.Stocks {
		if s.ID != id {
			out.Stocks = append(out.Stocks, s)
		}
	}
	return out, nil
}
