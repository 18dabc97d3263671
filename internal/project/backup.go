package project

import (
	"errors"
	"fmt"
	"time"

	"github.com/piwi3910/platenest/internal/model"
)

const backupVersion = "1.0.0"

var errNoVersion = errors.New("backup has no version")

// BackupData bundles the config and the stock catalog in one file.
type BackupData struct {
	Version   string             `json:"version"`
	CreatedAt string             `json:"created_at"`
	Config    model.AppConfig    `json:"config"`
	Catalog   model.StockCatalog `json:"catalog"`
}

// ExportAllData writes config and catalog to path as a backup.
func ExportAllData(path string, config model.AppConfig, catalog model.StockCatalog) error {
	b := BackupData{
		Version:   backupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Catalog:   catalog,
	}
	if err := writeJSON(path, b); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// ImportAllData reads a backup written by ExportAllData. Applying it is up
// to the caller.
func ImportAllData(path string) (BackupData, error) {
	var b BackupData
	if err := readJSON(path, &b); err != nil {
		return BackupData{}, fmt.Errorf("read backup: %w", err)
	}
	if b.Version == "" {
		return BackupData{}, fmt.Errorf("%s: %w", path, errNoVersion)
	}
	if b.Config.RecentInputs == nil {
		b.Config.RecentInputs = []string{}
	}
	return b, nil
}
