package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/platenest/internal/model"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultSpacing = 8
	cfg.DefaultMode = model.ModeBoundingBox
	cfg.LogLevel = "debug"
	cfg.RecentInputs = []string{"/tmp/a.json", "/tmp/b.json"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if loaded.DefaultSpacing != 8 {
		t.Errorf("expected DefaultSpacing=8, got %f", loaded.DefaultSpacing)
	}
	if loaded.DefaultMode != model.ModeBoundingBox {
		t.Errorf("expected bbox mode, got %s", loaded.DefaultMode)
	}
	if loaded.LogLevel != "debug" {
		t.Errorf("expected LogLevel=debug, got %s", loaded.LogLevel)
	}
	if len(loaded.RecentInputs) != 2 {
		t.Errorf("expected 2 recent inputs, got %d", len(loaded.RecentInputs))
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}

	defaults := model.DefaultAppConfig()
	if cfg.DefaultSpacing != defaults.DefaultSpacing {
		t.Errorf("expected default spacing %f, got %f", defaults.DefaultSpacing, cfg.DefaultSpacing)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected log level info, got %s", cfg.LogLevel)
	}
}

func TestLoadAppConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"default_spacing":3,"recent_inputs":null}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.DefaultSpacing != 3 {
		t.Errorf("expected spacing 3, got %f", cfg.DefaultSpacing)
	}
	if cfg.DefaultHoleDiameter != model.DefaultSettings().DefaultHoleDiameter {
		t.Errorf("missing field should keep its default, got %f", cfg.DefaultHoleDiameter)
	}
	if cfg.RecentInputs == nil {
		t.Error("RecentInputs should not be nil after loading")
	}
}

func TestLoadAppConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("not valid json{{{"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadAppConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
	if !strings.Contains(err.Error(), "config.json") {
		t.Errorf("error should name the file, got %v", err)
	}
}

func TestSaveAppConfigCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "dir", "config.json")

	if err := SaveAppConfig(path, model.DefaultAppConfig()); err != nil {
		t.Fatalf("SaveAppConfig should create parent dirs: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}
}

func TestDefaultPaths(t *testing.T) {
	if !strings.HasSuffix(DefaultConfigPath(), filepath.Join(".platenest", "config.json")) {
		t.Errorf("unexpected config path %s", DefaultConfigPath())
	}
	if !strings.HasSuffix(DefaultCatalogPath(), filepath.Join(".platenest", "catalog.json")) {
		t.Errorf("unexpected catalog path %s", DefaultCatalogPath())
	}
}

func TestWriteJSONReplacesFileWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	for _, spacing := range []float64{4, 6} {
		cfg := model.DefaultAppConfig()
		cfg.DefaultSpacing = spacing
		if err := SaveAppConfig(path, cfg); err != nil {
			t.Fatalf("SaveAppConfig failed: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "config.json" {
		t.Errorf("expected only config.json, got %v", entries)
	}
	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.DefaultSpacing != 6 {
		t.Errorf("expected the last write to win, got %f", loaded.DefaultSpacing)
	}
}
