package engine

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/platenest/internal/model"
)

func TestBuildDefaultScenarios(t *testing.T) {
	base := testSettings()
	base.EdgeMargin = 10

	scenarios := BuildDefaultScenarios(base)

	require.Len(t, scenarios, 4)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, model.ModeBoundingBox, scenarios[1].Settings.Mode)
	assert.Equal(t, 2.5, scenarios[2].Settings.Spacing)
	assert.Equal(t, "Spacing 2.5mm (half)", scenarios[2].Name)
	assert.Zero(t, scenarios[3].Settings.EdgeMargin)
}

func TestBuildDefaultScenarios_BoundingBoxBase(t *testing.T) {
	base := testSettings()
	base.Mode = model.ModeBoundingBox
	base.Spacing = 1

	scenarios := BuildDefaultScenarios(base)

	require.Len(t, scenarios, 2)
	assert.Equal(t, "Exact Outline", scenarios[1].Name)
	assert.Equal(t, model.ModeExact, scenarios[1].Settings.Mode)
}

func TestCompareScenarios(t *testing.T) {
	plates := []*model.PlateGeometry{
		rectPlate("A", 400, 400, 10),
		rectPlate("B", 400, 400, 10),
	}
	catalog := catalogOf(model.NewStockSize("1000", 1000, 1000, 0))
	bad := testSettings()
	bad.ScanStep = 0
	scenarios := append(BuildDefaultScenarios(testSettings()), ComparisonScenario{Name: "Broken", Settings: bad})

	results := CompareScenarios(context.Background(), scenarios, plates, catalog, zerolog.Nop())

	require.Len(t, results, len(scenarios))
	for _, r := range results[:len(results)-1] {
		require.NoError(t, r.Err, r.Scenario.Name)
		assert.Equal(t, 1, r.SheetsUsed)
		assert.Equal(t, 2, r.PlacedCount)
		assert.Zero(t, r.UnplacedCount)
		assert.InDelta(t, 0.32, r.Utilization, 1e-9)
		assert.InDelta(t, 68, r.WastePercent, 1e-9)
	}
	broken := results[len(results)-1]
	assert.Equal(t, "Broken", broken.Scenario.Name)
	assert.True(t, model.IsConfigError(broken.Err))
}
