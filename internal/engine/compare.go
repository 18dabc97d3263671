package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/platenest/internal/model"
)

// ComparisonScenario is a named set of settings to nest with.
type ComparisonScenario struct {
	Name     string
	Settings model.Settings
}

// ComparisonResult holds one scenario's nesting result and its headline
// figures. Err is set when the scenario's settings were rejected.
type ComparisonResult struct {
	Scenario      ComparisonScenario
	Result        model.NestingResult
	SheetsUsed    int
	PlacedCount   int
	UnplacedCount int
	Utilization   float64 // fraction
	WastePercent  float64
	Err           error
}

func newComparisonResult(s ComparisonScenario, r model.NestingResult) ComparisonResult {
	st := r.Stats
	return ComparisonResult{
		Scenario:      s,
		Result:        r,
		SheetsUsed:    st.TotalSheets,
		PlacedCount:   st.PlacedPlates,
		UnplacedCount: st.UnplacedPlates,
		Utilization:   st.OverallUtilization,
		WastePercent:  100 * (1 - st.OverallUtilization),
	}
}

// CompareScenarios nests the same plates once per scenario. Scenarios run
// two at a time since each nest already fans out over thickness groups.
// Results come back in scenario order.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, plates []*model.PlateGeometry, catalog model.StockCatalog, logger zerolog.Logger) []ComparisonResult {
	results := make([]ComparisonResult, len(scenarios))

	g := new(errgroup.Group)
	g.SetLimit(2)
	for i, sc := range scenarios {
		g.Go(func() error {
			n := NewNester(sc.Settings, logger.With().Str("scenario", sc.Name).Logger())
			r, err := n.Nest(ctx, plates, catalog)
			if err != nil {
				results[i] = ComparisonResult{Scenario: sc, Err: err}
				return nil
			}
			results[i] = newComparisonResult(sc, r)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// BuildDefaultScenarios returns the base settings followed by what-if
// variants: the other overlap mode, half the spacing when it exceeds 1 mm,
// and no edge margin when one is set.
func BuildDefaultScenarios(base model.Settings) []ComparisonScenario {
	out := []ComparisonScenario{{Name: "Current Settings", Settings: base}}
	add := func(name string, edit func(*model.Settings)) {
		s := base
		edit(&s)
		out = append(out, ComparisonScenario{Name: name, Settings: s})
	}

	if base.Mode == model.ModeExact {
		add("Bounding Box", func(s *model.Settings) { s.Mode = model.ModeBoundingBox })
	} else {
		add("Exact Outline", func(s *model.Settings) { s.Mode = model.ModeExact })
	}
	if half := base.Spacing / 2; base.Spacing > 1 {
		add(fmt.Sprintf("Spacing %.1fmm (half)", half), func(s *model.Settings) { s.Spacing = half })
	}
	if base.EdgeMargin > 0 {
		add("No Edge Margin", func(s *model.Settings) { s.EdgeMargin = 0 })
	}
	return out
}
