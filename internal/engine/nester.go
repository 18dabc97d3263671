package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/platenest/internal/model"
)

// Nester lays plates out on stock sheets, one independent packing run per
// thickness group.
type Nester struct {
	Settings model.Settings
	Logger   zerolog.Logger
}

func NewNester(settings model.Settings, logger zerolog.Logger) *Nester {
	return &Nester{Settings: settings, Logger: logger}
}

// Nest validates the request and packs every thickness group. Groups run in
// parallel, bounded by Settings.Concurrency. Each group is packed once per
// stock option and the best option wins. Only caller-contract violations
// return an error; plates that cannot be placed are reported in
// NestingResult.Unplaced. When ctx ends early the sheets finished so far are
// returned with Incomplete set.
func (n *Nester) Nest(ctx context.Context, plates []*model.PlateGeometry, catalog model.StockCatalog) (model.NestingResult, error) {
	if err := n.Settings.Validate(); err != nil {
		return model.NestingResult{}, err
	}
	if err := catalog.Validate(); err != nil {
		return model.NestingResult{}, err
	}
	total := 0
	for _, pg := range plates {
		if pg == nil {
			continue
		}
		total++
		if pg.Thickness < 0 || math.IsNaN(pg.Thickness) || math.IsInf(pg.Thickness, 0) {
			return model.NestingResult{}, &model.ConfigError{
				Field:  "thickness",
				Reason: fmt.Sprintf("plate %s has invalid thickness %g", pg.SourceID, pg.Thickness),
			}
		}
	}

	groups := PartitionByThickness(plates)
	results := make([]PackResult, len(groups))

	g := new(errgroup.Group)
	g.SetLimit(n.Settings.Concurrency)
	for i, grp := range groups {
		g.Go(func() error {
			results[i] = n.packGroup(ctx, grp, catalog.ForThickness(grp.Thickness))
			return nil
		})
	}
	_ = g.Wait()

	result := model.NestingResult{Groups: make(map[float64][]model.NestingSheet)}
	for i, grp := range groups {
		r := results[i]
		if len(r.Sheets) > 0 {
			result.Groups[grp.Thickness] = r.Sheets
		}
		result.Unplaced = append(result.Unplaced, r.Unplaced...)
		if r.Status == PackCancelled {
			result.Incomplete = true
		}
	}
	result.Stats = model.ComputeStats(result, total, n.Settings.SteelDensity)

	n.Logger.Info().
		Int("plates", total).
		Int("groups", len(groups)).
		Int("sheets", result.Stats.TotalSheets).
		Int("unplaced", result.Stats.UnplacedPlates).
		Float64("utilization", result.Stats.OverallUtilization).
		Bool("incomplete", result.Incomplete).
		Msg("nesting finished")
	return result, nil
}

// packGroup packs one thickness group against every stock option and keeps
// the best outcome.
func (n *Nester) packGroup(ctx context.Context, grp ThicknessGroup, stocks []model.StockSize) PackResult {
	if len(stocks) == 0 {
		var r PackResult
		for _, pg := range grp.Plates {
			r.Unplaced = append(r.Unplaced, model.UnplacedPlate{
				Plate:  pg,
				Reason: fmt.Errorf("no stock for thickness %g mm: %w", grp.Thickness, model.ErrUnplaceablePlate),
			})
		}
		n.Logger.Warn().Float64("thickness", grp.Thickness).Int("plates", len(grp.Plates)).Msg("no stock for thickness")
		return r
	}

	packer := NewPacker(n.Settings)
	var best PackResult
	for i, option := range stockOptions(stocks) {
		r := packer.Pack(ctx, grp.Thickness, grp.Plates, option)
		if i == 0 || better(r, best) {
			best = r
		}
		if r.Status == PackCancelled {
			break
		}
	}

	n.Logger.Debug().
		Float64("thickness", grp.Thickness).
		Int("plates", len(grp.Plates)).
		Int("sheets", len(best.Sheets)).
		Int("lower_bound", lowerBound(grp, stocks)).
		Int("unplaced", len(best.Unplaced)).
		Float64("utilization", best.Utilization()).
		Msg("thickness group packed")
	return best
}

// lowerBound is the sheet count the group needs at best: total plate area
// over the largest stock area.
func lowerBound(grp ThicknessGroup, stocks []model.StockSize) int {
	var plateArea, sheetArea float64
	for _, pg := range grp.Plates {
		plateArea += pg.Area
	}
	for _, s := range stocks {
		sheetArea = math.Max(sheetArea, s.Area())
	}
	return model.EstimateSheets(plateArea, sheetArea)
}

// stockOptions lists each stock size on its own, then the full catalog when
// it holds more than one size.
func stockOptions(stocks []model.StockSize) [][]model.StockSize {
	options := make([][]model.StockSize, 0, len(stocks)+1)
	for _, s := range stocks {
		options = append(options, []model.StockSize{s})
	}
	if len(stocks) > 1 {
		options = append(options, stocks)
	}
	return options
}

// better orders options by fewest unplaced plates, then highest
// utilization, then fewest sheets. Ties keep the earlier option.
func better(a, b PackResult) bool {
	if len(a.Unplaced) != len(b.Unplaced) {
		return len(a.Unplaced) < len(b.Unplaced)
	}
	ua, ub := a.Utilization(), b.Utilization()
	if math.Abs(ua-ub) > 1e-9 {
		return ua > ub
	}
	return len(a.Sheets) < len(b.Sheets)
}
