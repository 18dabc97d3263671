package engine

import (
	"fmt"

	"github.com/piwi3910/platenest/internal/geometry"
	"github.com/piwi3910/platenest/internal/model"
)

// Conflict is a pair of placements closer than the spacing, or a placement
// outside the usable sheet area (Other is -1).
type Conflict struct {
	Thickness  float64
	SheetID    string
	Plate      string
	Other      string
	PlateIndex int
	OtherIndex int
	Reason     string
}

// CheckLayout re-examines a result and reports placements that break the
// spacing or edge-margin rules. A result from Nest with the same settings
// yields no conflicts; the check guards layouts loaded or edited elsewhere.
func CheckLayout(result model.NestingResult, settings model.Settings) []Conflict {
	var conflicts []Conflict
	m := settings.EdgeMargin

	for _, sg := range result.GroupList() {
		for _, sheet := range sg.Sheets {
			usable := model.BoundingBox{
				Min: model.Point2D{X: m, Y: m},
				Max: model.Point2D{X: sheet.Stock.Width - m, Y: sheet.Stock.Height - m},
			}
			for i, p := range sheet.Placements {
				b := p.Bounds()
				if b.Min.X < usable.Min.X-epsilon || b.Min.Y < usable.Min.Y-epsilon ||
					b.Max.X > usable.Max.X+epsilon || b.Max.Y > usable.Max.Y+epsilon {
					conflicts = append(conflicts, Conflict{
						Thickness:  sg.Thickness,
						SheetID:    sheet.ID,
						Plate:      p.Plate.SourceID,
						PlateIndex: i,
						OtherIndex: -1,
						Reason:     "outside usable sheet area",
					})
				}
				if p.Plate.Thickness != sg.Thickness {
					conflicts = append(conflicts, Conflict{
						Thickness:  sg.Thickness,
						SheetID:    sheet.ID,
						Plate:      p.Plate.SourceID,
						PlateIndex: i,
						OtherIndex: -1,
						Reason:     fmt.Sprintf("thickness %g on a %g mm sheet", p.Plate.Thickness, sg.Thickness),
					})
				}
			}
			conflicts = append(conflicts, checkPairs(sg.Thickness, sheet, settings)...)
		}
	}
	return conflicts
}

// checkPairs reports each pair of placements on one sheet at most once.
func checkPairs(thickness float64, sheet model.NestingSheet, s model.Settings) []Conflict {
	var conflicts []Conflict
	gap := s.Spacing - epsilon
	for i, a := range sheet.Placements {
		ab := a.Bounds()
		var ar model.Ring
		for j := i + 1; j < len(sheet.Placements); j++ {
			c := sheet.Placements[j]
			if !ab.Intersects(c.Bounds().Expand(gap)) {
				continue
			}
			tooClose := true
			if s.Mode == model.ModeExact {
				if ar == nil {
					ar = a.Exterior()
				}
				tooClose = geometry.RingsWithin(ar, c.Exterior(), gap)
			}
			if tooClose {
				conflicts = append(conflicts, Conflict{
					Thickness:  thickness,
					SheetID:    sheet.ID,
					Plate:      a.Plate.SourceID,
					Other:      c.Plate.SourceID,
					PlateIndex: i,
					OtherIndex: j,
					Reason:     fmt.Sprintf("closer than %g mm", s.Spacing),
				})
			}
		}
	}
	return conflicts
}

// FormatConflictWarnings produces human-readable warning messages.
func FormatConflictWarnings(conflicts []Conflict) []string {
	var warnings []string
	for _, c := range conflicts {
		if c.OtherIndex < 0 {
			warnings = append(warnings, fmt.Sprintf("Sheet %s (%g mm): plate %q %s",
				c.SheetID, c.Thickness, c.Plate, c.Reason))
			continue
		}
		warnings = append(warnings, fmt.Sprintf("Sheet %s (%g mm): plates %q and %q %s",
			c.SheetID, c.Thickness, c.Plate, c.Other, c.Reason))
	}
	return warnings
}
