package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/platenest/internal/model"
	"github.com/piwi3910/platenest/internal/pathser"
)

// planReport is the JSON form of a nesting result. Sheets carry SVG path
// data so the plan can be drawn without the plate geometry.
type planReport struct {
	Groups     []groupReport      `json:"groups"`
	Unplaced   []unplacedReport   `json:"unplaced"`
	Remnants   []model.Remnant    `json:"remnants,omitempty"`
	Stats      model.NestingStats `json:"stats"`
	Incomplete bool               `json:"incomplete"`
	Warnings   []string           `json:"warnings,omitempty"`
}

type groupReport struct {
	Thickness float64       `json:"thickness"`
	Sheets    []sheetReport `json:"sheets"`
}

type sheetReport struct {
	ID          string            `json:"id"`
	Stock       model.StockSize   `json:"stock"`
	Utilization float64           `json:"utilization"`
	Placements  []placementReport `json:"placements"`
}

type placementReport struct {
	SourceID string  `json:"source_id"`
	Name     string  `json:"name,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	Path     string  `json:"path"`
}

type unplacedReport struct {
	SourceID  string  `json:"source_id"`
	Thickness float64 `json:"thickness"`
	Reason    string  `json:"reason"`
}

func buildPlanReport(result model.NestingResult, settings model.Settings, warnings []string) planReport {
	r := planReport{
		Groups:     []groupReport{},
		Unplaced:   []unplacedReport{},
		Remnants:   model.DetectAllRemnants(result, settings),
		Stats:      result.Stats,
		Incomplete: result.Incomplete,
		Warnings:   warnings,
	}
	for _, g := range result.GroupList() {
		gr := groupReport{Thickness: g.Thickness}
		for _, sheet := range g.Sheets {
			sr := sheetReport{ID: sheet.ID, Stock: sheet.Stock, Utilization: sheet.Utilization}
			for _, p := range sheet.Placements {
				sr.Placements = append(sr.Placements, placementReport{
					SourceID: p.Plate.SourceID,
					Name:     p.Plate.Name,
					X:        p.X,
					Y:        p.Y,
					Rotation: p.Rotation,
					Path:     pathser.SVG(pathser.SerializePlacement(p)),
				})
			}
			gr.Sheets = append(gr.Sheets, sr)
		}
		r.Groups = append(r.Groups, gr)
	}
	for _, u := range result.Unplaced {
		ur := unplacedReport{Reason: u.ReasonText()}
		if u.Plate != nil {
			ur.SourceID = u.Plate.SourceID
			ur.Thickness = u.Plate.Thickness
		}
		r.Unplaced = append(r.Unplaced, ur)
	}
	return r
}

func formatPlateTable(plates []*model.PlateGeometry) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tName\tThickness\tSize\tHoles\tArea\tNote")
	for _, pg := range plates {
		note := ""
		if pg.Approximate {
			note = "approximate: " + pg.ApproximateReason
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%.0f x %.0f\t%d\t%.0f\t%s\n",
			pg.SourceID, pg.Name, pg.Thickness,
			pg.BoundingBox.Width(), pg.BoundingBox.Height(),
			len(pg.Holes), pg.Area, note)
	}
	w.Flush()
	return b.String()
}

func formatResult(result model.NestingResult) string {
	var b strings.Builder
	st := result.Stats
	fmt.Fprintf(&b, "Sheets: %d  Placed: %d/%d  Utilization: %.1f%%  Plate mass: %.1f kg\n",
		st.TotalSheets, st.PlacedPlates, st.TotalPlates, 100*st.OverallUtilization, st.PlateMassKg)
	if result.Incomplete {
		b.WriteString("Result is incomplete: the run was cancelled\n")
	}

	b.WriteString("\n")
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Sheet\tThickness\tStock\tPlates\tUtilization")
	for _, sheet := range result.Sheets() {
		fmt.Fprintf(w, "%s\t%g\t%s (%.0f x %.0f)\t%d\t%.1f%%\n",
			sheet.ID, sheet.Thickness, sheet.Stock.Label, sheet.Stock.Width, sheet.Stock.Height,
			len(sheet.Placements), 100*sheet.Utilization)
	}
	w.Flush()

	if len(result.Unplaced) > 0 {
		b.WriteString("\nUnplaced:\n")
		for _, u := range result.Unplaced {
			if u.Plate == nil {
				fmt.Fprintf(&b, "  (missing plate): %s\n", u.ReasonText())
				continue
			}
			fmt.Fprintf(&b, "  %s (%g mm): %s\n", u.Plate.SourceID, u.Plate.Thickness, u.ReasonText())
		}
	}
	return b.String()
}

// writeJSONOutput writes v as indented JSON to path, or to the command's
// output when path is "-".
func writeJSONOutput(cmd *cobra.Command, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info().Str("file", path).Msg("JSON written")
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
