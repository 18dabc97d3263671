package model

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// Remnant is a reusable rectangular strip left on a sheet after nesting.
type Remnant struct {
	ID         string  `json:"id"`
	SheetID    string  `json:"sheet_id"`
	SheetLabel string  `json:"sheet_label"`
	Thickness  float64 `json:"thickness"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// Area returns the remnant area in mm².
func (r Remnant) Area() float64 {
	return r.Width * r.Height
}

// ToStockSize converts a remnant into a stock entry of its thickness.
func (r Remnant) ToStockSize() StockSize {
	return NewStockSize("Remnant "+r.SheetLabel, r.Width, r.Height, r.Thickness)
}

// DetectRemnants finds the strips right of and above every placement that are
// at least minDim on both sides and minArea in area. Largest first.
func DetectRemnants(sheet NestingSheet, spacing, minDim, minArea float64) []Remnant {
	sheetW := sheet.Stock.Width
	sheetH := sheet.Stock.Height

	newRemnant := func(x, y, w, h float64) Remnant {
		return Remnant{
			ID:         uuid.New().String()[:8],
			SheetID:    sheet.ID,
			SheetLabel: sheet.Stock.Label,
			Thickness:  sheet.Thickness,
			X:          x,
			Y:          y,
			Width:      w,
			Height:     h,
		}
	}

	if len(sheet.Placements) == 0 {
		return []Remnant{newRemnant(0, 0, sheetW, sheetH)}
	}

	var maxRight, maxTop float64
	for _, p := range sheet.Placements {
		b := p.Bounds()
		maxRight = math.Max(maxRight, b.Max.X+spacing)
		maxTop = math.Max(maxTop, b.Max.Y+spacing)
	}

	usable := func(w, h float64) bool {
		return w >= minDim && h >= minDim && w*h >= minArea
	}

	var remnants []Remnant

	rightW := sheetW - maxRight
	if usable(rightW, sheetH) {
		remnants = append(remnants, newRemnant(maxRight, 0, rightW, sheetH))
	}

	// Limited to the placed width so it does not overlap the right strip.
	topH := sheetH - maxTop
	topW := math.Min(maxRight, sheetW)
	if usable(topW, topH) {
		remnants = append(remnants, newRemnant(0, maxTop, topW, topH))
	}

	sort.SliceStable(remnants, func(i, j int) bool {
		return remnants[i].Area() > remnants[j].Area()
	})
	return remnants
}

// DetectAllRemnants collects remnants over every sheet of a result.
func DetectAllRemnants(result NestingResult, s Settings) []Remnant {
	var all []Remnant
	for _, sheet := range result.Sheets() {
		all = append(all, DetectRemnants(sheet, s.Spacing, s.MinRemnantDimension, s.MinRemnantArea)...)
	}
	return all
}

// TotalRemnantArea returns the summed area of the remnants in mm².
func TotalRemnantArea(remnants []Remnant) float64 {
	var total float64
	for _, r := range remnants {
		total += r.Area()
	}
	return total
}
