package engine

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/platenest/internal/geometry"
	"github.com/piwi3910/platenest/internal/model"
)

// PackStatus tells how a packing run ended.
type PackStatus int

const (
	// PackStockExhausted is normal termination: every plate was tried.
	PackStockExhausted PackStatus = iota
	// PackCancelled means the context ended before every plate was tried.
	PackCancelled
)

func (s PackStatus) String() string {
	switch s {
	case PackStockExhausted:
		return "stock exhausted"
	case PackCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("PackStatus(%d)", int(s))
}

// PackResult is the outcome of packing one thickness group.
type PackResult struct {
	Sheets   []model.NestingSheet
	Unplaced []model.UnplacedPlate
	Status   PackStatus
}

// UsedArea returns the summed plate area over all sheets.
func (r PackResult) UsedArea() float64 {
	var total float64
	for _, s := range r.Sheets {
		total += s.UsedArea()
	}
	return total
}

// StockArea returns the summed stock area over all sheets.
func (r PackResult) StockArea() float64 {
	var total float64
	for _, s := range r.Sheets {
		total += s.TotalArea()
	}
	return total
}

// Utilization returns used area over stock area, or zero without sheets.
func (r PackResult) Utilization() float64 {
	total := r.StockArea()
	if total == 0 {
		return 0
	}
	return r.UsedArea() / total
}

// Packer places the plates of one thickness group onto stock sheets with a
// deterministic largest-first, first-fit shelf heuristic.
type Packer struct {
	Settings model.Settings
}

func NewPacker(settings model.Settings) *Packer {
	return &Packer{Settings: settings}
}

// shelf is a horizontal band of a sheet. Only the topmost shelf may grow.
type shelf struct {
	y, height float64
}

type placedShape struct {
	bounds   model.BoundingBox
	exterior model.Ring
}

type openSheet struct {
	sheet   model.NestingSheet
	shelves []shelf
	placed  []placedShape
}

// Pack places plates on sheets cut from stocks. Plates are taken largest
// first (stable for equal areas) and put on the first open sheet that has
// room; otherwise a new sheet of the smallest stock that fits is opened.
// Plates that fit no stock, or whose geometry is malformed, are returned as
// unplaced. Cancelling ctx stops packing; the remaining plates are returned
// as unplaced with the context error.
func (p *Packer) Pack(ctx context.Context, thickness float64, plates []*model.PlateGeometry, stocks []model.StockSize) PackResult {
	order := make([]*model.PlateGeometry, len(plates))
	copy(order, plates)
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Area > order[j].Area
	})

	var result PackResult
	var sheets []*openSheet

	for i, pg := range order {
		if err := ctx.Err(); err != nil {
			for _, rest := range order[i:] {
				result.Unplaced = append(result.Unplaced, model.UnplacedPlate{
					Plate:  rest,
					Reason: fmt.Errorf("packing cancelled: %w", err),
				})
			}
			result.Status = PackCancelled
			break
		}

		if err := checkPlate(pg); err != nil {
			result.Unplaced = append(result.Unplaced, model.UnplacedPlate{Plate: pg, Reason: err})
			continue
		}

		placed := false
		for _, os := range sheets {
			if p.placeOnSheet(os, pg) {
				placed = true
				break
			}
		}
		if placed {
			continue
		}

		stock, ok := p.selectStock(pg, stocks)
		if !ok {
			bb := pg.BoundingBox
			result.Unplaced = append(result.Unplaced, model.UnplacedPlate{
				Plate: pg,
				Reason: fmt.Errorf("plate %s (%gx%g mm) exceeds every stock size: %w",
					pg.SourceID, bb.Width(), bb.Height(), model.ErrUnplaceablePlate),
			})
			continue
		}

		os := &openSheet{sheet: model.NestingSheet{
			ID:        fmt.Sprintf("T%g-%d", thickness, len(sheets)+1),
			Stock:     stock,
			Thickness: thickness,
		}}
		sheets = append(sheets, os)
		if !p.placeOnSheet(os, pg) {
			// selectStock guarantees the bounding box fits an empty sheet.
			result.Unplaced = append(result.Unplaced, model.UnplacedPlate{
				Plate:  pg,
				Reason: fmt.Errorf("plate %s does not fit an empty sheet: %w", pg.SourceID, model.ErrUnplaceablePlate),
			})
			sheets = sheets[:len(sheets)-1]
		}
	}

	for _, os := range sheets {
		result.Sheets = append(result.Sheets, os.sheet)
	}
	return result
}

// checkPlate rejects geometry the packer cannot place.
func checkPlate(pg *model.PlateGeometry) error {
	if pg == nil {
		return fmt.Errorf("nil plate: %w", model.ErrDegenerateInput)
	}
	if len(pg.Exterior) < 3 {
		return fmt.Errorf("plate %s has %d outline points: %w", pg.SourceID, len(pg.Exterior), model.ErrDegenerateInput)
	}
	bb := pg.BoundingBox
	if !(pg.Area > 0) || !(bb.Width() > 0) || !(bb.Height() > 0) {
		return fmt.Errorf("plate %s area %g: %w", pg.SourceID, pg.Area, model.ErrZeroArea)
	}
	return nil
}

// selectStock returns the smallest stock whose usable area holds the plate's
// bounding box. Equal areas keep catalog order.
func (p *Packer) selectStock(pg *model.PlateGeometry, stocks []model.StockSize) (model.StockSize, bool) {
	m := p.Settings.EdgeMargin
	w, h := pg.BoundingBox.Width(), pg.BoundingBox.Height()

	best := -1
	for i, s := range stocks {
		if w > s.Width-2*m+epsilon || h > s.Height-2*m+epsilon {
			continue
		}
		if best < 0 || s.Area() < stocks[best].Area() {
			best = i
		}
	}
	if best < 0 {
		return model.StockSize{}, false
	}
	return stocks[best], true
}

// epsilon absorbs rounding in fit comparisons (mm).
const epsilon = 1e-6

// placeOnSheet tries the existing shelves in order, then a new shelf on top.
func (p *Packer) placeOnSheet(os *openSheet, pg *model.PlateGeometry) bool {
	s := p.Settings
	m := s.EdgeMargin
	top := os.sheet.Stock.Height - m
	h := pg.BoundingBox.Height()

	for i := range os.shelves {
		sh := &os.shelves[i]
		last := i == len(os.shelves)-1
		limit := sh.height
		if last {
			limit = top - sh.y
		}
		if h > limit+epsilon {
			continue
		}
		if x, ok := p.scanShelf(os, pg, sh.y); ok {
			p.commit(os, pg, x, sh.y)
			if last && h > sh.height {
				sh.height = h
			}
			return true
		}
	}

	y := m
	if n := len(os.shelves); n > 0 {
		last := os.shelves[n-1]
		y = last.y + last.height + s.Spacing
	}
	if y+h > top+epsilon {
		return false
	}
	x, ok := p.scanShelf(os, pg, y)
	if !ok {
		return false
	}
	os.shelves = append(os.shelves, shelf{y: y, height: h})
	p.commit(os, pg, x, y)
	return true
}

// scanShelf returns the leftmost free x for the plate on the shelf at y.
// Candidates are the left margin, the right edges of placed plates plus
// spacing and a regular grid of ScanStep.
func (p *Packer) scanShelf(os *openSheet, pg *model.PlateGeometry, y float64) (float64, bool) {
	s := p.Settings
	m := s.EdgeMargin
	w := pg.BoundingBox.Width()
	right := os.sheet.Stock.Width - m

	candidates := []float64{m}
	for _, ps := range os.placed {
		candidates = append(candidates, ps.bounds.Max.X+s.Spacing)
	}
	if s.Mode == model.ModeExact && s.ScanStep > 0 {
		for x := m + s.ScanStep; x+w <= right+epsilon; x += s.ScanStep {
			candidates = append(candidates, x)
		}
	}
	sort.Float64s(candidates)

	prev := math.Inf(-1)
	for _, x := range candidates {
		if x-prev < epsilon {
			continue
		}
		prev = x
		if x+w > right+epsilon {
			break
		}
		if p.fits(os, pg, x, y) {
			return x, true
		}
	}
	return 0, false
}

// fits reports whether the plate with its bounding-box minimum at (x, y)
// keeps Spacing from every placed plate.
func (p *Packer) fits(os *openSheet, pg *model.PlateGeometry, x, y float64) bool {
	s := p.Settings
	bb := model.BoundingBox{
		Min: model.Point2D{X: x, Y: y},
		Max: model.Point2D{X: x + pg.BoundingBox.Width(), Y: y + pg.BoundingBox.Height()},
	}
	var ring model.Ring
	for _, ps := range os.placed {
		if !bb.Intersects(ps.bounds.Expand(s.Spacing - epsilon)) {
			continue
		}
		if s.Mode != model.ModeExact {
			return false
		}
		if ring == nil {
			ring = pg.Exterior.Translate(x-pg.BoundingBox.Min.X, y-pg.BoundingBox.Min.Y)
		}
		if geometry.RingsWithin(ring, ps.exterior, s.Spacing) {
			return false
		}
	}
	return true
}

func (p *Packer) commit(os *openSheet, pg *model.PlateGeometry, x, y float64) {
	pl := model.Placement{Plate: pg, X: x, Y: y}
	os.sheet.Add(pl)
	os.placed = append(os.placed, placedShape{bounds: pl.Bounds(), exterior: pl.Exterior()})
}
