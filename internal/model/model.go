package model

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r3"
)

// Point2D represents a 2D coordinate in mm.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Ring represents a closed polygon as a sequence of 2D points.
// The ring is implicitly closed: the last point connects back to the first.
type Ring []Point2D

// Area returns the signed shoelace area. Counter-clockwise rings are positive.
func (r Ring) Area() float64 {
	n := len(r)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += r[i].X*r[j].Y - r[j].X*r[i].Y
	}
	return area / 2
}

// IsCCW reports whether the ring winds counter-clockwise.
func (r Ring) IsCCW() bool {
	return r.Area() > 0
}

// Reverse returns a copy of the ring with the opposite winding.
func (r Ring) Reverse() Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

// Translate shifts all points by dx, dy.
func (r Ring) Translate(dx, dy float64) Ring {
	result := make(Ring, len(r))
	for i, p := range r {
		result[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// BoundingBox returns the axis-aligned bounds of the ring.
func (r Ring) BoundingBox() BoundingBox {
	if len(r) == 0 {
		return BoundingBox{}
	}
	bb := BoundingBox{Min: r[0], Max: r[0]}
	for _, p := range r[1:] {
		bb.Min.X = math.Min(bb.Min.X, p.X)
		bb.Min.Y = math.Min(bb.Min.Y, p.Y)
		bb.Max.X = math.Max(bb.Max.X, p.X)
		bb.Max.Y = math.Max(bb.Max.Y, p.Y)
	}
	return bb
}

// Orb converts the ring to a closed orb.Ring.
func (r Ring) Orb() orb.Ring {
	out := make(orb.Ring, 0, len(r)+1)
	for _, p := range r {
		out = append(out, orb.Point{p.X, p.Y})
	}
	if len(r) > 0 {
		out = append(out, orb.Point{r[0].X, r[0].Y})
	}
	return out
}

// Clone returns an independent copy of the ring.
func (r Ring) Clone() Ring {
	if r == nil {
		return nil
	}
	out := make(Ring, len(r))
	copy(out, r)
	return out
}

// BoundingBox is an axis-aligned 2D rectangle.
type BoundingBox struct {
	Min Point2D `json:"min"`
	Max Point2D `json:"max"`
}

func (b BoundingBox) Width() float64  { return b.Max.X - b.Min.X }
func (b BoundingBox) Height() float64 { return b.Max.Y - b.Min.Y }
func (b BoundingBox) Area() float64   { return b.Width() * b.Height() }

// Expand grows the box by d on every side.
func (b BoundingBox) Expand(d float64) BoundingBox {
	return BoundingBox{
		Min: Point2D{X: b.Min.X - d, Y: b.Min.Y - d},
		Max: Point2D{X: b.Max.X + d, Y: b.Max.Y + d},
	}
}

// Contains reports whether p lies inside the box or on its edge.
func (b BoundingBox) Contains(p Point2D) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Intersects reports whether the two boxes overlap (touching does not count).
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.Min.X < o.Max.X && b.Max.X > o.Min.X &&
		b.Min.Y < o.Max.Y && b.Max.Y > o.Min.Y
}

// Translate shifts the box by dx, dy.
func (b BoundingBox) Translate(dx, dy float64) BoundingBox {
	return BoundingBox{
		Min: Point2D{X: b.Min.X + dx, Y: b.Min.Y + dy},
		Max: Point2D{X: b.Max.X + dx, Y: b.Max.Y + dy},
	}
}

// PlaneBasis maps between world coordinates and the 2D plate plane.
// U and V are orthonormal in-plane axes and Normal = U x V.
type PlaneBasis struct {
	Origin r3.Vec `json:"origin"`
	U      r3.Vec `json:"u"`
	V      r3.Vec `json:"v"`
	Normal r3.Vec `json:"normal"`
}

// Project maps a world point onto the plane.
func (b PlaneBasis) Project(p r3.Vec) Point2D {
	d := r3.Sub(p, b.Origin)
	return Point2D{X: r3.Dot(d, b.U), Y: r3.Dot(d, b.V)}
}

// Lift maps a plane point back into world coordinates.
func (b PlaneBasis) Lift(p Point2D) r3.Vec {
	return r3.Add(b.Origin, r3.Add(r3.Scale(p.X, b.U), r3.Scale(p.Y, b.V)))
}

// Distance returns the signed distance of p from the plane along Normal.
func (b PlaneBasis) Distance(p r3.Vec) float64 {
	return r3.Dot(r3.Sub(p, b.Origin), b.Normal)
}

// Hole is an interior ring of a plate. FastenerID is set when the hole was
// synthesized from a fastener and empty when it was traced from the mesh.
type Hole struct {
	Ring       Ring   `json:"ring"`
	FastenerID string `json:"fastener_id,omitempty"`
}

// PlateGeometry is the real 2D shape of one plate-like element.
// Exterior winds counter-clockwise, holes wind clockwise.
type PlateGeometry struct {
	SourceID    string      `json:"source_id"`
	Name        string      `json:"name"`
	Thickness   float64     `json:"thickness"` // mm
	Basis       PlaneBasis  `json:"basis"`
	Exterior    Ring        `json:"exterior"`
	Holes       []Hole      `json:"holes,omitempty"`
	BoundingBox BoundingBox `json:"bounding_box"`
	Area        float64     `json:"area"` // mm², exterior minus holes

	// Approximate marks a bounding-box substitute used when extraction failed.
	Approximate       bool   `json:"approximate"`
	ApproximateReason string `json:"approximate_reason,omitempty"`
}

// Recompute refreshes the derived bounding box and area.
func (pg *PlateGeometry) Recompute() {
	pg.BoundingBox = pg.Exterior.BoundingBox()
	area := math.Abs(pg.Exterior.Area())
	for _, h := range pg.Holes {
		area -= math.Abs(h.Ring.Area())
	}
	pg.Area = area
}

// HoleRings returns the interior rings in insertion order.
func (pg *PlateGeometry) HoleRings() []Ring {
	rings := make([]Ring, len(pg.Holes))
	for i, h := range pg.Holes {
		rings[i] = h.Ring
	}
	return rings
}

// HasFastenerHole reports whether a hole was already synthesized for the fastener.
func (pg *PlateGeometry) HasFastenerHole(fastenerID string) bool {
	for _, h := range pg.Holes {
		if h.FastenerID != "" && h.FastenerID == fastenerID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the plate.
func (pg *PlateGeometry) Clone() *PlateGeometry {
	cp := *pg
	cp.Exterior = pg.Exterior.Clone()
	if pg.Holes != nil {
		cp.Holes = make([]Hole, len(pg.Holes))
		for i, h := range pg.Holes {
			cp.Holes[i] = Hole{Ring: h.Ring.Clone(), FastenerID: h.FastenerID}
		}
	}
	return &cp
}

// Fastener is a point-like attachment (bolt, pin) with a diameter.
// It is never owned by a plate; matching only reads it.
type Fastener struct {
	SourceID   string     `json:"source_id"`
	Name       string     `json:"name"`
	Position   r3.Vec     `json:"position"`
	Properties Properties `json:"properties,omitempty"`

	// BoundsMin/BoundsMax describe the fastener's own bounding geometry.
	// Both zero means unknown.
	BoundsMin r3.Vec `json:"bounds_min"`
	BoundsMax r3.Vec `json:"bounds_max"`
}

// HasBounds reports whether the fastener carries bounding geometry.
func (f Fastener) HasBounds() bool {
	return f.BoundsMin != (r3.Vec{}) || f.BoundsMax != (r3.Vec{})
}

// HoleOnly reports whether the fastener is a hole without a bolt
// ("Bolt count" of zero in Tekla exports).
func (f Fastener) HoleOnly() bool {
	count, ok := f.Properties.Float("Bolt count")
	return ok && count == 0
}

// StockSize represents an available stock sheet size. A zero Thickness
// means the size is stocked for every thickness.
type StockSize struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	Width     float64 `json:"width"`     // mm
	Height    float64 `json:"height"`    // mm
	Thickness float64 `json:"thickness"` // mm, 0 = any
}

func NewStockSize(label string, w, h, thickness float64) StockSize {
	return StockSize{
		ID:        uuid.New().String()[:8],
		Label:     label,
		Width:     w,
		Height:    h,
		Thickness: thickness,
	}
}

// Area returns the sheet area in mm².
func (s StockSize) Area() float64 {
	return s.Width * s.Height
}

// Placement is a plate placed on a sheet. X and Y are where the plate's
// bounding-box minimum lands on the sheet.
type Placement struct {
	Plate    *PlateGeometry `json:"plate"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Rotation float64        `json:"rotation"` // degrees, always 0 for the greedy packer
}

// Offset returns the translation applied to the plate's own coordinates.
func (p Placement) Offset() (dx, dy float64) {
	return p.X - p.Plate.BoundingBox.Min.X, p.Y - p.Plate.BoundingBox.Min.Y
}

// Exterior returns the plate exterior in sheet coordinates.
func (p Placement) Exterior() Ring {
	dx, dy := p.Offset()
	return p.Plate.Exterior.Translate(dx, dy)
}

// Holes returns the plate holes in sheet coordinates.
func (p Placement) Holes() []Ring {
	dx, dy := p.Offset()
	rings := make([]Ring, len(p.Plate.Holes))
	for i, h := range p.Plate.Holes {
		rings[i] = h.Ring.Translate(dx, dy)
	}
	return rings
}

// Bounds returns the placed bounding box on the sheet.
func (p Placement) Bounds() BoundingBox {
	return BoundingBox{
		Min: Point2D{X: p.X, Y: p.Y},
		Max: Point2D{X: p.X + p.Plate.BoundingBox.Width(), Y: p.Y + p.Plate.BoundingBox.Height()},
	}
}

// NestingSheet is one stock sheet instance with its placements.
type NestingSheet struct {
	ID          string      `json:"id"`
	Stock       StockSize   `json:"stock"`
	Thickness   float64     `json:"thickness"`
	Placements  []Placement `json:"placements"`
	Utilization float64     `json:"utilization"` // placed area / stock area, 0..1
}

func NewNestingSheet(stock StockSize, thickness float64) NestingSheet {
	return NestingSheet{
		ID:        uuid.New().String()[:8],
		Stock:     stock,
		Thickness: thickness,
	}
}

// Add appends a placement and recomputes utilization.
func (ns *NestingSheet) Add(p Placement) {
	ns.Placements = append(ns.Placements, p)
	ta := ns.TotalArea()
	if ta == 0 {
		ns.Utilization = 0
		return
	}
	ns.Utilization = ns.UsedArea() / ta
}

// UsedArea returns the total area of the placed plates.
func (ns NestingSheet) UsedArea() float64 {
	var total float64
	for _, p := range ns.Placements {
		total += p.Plate.Area
	}
	return total
}

// TotalArea returns the stock sheet area.
func (ns NestingSheet) TotalArea() float64 {
	return ns.Stock.Area()
}

// UnplacedPlate records a plate that could not be placed and why.
type UnplacedPlate struct {
	Plate  *PlateGeometry `json:"plate"`
	Reason error          `json:"-"`
}

// ReasonText returns the reason as a string for reports.
func (u UnplacedPlate) ReasonText() string {
	if u.Reason == nil {
		return ""
	}
	return u.Reason.Error()
}

// NestingStats holds aggregate figures for a nesting run.
type NestingStats struct {
	TotalSheets        int     `json:"total_sheets"`
	TotalPlates        int     `json:"total_plates"`
	PlacedPlates       int     `json:"placed_plates"`
	UnplacedPlates     int     `json:"unplaced_plates"`
	ApproximatePlates  int     `json:"approximate_plates"`
	AverageUtilization float64 `json:"average_utilization"` // mean of per-sheet utilization
	OverallUtilization float64 `json:"overall_utilization"` // used area / stock area
	TotalStockArea     float64 `json:"total_stock_area"`    // mm²
	UsedArea           float64 `json:"used_area"`           // mm²
	WasteArea          float64 `json:"waste_area"`          // mm²
	PlateMassKg        float64 `json:"plate_mass_kg"`
	WasteMassKg        float64 `json:"waste_mass_kg"`
}

// NestingResult is the complete cutting plan for one request.
type NestingResult struct {
	Groups   map[float64][]NestingSheet `json:"-"`
	Unplaced []UnplacedPlate            `json:"unplaced"`
	Stats    NestingStats               `json:"stats"`

	// Incomplete is set when the run was cancelled before every plate was tried.
	Incomplete bool `json:"incomplete"`
}

// Thicknesses returns the group keys in ascending order.
func (nr NestingResult) Thicknesses() []float64 {
	keys := make([]float64, 0, len(nr.Groups))
	for t := range nr.Groups {
		keys = append(keys, t)
	}
	sort.Float64s(keys)
	return keys
}

// SheetGroup is one thickness group of a result, used for serialization.
type SheetGroup struct {
	Thickness float64        `json:"thickness"`
	Sheets    []NestingSheet `json:"sheets"`
}

// GroupList returns the groups ordered by thickness.
func (nr NestingResult) GroupList() []SheetGroup {
	groups := make([]SheetGroup, 0, len(nr.Groups))
	for _, t := range nr.Thicknesses() {
		groups = append(groups, SheetGroup{Thickness: t, Sheets: nr.Groups[t]})
	}
	return groups
}

// Sheets returns every sheet, ordered by thickness then packing order.
func (nr NestingResult) Sheets() []NestingSheet {
	var sheets []NestingSheet
	for _, t := range nr.Thicknesses() {
		sheets = append(sheets, nr.Groups[t]...)
	}
	return sheets
}
