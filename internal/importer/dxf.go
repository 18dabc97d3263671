package importer

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/piwi3910/platenest/internal/geometry"
	"github.com/piwi3910/platenest/internal/model"
)

// chainTolerance is the largest endpoint gap (mm) bridged when chaining
// LINE and ARC entities.
const chainTolerance = 0.01

// segment represents a line segment between two 2D points, used for
// chaining disconnected LINE entities into closed outlines.
type segment struct {
	start model.Point2D
	end   model.Point2D
}

// ImportDXF imports flat plates from a 2D DXF profile drawing. Each closed
// shape (LWPOLYLINE, CIRCLE, or chain of connected LINEs/ARCs) is an outline;
// an outline lying inside a larger one becomes a hole of that plate. Every
// plate gets the given thickness and is translated so its bounding box
// starts at (0, 0). The plane basis maps the plate back to drawing
// coordinates at z = 0.
func ImportDXF(path string, thickness float64) ImportResult {
	result := ImportResult{}

	if thickness <= 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Thickness must be positive, got %g", thickness))
		return result
	}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var rings []model.Ring
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			ring := polylineRing(e)
			if len(ring) >= 3 {
				rings = append(rings, ring)
			} else {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			rings = append(rings, geometry.Circle(model.Point2D{X: e.Center[0], Y: e.Center[1]}, e.Radius, 64))

		case *entity.Arc:
			segments = append(segments, arcSegmentsOf(e)...)

		case *entity.Line:
			segments = append(segments, segment{
				start: model.Point2D{X: e.Start[0], Y: e.Start[1]},
				end:   model.Point2D{X: e.End[0], Y: e.End[1]},
			})
		}
	}

	rings = append(rings, chainSegments(segments, chainTolerance)...)

	var valid []model.Ring
	for _, r := range rings {
		r = geometry.RemoveCollinear(r, 1e-9)
		bb := r.BoundingBox()
		if len(r) < 3 || bb.Width() < 0.01 || bb.Height() < 0.01 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f mm)", bb.Width(), bb.Height()))
			continue
		}
		if !geometry.IsSimple(r) {
			result.Warnings = append(result.Warnings, "Skipped self-intersecting shape")
			continue
		}
		valid = append(valid, r)
	}

	if len(valid) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	result.Plates = assemblePlates(valid, thickness, base)
	return result
}

// assemblePlates turns outlines into plates. Outlines are taken largest
// first; one that lies inside an existing plate (and not inside one of its
// holes) becomes the smallest such plate's hole, otherwise it starts a new
// plate.
func assemblePlates(rings []model.Ring, thickness float64, base string) []*model.PlateGeometry {
	sort.SliceStable(rings, func(i, j int) bool {
		return math.Abs(rings[i].Area()) > math.Abs(rings[j].Area())
	})

	var plates []*model.PlateGeometry
	for _, r := range rings {
		var owner *model.PlateGeometry
		for _, pg := range plates {
			if !geometry.RingInsideRing(r, pg.Exterior, 0) || insideAnyHole(r, pg) {
				continue
			}
			if owner == nil || math.Abs(pg.Exterior.Area()) < math.Abs(owner.Exterior.Area()) {
				owner = pg
			}
		}
		if owner != nil {
			owner.Holes = append(owner.Holes, model.Hole{Ring: geometry.Orient(r, false)})
			continue
		}
		n := len(plates) + 1
		plates = append(plates, &model.PlateGeometry{
			SourceID:  fmt.Sprintf("%s-%d", base, n),
			Name:      fmt.Sprintf("DXF Plate %d", n),
			Thickness: thickness,
			Exterior:  geometry.Orient(r, true),
		})
	}

	for _, pg := range plates {
		normalize(pg)
	}
	return plates
}

func insideAnyHole(r model.Ring, pg *model.PlateGeometry) bool {
	for _, h := range pg.Holes {
		if geometry.RingInsideRing(r, h.Ring, 0) {
			return true
		}
	}
	return false
}

// normalize translates the plate so its bounding box starts at (0, 0) and
// records the drawing offset in the plane basis.
func normalize(pg *model.PlateGeometry) {
	min := pg.Exterior.BoundingBox().Min
	pg.Exterior = pg.Exterior.Translate(-min.X, -min.Y)
	for i := range pg.Holes {
		pg.Holes[i].Ring = pg.Holes[i].Ring.Translate(-min.X, -min.Y)
	}
	pg.Basis = model.PlaneBasis{
		Origin: r3.Vec{X: min.X, Y: min.Y},
		U:      r3.Vec{X: 1},
		V:      r3.Vec{Y: 1},
		Normal: r3.Vec{Z: 1},
	}
	pg.Recompute()
}

// arcSegments is the number of chords used for every arc and bulge.
const arcSegments = 32

// polylineRing converts an LWPOLYLINE to a ring. A bulged edge is expanded
// into arc points; its end vertex is emitted by the following edge.
func polylineRing(lw *entity.LwPolyline) model.Ring {
	n := len(lw.Vertices)
	ring := make(model.Ring, 0, n)
	for i, v := range lw.Vertices {
		p := model.Point2D{X: v[0], Y: v[1]}
		var bulge float64
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) <= 1e-9 {
			ring = append(ring, p)
			continue
		}
		w := lw.Vertices[(i+1)%n]
		arc := bulgeArcPoints(p, model.Point2D{X: w[0], Y: w[1]}, bulge, arcSegments)
		ring = append(ring, arc[:len(arc)-1]...)
	}
	return ring
}

// bulgeArcPoints returns n+1 points from p1 to p2 along the arc with the
// given DXF bulge (tan of a quarter of the included angle, positive
// counter-clockwise).
func bulgeArcPoints(p1, p2 model.Point2D, bulge float64, n int) model.Ring {
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return model.Ring{p1, p2}
	}
	// Signed offset of the center from the chord midpoint along the left normal.
	d := chord * (1 - bulge*bulge) / (4 * bulge)
	center := model.Point2D{
		X: (p1.X+p2.X)/2 - dy/chord*d,
		Y: (p1.Y+p2.Y)/2 + dx/chord*d,
	}
	start := math.Atan2(p1.Y-center.Y, p1.X-center.X)
	sweep := 4 * math.Atan(bulge)
	return arcPoints(center, math.Hypot(p1.X-center.X, p1.Y-center.Y), start, sweep, n)
}

// arcPoints samples n+1 points from angle start over sweep radians.
func arcPoints(center model.Point2D, r, start, sweep float64, n int) model.Ring {
	pts := make(model.Ring, n+1)
	for i := range pts {
		a := start + sweep*float64(i)/float64(n)
		pts[i] = model.Point2D{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)}
	}
	return pts
}

// arcSegmentsOf converts a DXF ARC (degrees, counter-clockwise) to chords.
func arcSegmentsOf(a *entity.Arc) []segment {
	start := a.Angle[0] * math.Pi / 180
	sweep := a.Angle[1]*math.Pi/180 - start
	if sweep <= 0 {
		sweep += 2 * math.Pi
	}
	pts := arcPoints(model.Point2D{X: a.Circle.Center[0], Y: a.Circle.Center[1]}, a.Circle.Radius, start, sweep, arcSegments)
	segs := make([]segment, len(pts)-1)
	for i := range segs {
		segs[i] = segment{start: pts[i], end: pts[i+1]}
	}
	return segs
}

// chainSegments joins segments end to end into closed rings, largest first.
// Segments may run in either direction; chains that do not close are dropped.
func chainSegments(segs []segment, tol float64) []model.Ring {
	remaining := append([]segment(nil), segs...)
	var rings []model.Ring
	for len(remaining) > 0 {
		chain := []model.Point2D{remaining[0].start, remaining[0].end}
		remaining = remaining[1:]
		for {
			i, next, ok := continuation(remaining, chain[len(chain)-1], tol)
			if !ok {
				break
			}
			chain = append(chain, next)
			remaining = append(remaining[:i], remaining[i+1:]...)
		}
		last := len(chain) - 1
		if last >= 3 && near(chain[0], chain[last], tol) {
			rings = append(rings, model.Ring(chain[:last]))
		}
	}

	sort.SliceStable(rings, func(i, j int) bool {
		return math.Abs(rings[i].Area()) > math.Abs(rings[j].Area())
	})
	return rings
}

// continuation finds the first segment touching tail and returns its far end.
func continuation(segs []segment, tail model.Point2D, tol float64) (int, model.Point2D, bool) {
	for i, s := range segs {
		switch {
		case near(tail, s.start, tol):
			return i, s.end, true
		case near(tail, s.end, tol):
			return i, s.start, true
		}
	}
	return -1, model.Point2D{}, false
}

func near(a, b model.Point2D, tol float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tol
}
