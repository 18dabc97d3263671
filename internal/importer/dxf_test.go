package importer

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/piwi3910/platenest/internal/geometry"
	"github.com/piwi3910/platenest/internal/model"
)

func square(x, y, size float64) model.Ring {
	return model.Ring{{X: x, Y: y}, {X: x + size, Y: y}, {X: x + size, Y: y + size}, {X: x, Y: y + size}}
}

func TestAssemblePlates_HolesAndIslands(t *testing.T) {
	rings := []model.Ring{
		geometry.Circle(model.Point2D{X: 150, Y: 150}, 10, 16), // hole of the big plate
		square(100, 100, 400),                                   // big plate
		square(300, 300, 100),                                   // second hole
		square(320, 320, 20),                                    // island inside the second hole
		square(700, 100, 50),                                    // separate plate
	}

	plates := assemblePlates(rings, 10, "drawing")

	if len(plates) != 3 {
		t.Fatalf("expected 3 plates, got %d", len(plates))
	}
	big := plates[0]
	if len(big.Holes) != 2 {
		t.Fatalf("expected 2 holes in the big plate, got %d", len(big.Holes))
	}
	if !big.Exterior.IsCCW() {
		t.Error("exterior should be counter-clockwise")
	}
	for _, h := range big.Holes {
		if h.Ring.IsCCW() {
			t.Error("holes should be clockwise")
		}
	}
	if big.BoundingBox.Min != (model.Point2D{}) {
		t.Errorf("expected plate normalized to origin, got %+v", big.BoundingBox.Min)
	}
	if big.Basis.Origin.X != 100 || big.Basis.Origin.Y != 100 {
		t.Errorf("expected basis origin at drawing offset, got %+v", big.Basis.Origin)
	}
	if big.Thickness != 10 || big.SourceID != "drawing-1" {
		t.Errorf("unexpected plate metadata %q %g", big.SourceID, big.Thickness)
	}
	wantArea := 400.0*400 - 100*100 - math.Abs(geometry.Circle(model.Point2D{}, 10, 16).Area())
	if math.Abs(big.Area-wantArea) > 1e-6 {
		t.Errorf("expected area %g, got %g", wantArea, big.Area)
	}
	for _, pg := range plates[1:] {
		if len(pg.Holes) != 0 {
			t.Errorf("plate %s should have no holes", pg.SourceID)
		}
	}
}

func TestChainSegments_ClosesLoops(t *testing.T) {
	segs := []segment{
		{start: model.Point2D{X: 0, Y: 0}, end: model.Point2D{X: 10, Y: 0}},
		{start: model.Point2D{X: 10, Y: 10}, end: model.Point2D{X: 10, Y: 0}}, // reversed
		{start: model.Point2D{X: 10, Y: 10}, end: model.Point2D{X: 0, Y: 10}},
		{start: model.Point2D{X: 0, Y: 10}, end: model.Point2D{X: 0, Y: 0.005}},
		{start: model.Point2D{X: 50, Y: 50}, end: model.Point2D{X: 60, Y: 50}}, // open
	}

	rings := chainSegments(segs, chainTolerance)

	if len(rings) != 1 {
		t.Fatalf("expected 1 closed ring, got %d", len(rings))
	}
	if len(rings[0]) != 4 {
		t.Errorf("expected 4 points, got %d", len(rings[0]))
	}
	if math.Abs(math.Abs(rings[0].Area())-100) > 0.1 {
		t.Errorf("expected area ~100, got %g", rings[0].Area())
	}
}

func TestBulgeArcPoints_Semicircle(t *testing.T) {
	pts := bulgeArcPoints(model.Point2D{X: 0, Y: 0}, model.Point2D{X: 10, Y: 0}, 1, 8)

	if len(pts) != 9 {
		t.Fatalf("expected 9 points, got %d", len(pts))
	}
	for _, p := range pts {
		r := math.Hypot(p.X-5, p.Y)
		if math.Abs(r-5) > 1e-9 {
			t.Errorf("point %+v off the arc (r=%g)", p, r)
		}
	}
	if math.Abs(pts[8].X-10) > 1e-9 || math.Abs(pts[8].Y) > 1e-9 {
		t.Errorf("arc should end at the second vertex, got %+v", pts[8])
	}
}

func TestImportDXF_Errors(t *testing.T) {
	if r := ImportDXF(filepath.Join(t.TempDir(), "missing.dxf"), 10); len(r.Errors) == 0 {
		t.Error("expected error for missing file")
	}
	if r := ImportDXF("any.dxf", 0); len(r.Errors) == 0 {
		t.Error("expected error for zero thickness")
	}
}
