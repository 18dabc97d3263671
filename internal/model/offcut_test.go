package model

import "testing"

func placedSheet(w, h float64, plates ...Placement) NestingSheet {
	sheet := NewNestingSheet(StockSize{Label: "Sheet1", Width: w, Height: h}, 10)
	for _, p := range plates {
		sheet.Add(p)
	}
	return sheet
}

func rectPlate(w, h float64) *PlateGeometry {
	pg := &PlateGeometry{Exterior: Ring{{0, 0}, {w, 0}, {w, h}, {0, h}}}
	pg.Recompute()
	return pg
}

func TestDetectRemnantsEmptySheet(t *testing.T) {
	sheet := placedSheet(3000, 1500)
	rs := DetectRemnants(sheet, 5, 50, 10000)
	if len(rs) != 1 {
		t.Fatalf("expected 1 remnant for empty sheet, got %d", len(rs))
	}
	if rs[0].Width != 3000 || rs[0].Height != 1500 {
		t.Errorf("expected full sheet, got %.0fx%.0f", rs[0].Width, rs[0].Height)
	}
}

func TestDetectRemnantsRightStrip(t *testing.T) {
	sheet := placedSheet(3000, 1500, Placement{Plate: rectPlate(1000, 1500)})
	rs := DetectRemnants(sheet, 5, 50, 10000)
	if len(rs) != 1 {
		t.Fatalf("expected only a right strip, got %d", len(rs))
	}
	if rs[0].X != 1005 || rs[0].Width != 1995 || rs[0].Thickness != 10 {
		t.Errorf("unexpected right strip %+v", rs[0])
	}
}

func TestDetectRemnantsTopStrip(t *testing.T) {
	sheet := placedSheet(3000, 1500, Placement{Plate: rectPlate(3000, 500)})
	rs := DetectRemnants(sheet, 5, 50, 10000)
	found := false
	for _, r := range rs {
		if r.Y == 505 && r.Height == 995 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected top strip, got %+v", rs)
	}
}

func TestDetectRemnantsSkipsSlivers(t *testing.T) {
	sheet := placedSheet(1000, 1000, Placement{Plate: rectPlate(980, 980)})
	if rs := DetectRemnants(sheet, 5, 50, 10000); len(rs) != 0 {
		t.Errorf("expected no usable remnants, got %+v", rs)
	}
}

func TestRemnantToStockSize(t *testing.T) {
	r := Remnant{SheetLabel: "S", Thickness: 12, Width: 300, Height: 200}
	s := r.ToStockSize()
	if s.Thickness != 12 || s.Area() != 60000 {
		t.Errorf("unexpected stock %+v", s)
	}
	if TotalRemnantArea([]Remnant{r, r}) != 120000 {
		t.Error("unexpected total area")
	}
}
