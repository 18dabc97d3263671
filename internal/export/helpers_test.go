package export

import (
	"errors"
	"fmt"

	"github.com/piwi3910/platenest/internal/geometry"
	"github.com/piwi3910/platenest/internal/model"
)

func testPlate(id string, w, h, thickness float64, holes int) *model.PlateGeometry {
	pg := &model.PlateGeometry{
		SourceID:  id,
		Name:      "Plate " + id,
		Thickness: thickness,
		Exterior:  model.Ring{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}},
	}
	for i := 0; i < holes; i++ {
		c := model.Point2D{X: 30 + float64(i)*40, Y: h / 2}
		pg.Holes = append(pg.Holes, model.Hole{
			Ring:       geometry.Circle(c, 9, 16).Reverse(),
			FastenerID: fmt.Sprintf("B%d", i+1),
		})
	}
	pg.Recompute()
	return pg
}

// buildTestResult creates a two-thickness result with one unplaced plate.
func buildTestResult() model.NestingResult {
	s10 := model.NestingSheet{ID: "T10-1", Stock: model.NewStockSize("Plate 3000x1500", 3000, 1500, 0), Thickness: 10}
	s10.Add(model.Placement{Plate: testPlate("P1", 600, 400, 10, 2), X: 0, Y: 0})
	s10.Add(model.Placement{Plate: testPlate("P2", 500, 300, 10, 0), X: 605, Y: 0})

	s20 := model.NestingSheet{ID: "T20-1", Stock: model.NewStockSize("Plate 2000x1000", 2000, 1000, 0), Thickness: 20}
	s20.Add(model.Placement{Plate: testPlate("P3", 800, 500, 20, 1), X: 0, Y: 0})

	result := model.NestingResult{
		Groups: map[float64][]model.NestingSheet{10: {s10}, 20: {s20}},
		Unplaced: []model.UnplacedPlate{{
			Plate:  testPlate("BIG", 7000, 100, 10, 0),
			Reason: fmt.Errorf("exceeds every stock size: %w", errors.New("unplaceable")),
		}},
	}
	result.Stats = model.ComputeStats(result, 4, model.DefaultSettings().SteelDensity)
	return result
}
