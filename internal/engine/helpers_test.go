package engine

import (
	"github.com/piwi3910/platenest/internal/model"
)

func testSettings() model.Settings {
	s := model.DefaultSettings()
	s.Spacing = 5
	s.EdgeMargin = 0
	return s
}

func ringPlate(id string, thickness float64, pts ...model.Point2D) *model.PlateGeometry {
	pg := &model.PlateGeometry{
		SourceID:  id,
		Name:      id,
		Thickness: thickness,
		Exterior:  model.Ring(pts),
	}
	pg.Recompute()
	return pg
}

func rectPlate(id string, w, h, thickness float64) *model.PlateGeometry {
	return ringPlate(id, thickness,
		model.Point2D{X: 0, Y: 0},
		model.Point2D{X: w, Y: 0},
		model.Point2D{X: w, Y: h},
		model.Point2D{X: 0, Y: h},
	)
}

func catalogOf(stocks ...model.StockSize) model.StockCatalog {
	return model.StockCatalog{Stocks: stocks}
}
