package engine

import (
	"sort"

	"github.com/piwi3910/platenest/internal/model"
)

// ThicknessGroup holds the plates of one thickness. Plates of different
// groups never share a sheet.
type ThicknessGroup struct {
	Thickness float64
	Plates    []*model.PlateGeometry
}

// PartitionByThickness groups plates by exact thickness. Groups are ordered
// by ascending thickness and keep the input order of their plates.
func PartitionByThickness(plates []*model.PlateGeometry) []ThicknessGroup {
	index := make(map[float64]int)
	var groups []ThicknessGroup
	for _, pg := range plates {
		if pg == nil {
			continue
		}
		key := pg.Thickness
		if key == 0 {
			key = 0 // folds -0 into 0
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, ThicknessGroup{Thickness: key})
		}
		groups[i].Plates = append(groups[i].Plates, pg)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Thickness < groups[j].Thickness
	})
	return groups
}
