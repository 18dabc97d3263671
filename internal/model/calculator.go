package model

// PlateMass returns the mass in kg of a plate of the given area (mm²) and
// thickness (mm) at density kg/mm³.
func PlateMass(area, thickness, density float64) float64 {
	return area * thickness * density
}

// ComputeStats aggregates counts, areas, utilization and tonnage over a result.
// totalPlates is the number of plates submitted to the run.
func ComputeStats(result NestingResult, totalPlates int, density float64) NestingStats {
	stats := NestingStats{
		TotalPlates:    totalPlates,
		UnplacedPlates: len(result.Unplaced),
	}

	var utilSum float64
	for _, t := range result.Thicknesses() {
		for _, sheet := range result.Groups[t] {
			stats.TotalSheets++
			stats.PlacedPlates += len(sheet.Placements)
			utilSum += sheet.Utilization

			used := sheet.UsedArea()
			total := sheet.TotalArea()
			stats.UsedArea += used
			stats.TotalStockArea += total
			stats.PlateMassKg += PlateMass(used, t, density)
			stats.WasteMassKg += PlateMass(total-used, t, density)

			for _, p := range sheet.Placements {
				if p.Plate.Approximate {
					stats.ApproximatePlates++
				}
			}
		}
	}
	for _, u := range result.Unplaced {
		if u.Plate != nil && u.Plate.Approximate {
			stats.ApproximatePlates++
		}
	}

	stats.WasteArea = stats.TotalStockArea - stats.UsedArea
	if stats.TotalSheets > 0 {
		stats.AverageUtilization = utilSum / float64(stats.TotalSheets)
	}
	if stats.TotalStockArea > 0 {
		stats.OverallUtilization = stats.UsedArea / stats.TotalStockArea
	}
	return stats
}

// EstimateSheets returns a lower bound on the sheets needed for plates of a
// given total area on stock of sheetArea, without packing.
func EstimateSheets(plateArea, sheetArea float64) int {
	if sheetArea <= 0 {
		return 0
	}
	n := int(plateArea / sheetArea)
	if float64(n)*sheetArea < plateArea {
		n++
	}
	return n
}
