package entities

// Position is the grid cell a plant occupies.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Plant is one simulated crop occupying a grid cell.
// WaterLevel, Health and Growth are gauges in [0,100].
type Plant struct {
	ID            int      `json:"id"`   // row*gridSize + col
	Type          string   `json:"type"` // crop name, see Crops
	WaterLevel    int      `json:"water_level"`
	Health        int      `json:"health"`
	Growth        int      `json:"growth"`
	DaysToHarvest int      `json:"days_to_harvest"`
	ExpectedYield float64  `json:"expected_yield"` // kg/m2
	Position      Position `json:"position"`
}

// AverageGauge is the mean of the three gauges.
func (p Plant) AverageGauge() float64 {
	return float64(p.WaterLevel+p.Health+p.Growth) / 3
}
