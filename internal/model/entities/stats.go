package entities

// GridStats are the grid-wide figures derived from the plant collection.
type GridStats struct {
	TotalPlants       int     `json:"total_plants"`
	HealthyPlants     int     `json:"healthy_plants"`
	CriticalPlants    int     `json:"critical_plants"`
	AverageWaterLevel float64 `json:"average_water_level"`
	EstimatedHarvest  float64 `json:"estimated_harvest"` // kg/m2
	DaysToNextHarvest int     `json:"days_to_next_harvest"`
	WaterEfficiency   int     `json:"water_efficiency"` // %
}
