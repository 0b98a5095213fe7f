package simulation

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
)

const (
	healthyAverage  = 70
	healthyMinWater = 30

	criticalWater  = 20
	criticalHealth = 30

	// OptimalWaterLevel is the water level with the best efficiency score.
	OptimalWaterLevel = 65.0
)

// IsHealthy reports whether a plant counts towards HealthyPlants.
func IsHealthy(p entities.Plant) bool {
	return p.AverageGauge() >= healthyAverage && p.WaterLevel >= healthyMinWater
}

// IsCritical reports whether a plant counts towards CriticalPlants.
func IsCritical(p entities.Plant) bool {
	return p.WaterLevel < criticalWater || p.Health < criticalHealth
}

func countWhere(plants []entities.Plant, pred func(entities.Plant) bool) int {
	n := 0
	for _, p := range plants {
		if pred(p) {
			n++
		}
	}
	return n
}

func HealthyPlants(plants []entities.Plant) int { return countWhere(plants, IsHealthy) }

func CriticalPlants(plants []entities.Plant) int { return countWhere(plants, IsCritical) }

// AverageWaterLevel is 0 for an empty collection.
func AverageWaterLevel(plants []entities.Plant) float64 {
	if len(plants) == 0 {
		return 0
	}
	levels := make([]float64, len(plants))
	for i, p := range plants {
		levels[i] = float64(p.WaterLevel)
	}
	return stat.Mean(levels, nil)
}

func EstimatedHarvest(plants []entities.Plant) float64 {
	if len(plants) == 0 {
		return 0
	}
	yields := make([]float64, len(plants))
	for i, p := range plants {
		yields[i] = p.ExpectedYield
	}
	return floats.Sum(yields)
}

// DaysToNextHarvest is the smallest DaysToHarvest, 0 for an empty collection.
func DaysToNextHarvest(plants []entities.Plant) int {
	if len(plants) == 0 {
		return 0
	}
	m := plants[0].DaysToHarvest
	for _, p := range plants[1:] {
		m = min(m, p.DaysToHarvest)
	}
	return m
}

// WaterEfficiency combines the healthy ratio with the distance of the
// average water level from OptimalWaterLevel.
func WaterEfficiency(plants []entities.Plant) int {
	return waterEfficiency(len(plants), HealthyPlants(plants), AverageWaterLevel(plants))
}

func waterEfficiency(total, healthy int, avgWater float64) int {
	if total == 0 {
		return 0
	}
	healthyRatio := float64(healthy) / float64(total)
	optimality := math.Max(0, 100-math.Abs(avgWater-OptimalWaterLevel))
	return int(math.Round(healthyRatio*0.6 + optimality*0.4))
}

// Compute reduces the plant collection to its GridStats.
func Compute(plants []entities.Plant) entities.GridStats {
	s := entities.GridStats{
		TotalPlants:       len(plants),
		HealthyPlants:     HealthyPlants(plants),
		CriticalPlants:    CriticalPlants(plants),
		AverageWaterLevel: AverageWaterLevel(plants),
		EstimatedHarvest:  EstimatedHarvest(plants),
		DaysToNextHarvest: DaysToNextHarvest(plants),
	}
	s.WaterEfficiency = waterEfficiency(s.TotalPlants, s.HealthyPlants, s.AverageWaterLevel)
	return s
}

// HealthyPlantsColor grades the share of healthy plants.
func HealthyPlantsColor(s entities.GridStats) string {
	if s.TotalPlants == 0 {
		return colorRed
	}
	pct := float64(s.HealthyPlants) / float64(s.TotalPlants) * 100
	switch {
	case pct >= 80:
		return colorGreen
	case pct >= 60:
		return colorAmber
	default:
		return colorRed
	}
}

// CriticalPlantsColor grades the number of critical plants.
func CriticalPlantsColor(s entities.GridStats) string {
	switch {
	case s.CriticalPlants == 0:
		return colorGreen
	case s.CriticalPlants <= 2:
		return colorAmber
	default:
		return colorRed
	}
}
