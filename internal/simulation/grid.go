package simulation

import (
	"math/rand"

	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
)

// ====== Tunables ======
const (
	// DefaultGridSize is the side of the square grid.
	DefaultGridSize = 8

	// DefaultOccupancy is the probability that a cell holds a plant.
	DefaultOccupancy = 0.75

	minDaysToHarvest = 5
	maxDaysToHarvest = 25 // exclusive
	minYield         = 10.0
	maxYield         = 40.0 // exclusive
)

// Generator populates a grid with random plants.
// It is not safe for concurrent use: the random source is shared.
type Generator struct {
	rng       *rand.Rand
	crops     []entities.CropType
	occupancy float64
}

// NewGenerator builds a generator over the given random source.
// A nil crop table falls back to entities.Crops.
func NewGenerator(rng *rand.Rand, crops []entities.CropType, occupancy float64) *Generator {
	if len(crops) == 0 {
		crops = entities.Crops
	}
	if occupancy <= 0 || occupancy > 1 {
		occupancy = DefaultOccupancy
	}
	return &Generator{rng: rng, crops: crops, occupancy: occupancy}
}

// Generate returns the plants of a fresh n×n grid, in row-major order.
func (g *Generator) Generate(n int) []entities.Plant {
	if n <= 0 {
		n = DefaultGridSize
	}
	plants := make([]entities.Plant, 0, n*n)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			if g.rng.Float64() >= g.occupancy {
				continue
			}
			crop := g.crops[g.rng.Intn(len(g.crops))]
			plants = append(plants, entities.Plant{
				ID:            row*n + col,
				Type:          crop.Name,
				WaterLevel:    g.rng.Intn(GaugeMax),
				Health:        g.rng.Intn(GaugeMax),
				Growth:        g.rng.Intn(GaugeMax),
				DaysToHarvest: g.rng.Intn(maxDaysToHarvest-minDaysToHarvest) + minDaysToHarvest,
				ExpectedYield: g.rng.Float64()*(maxYield-minYield) + minYield,
				Position:      entities.Position{Row: row, Col: col},
			})
		}
	}
	return plants
}

// PlantAt returns the index of the plant in the given cell, or -1 if the cell is empty.
func PlantAt(plants []entities.Plant, row, col int) int {
	for i := range plants {
		if plants[i].Position.Row == row && plants[i].Position.Col == col {
			return i
		}
	}
	return -1
}

// FindPlant returns the index of the plant with the given id, or -1.
func FindPlant(plants []entities.Plant, id int) int {
	for i := range plants {
		if plants[i].ID == id {
			return i
		}
	}
	return -1
}
