package simulation

import (
	"math/rand"

	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
)

// State is the whole mutable simulation: the plant grid and the weather panel.
// All operators act on it in place; readers get copies through Clone.
type State struct {
	GridSize int
	Plants   []entities.Plant
	Weather  entities.Weather
}

// NewState generates a fresh grid with the default weather.
func NewState(g *Generator, gridSize int) *State {
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}
	return &State{
		GridSize: gridSize,
		Plants:   g.Generate(gridSize),
		Weather:  entities.DefaultWeather(),
	}
}

// Regenerate replaces the whole plant collection; the weather is kept.
func (s *State) Regenerate(g *Generator) {
	s.Plants = g.Generate(s.GridSize)
}

// Plant returns a pointer into the collection, or nil.
func (s *State) Plant(id int) *entities.Plant {
	if i := FindPlant(s.Plants, id); i >= 0 {
		return &s.Plants[i]
	}
	return nil
}

// Stats recomputes the grid statistics from the current plants.
func (s *State) Stats() entities.GridStats {
	return Compute(s.Plants)
}

// DriftWeather advances the weather panel by one tick.
func (s *State) DriftWeather(rng *rand.Rand) {
	s.Weather = DriftWeather(s.Weather, rng)
}

// Clone returns a deep copy safe to hand out to readers.
func (s *State) Clone() State {
	c := *s
	c.Plants = append([]entities.Plant(nil), s.Plants...)
	c.Weather.Alerts = append([]string(nil), s.Weather.Alerts...)
	return c
}
