package simulation

import (
	"math/rand"
	"testing"
)

func TestStateCloneIsDeep(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(2)), nil, 1)
	s := NewState(g, 3)
	c := s.Clone()

	s.Plants[0].WaterLevel = -1
	s.Weather.Alerts[0] = "changed"
	if c.Plants[0].WaterLevel == -1 {
		t.Error("clone shares the plant slice")
	}
	if c.Weather.Alerts[0] == "changed" {
		t.Error("clone shares the alerts slice")
	}
}

func TestStatePlantPointer(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(2)), nil, 1)
	s := NewState(g, 2)
	p := s.Plant(3)
	if p == nil {
		t.Fatal("plant 3 missing on a full 2x2 grid")
	}
	Water(p)
	if s.Plants[3].WaterLevel != p.WaterLevel {
		t.Error("Plant must point into the collection")
	}
	if s.Plant(99) != nil {
		t.Error("unknown id must return nil")
	}
}

func TestStateRegenerateKeepsWeather(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(4)), nil, DefaultOccupancy)
	s := NewState(g, DefaultGridSize)
	s.Weather.Temperature = 30
	s.Regenerate(g)
	if s.Weather.Temperature != 30 {
		t.Error("regenerate reset the weather")
	}
	if len(s.Plants) > s.GridSize*s.GridSize {
		t.Errorf("regenerated %d plants on a %d grid", len(s.Plants), s.GridSize)
	}
	if st := s.Stats(); st.TotalPlants != len(s.Plants) {
		t.Errorf("stats total %d, plants %d", st.TotalPlants, len(s.Plants))
	}
}
