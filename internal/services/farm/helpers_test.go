package farm

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/LeonardoBeccarini/spacefarm/internal/model"
	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
	"github.com/LeonardoBeccarini/spacefarm/internal/simulation"
)

type publishedMsg struct {
	topic string
	qos   byte
	msg   interface{}
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []publishedMsg
}

func (f *fakePublisher) PublishToQos(topic string, qos byte, _ bool, msg interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, publishedMsg{topic, qos, msg})
	return nil
}

func (f *fakePublisher) results(t *testing.T) []model.ActionResultEvent {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ActionResultEvent
	for _, m := range f.msgs {
		if evt, ok := m.msg.(model.ActionResultEvent); ok {
			out = append(out, evt)
		}
	}
	return out
}

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// newTestService builds a service over a fixed seed and replaces the grid with plants.
func newTestService(t *testing.T, plants ...entities.Plant) (*FarmService, *fakePublisher, *testClock) {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	gen := simulation.NewGenerator(rng, nil, simulation.DefaultOccupancy)
	svc := NewFarmService(DefaultConfig(), gen, rng)

	clock := &testClock{t: time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)}
	svc.now = clock.now
	svc.notes = nil
	if plants != nil {
		svc.state.Plants = plants
	}
	pub := &fakePublisher{}
	svc.SetPublisher(pub)
	return svc, pub, clock
}

func testPlant(id, water, health, growth int) entities.Plant {
	return entities.Plant{
		ID: id, Type: entities.CropTomato,
		WaterLevel: water, Health: health, Growth: growth,
		DaysToHarvest: 10, ExpectedYield: 20,
		Position: entities.Position{Row: id / 8, Col: id % 8},
	}
}

type fakeFetcher struct {
	w   entities.Weather
	err error
}

func (f fakeFetcher) Current(context.Context, float64, float64) (entities.Weather, error) {
	return f.w, f.err
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return b
}
