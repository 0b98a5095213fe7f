package operator_simulator

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LeonardoBeccarini/spacefarm/internal/model"
	"github.com/LeonardoBeccarini/spacefarm/internal/simulation"
)

// Weighted is one entry of the action mix.
type Weighted struct {
	Action simulation.Action
	Weight int
}

// DefaultMix favours the sweeping operators, like an operator tending the
// grid during a shift.
var DefaultMix = []Weighted{
	{simulation.ActionSprinklers, 3},
	{simulation.ActionDrip, 3},
	{simulation.ActionManual, 2},
	{simulation.ActionDrainage, 1},
	{simulation.ActionAuto, 1},
}

// CommandGenerator draws ActionCommands from a weighted mix.
type CommandGenerator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	mix      []Weighted
	total    int
	gridSize int
	now      func() time.Time
}

func NewCommandGenerator(rng *rand.Rand, gridSize int, mix []Weighted) *CommandGenerator {
	if len(mix) == 0 {
		mix = DefaultMix
	}
	total := 0
	for _, w := range mix {
		if w.Weight > 0 {
			total += w.Weight
		}
	}
	return &CommandGenerator{rng: rng, mix: mix, total: total, gridSize: gridSize, now: time.Now}
}

// Next returns a fresh command. Manual watering targets a random cell, which
// may be empty; the farm answers those with a FAIL result.
func (g *CommandGenerator) Next() model.ActionCommand {
	g.mu.Lock()
	defer g.mu.Unlock()

	action := g.pick()
	cmd := model.ActionCommand{
		ActionID:  uuid.NewString(),
		Action:    string(action),
		Timestamp: g.now().UTC(),
	}
	if action == simulation.ActionManual && g.gridSize > 0 {
		id := g.rng.Intn(g.gridSize * g.gridSize)
		cmd.PlantID = &id
	}
	return cmd
}

func (g *CommandGenerator) pick() simulation.Action {
	if g.total <= 0 {
		return g.mix[0].Action
	}
	n := g.rng.Intn(g.total)
	for _, w := range g.mix {
		if w.Weight <= 0 {
			continue
		}
		if n < w.Weight {
			return w.Action
		}
		n -= w.Weight
	}
	return g.mix[len(g.mix)-1].Action
}
