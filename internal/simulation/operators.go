package simulation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
)

const (
	GaugeMin = 0
	GaugeMax = 100

	waterGain       = 20
	waterHealthGain = 5

	drainTrigger = 80
	drainLoss    = 20
	drainFloor   = 60

	sprinklerTrigger = 60
	sprinklerGain    = 15

	dripTrigger    = 30
	dripGain       = 25
	dripHealthGain = 3

	autoTrigger = 25
)

// Action names an irrigation operator.
type Action string

const (
	ActionManual     Action = "manual"
	ActionAuto       Action = "auto"
	ActionDrainage   Action = "drainage"
	ActionSprinklers Action = "sprinklers"
	ActionDrip       Action = "drip"
	ActionSchedule   Action = "schedule"
)

var ErrUnknownAction = errors.New("unknown action")

// dashboard labels of the action buttons
var actionLabels = map[string]Action{
	"riego manual": ActionManual,
	"auto-riego":   ActionAuto,
	"drenaje":      ActionDrainage,
	"aspersores":   ActionSprinklers,
	"goteo":        ActionDrip,
	"programar":    ActionSchedule,
}

// ParseAction accepts either an action identifier or its dashboard label.
func ParseAction(s string) (Action, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	switch a := Action(k); a {
	case ActionManual, ActionAuto, ActionDrainage, ActionSprinklers, ActionDrip, ActionSchedule:
		return a, nil
	}
	if a, ok := actionLabels[k]; ok {
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

func clampGauge(v int) int {
	if v < GaugeMin {
		return GaugeMin
	}
	if v > GaugeMax {
		return GaugeMax
	}
	return v
}

// ApplyWhere runs fn on every plant matching pred and returns how many matched.
func ApplyWhere(plants []entities.Plant, pred func(entities.Plant) bool, fn func(*entities.Plant)) int {
	n := 0
	for i := range plants {
		if pred != nil && !pred(plants[i]) {
			continue
		}
		fn(&plants[i])
		n++
	}
	return n
}

// Water is the manual watering update. It returns the water actually gained.
func Water(p *entities.Plant) int {
	before := p.WaterLevel
	p.WaterLevel = clampGauge(p.WaterLevel + waterGain)
	p.Health = clampGauge(p.Health + waterHealthGain)
	return p.WaterLevel - before
}

// Drain lowers over-watered plants, never below drainFloor.
func Drain(plants []entities.Plant) int {
	return ApplyWhere(plants,
		func(p entities.Plant) bool { return p.WaterLevel > drainTrigger },
		func(p *entities.Plant) {
			p.WaterLevel = clampGauge(max(drainFloor, p.WaterLevel-drainLoss))
		})
}

// Sprinkle waters every plant below the sprinkler trigger.
func Sprinkle(plants []entities.Plant) int {
	return ApplyWhere(plants,
		func(p entities.Plant) bool { return p.WaterLevel < sprinklerTrigger },
		func(p *entities.Plant) {
			p.WaterLevel = clampGauge(p.WaterLevel + sprinklerGain)
		})
}

// Drip targets the driest plants and gives them a small health boost.
func Drip(plants []entities.Plant) int {
	return ApplyWhere(plants,
		func(p entities.Plant) bool { return p.WaterLevel < dripTrigger },
		func(p *entities.Plant) {
			p.WaterLevel = clampGauge(p.WaterLevel + dripGain)
			p.Health = clampGauge(p.Health + dripHealthGain)
		})
}

// AutoIrrigate waters every plant below the auto-irrigation trigger.
func AutoIrrigate(plants []entities.Plant) int {
	return ApplyWhere(plants,
		func(p entities.Plant) bool { return p.WaterLevel < autoTrigger },
		func(p *entities.Plant) { Water(p) })
}

// Sweep runs the grid-wide operator bound to a, for the actions that have one.
func Sweep(a Action, plants []entities.Plant) (int, bool) {
	switch a {
	case ActionDrainage:
		return Drain(plants), true
	case ActionSprinklers:
		return Sprinkle(plants), true
	case ActionDrip:
		return Drip(plants), true
	}
	return 0, false
}
