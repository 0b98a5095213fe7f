package messages

import "time"

// ActionCommand asks the farm service to run an irrigation action.
// PlantID is only used by the manual watering action.
type ActionCommand struct {
	ActionID  string    `json:"action_id"`
	Action    string    `json:"action"`
	PlantID   *int      `json:"plant_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
