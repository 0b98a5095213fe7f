package messages

import "time"

// ActionResultEvent is published by the farm service after an action ran (or failed).
type ActionResultEvent struct {
	ActionID  string    `json:"action_id"`
	Action    string    `json:"action"`
	Status    string    `json:"status"`   // "OK" | "FAIL"
	Affected  int       `json:"affected"` // plants touched
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
