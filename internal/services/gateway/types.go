package gateway

import "github.com/LeonardoBeccarini/spacefarm/internal/model/entities"

// Action is one row of the dashboard action feed.
type Action struct {
	Action   string `json:"action"`
	Status   string `json:"status"`
	Affected int    `json:"affected"`
	Time     string `json:"time"` // RFC3339
}

// Payload is the body of GET /dashboard/data.
type Payload struct {
	Stats      *entities.GridStats `json:"stats"`
	StatsStale bool                `json:"stats_stale,omitempty"`
	Actions    []Action            `json:"actions"`
	Breakers   map[string]string   `json:"breakers"`
}
