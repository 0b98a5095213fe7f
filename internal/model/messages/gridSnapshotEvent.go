package messages

import (
	"time"

	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
)

// GridSnapshotEvent carries the periodic grid statistics and weather panel.
type GridSnapshotEvent struct {
	Stats     entities.GridStats `json:"stats"`
	Weather   entities.Weather   `json:"weather"`
	AutoMode  bool               `json:"auto_mode"`
	Timestamp time.Time          `json:"timestamp"`
}
