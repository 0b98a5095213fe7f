package entities

import "time"

// Schedule is a saved irrigation program.
type Schedule struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Type        string    `json:"type"`       // manual | automatic
	Frequency   string    `json:"frequency"`  // daily | weekly | custom
	StartTime   string    `json:"start_time"` // HH:MM
	DurationMin int       `json:"duration"`   // minutes
	CreatedAt   time.Time `json:"created_at"`
}
