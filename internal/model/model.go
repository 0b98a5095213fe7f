package model

import (
	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
	"github.com/LeonardoBeccarini/spacefarm/internal/model/messages"
)

// Aliases exposing the common types to the services.

type (
	Plant             = entities.Plant
	Position          = entities.Position
	Weather           = entities.Weather
	GridStats         = entities.GridStats
	Notification      = entities.Notification
	Schedule          = entities.Schedule
	ActionCommand     = messages.ActionCommand
	ActionResultEvent = messages.ActionResultEvent
	GridSnapshotEvent = messages.GridSnapshotEvent
)

const (
	StatusOK   = "OK"
	StatusFail = "FAIL"
)
