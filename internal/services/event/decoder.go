package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/LeonardoBeccarini/spacefarm/internal/model"
	"github.com/LeonardoBeccarini/spacefarm/pkg/dedup"
)

const (
	ActionTopicPrefix = "event/irrigationAction/"
	SnapshotTopic     = "farm/snapshot"

	TypeAction   = "irrigation.action"
	TypeSnapshot = "grid.snapshot"

	sourceFarm = "farm-service"
)

// CommonEvent is the storage-neutral form of every event the service ingests.
type CommonEvent struct {
	EventType     string // irrigation.action | grid.snapshot
	SourceService string
	Action        string // only for irrigation.action
	Status        string
	Severity      string // info|warning
	Fields        map[string]interface{}
	Timestamp     time.Time
}

// MQTTHandler decodes MQTT messages and hands them to sink.
// Action events are QoS 1 and deduplicated by payload hash.
type MQTTHandler struct {
	sink    func(CommonEvent)
	deduper *dedup.Deduper
	now     func() time.Time
}

func NewMQTTHandler(sink func(CommonEvent), d *dedup.Deduper) *MQTTHandler {
	return &MQTTHandler{sink: sink, deduper: d, now: time.Now}
}

func (h *MQTTHandler) Handle(_ string, m mqtt.Message) error {
	topic := m.Topic()
	payload := m.Payload()

	var (
		evt CommonEvent
		err error
	)
	switch {
	case strings.HasPrefix(topic, ActionTopicPrefix):
		if h.deduper != nil && !h.deduper.ShouldProcessPayload(payload) {
			return nil
		}
		evt, err = decodeAction(topic, payload)
	case topic == SnapshotTopic:
		evt, err = decodeSnapshot(payload)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", topic, err)
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = h.now()
	}
	if h.sink != nil {
		h.sink(evt)
	}
	return nil
}

func decodeAction(topic string, payload []byte) (CommonEvent, error) {
	var a model.ActionResultEvent
	if err := json.Unmarshal(payload, &a); err != nil {
		return CommonEvent{}, err
	}
	action := strings.TrimSpace(a.Action)
	if action == "" {
		action = strings.TrimPrefix(topic, ActionTopicPrefix)
	}
	if action == "" || strings.Contains(action, "/") {
		return CommonEvent{}, errors.New("action: missing action name")
	}
	sev := "info"
	if strings.EqualFold(a.Status, model.StatusFail) {
		sev = "warning"
	}
	return CommonEvent{
		EventType:     TypeAction,
		SourceService: sourceFarm,
		Action:        action,
		Status:        strings.ToUpper(a.Status),
		Severity:      sev,
		Fields: map[string]interface{}{
			"affected":  int64(a.Affected),
			"action_id": a.ActionID,
			"message":   a.Message,
		},
		Timestamp: a.Timestamp,
	}, nil
}

func decodeSnapshot(payload []byte) (CommonEvent, error) {
	var s model.GridSnapshotEvent
	if err := json.Unmarshal(payload, &s); err != nil {
		return CommonEvent{}, err
	}
	return CommonEvent{
		EventType:     TypeSnapshot,
		SourceService: sourceFarm,
		Severity:      "info",
		Fields: map[string]interface{}{
			"total_plants":         int64(s.Stats.TotalPlants),
			"healthy_plants":       int64(s.Stats.HealthyPlants),
			"critical_plants":      int64(s.Stats.CriticalPlants),
			"average_water_level":  s.Stats.AverageWaterLevel,
			"estimated_harvest":    s.Stats.EstimatedHarvest,
			"days_to_next_harvest": int64(s.Stats.DaysToNextHarvest),
			"water_efficiency":     int64(s.Stats.WaterEfficiency),
			"temperature":          s.Weather.Temperature,
			"humidity":             s.Weather.Humidity,
			"uv_index":             s.Weather.UVIndex,
			"auto_mode":            s.AutoMode,
		},
		Timestamp: s.Timestamp,
	}, nil
}
