package farm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/LeonardoBeccarini/spacefarm/internal/model"
	"github.com/LeonardoBeccarini/spacefarm/internal/simulation"
	"github.com/LeonardoBeccarini/spacefarm/pkg/dedup"
)

// CommandHandler applies ActionCommands received on farm/command/#.
// Commands arrive with QoS 1, so redeliveries are dropped by payload hash.
type CommandHandler struct {
	svc     *FarmService
	deduper *dedup.Deduper
	timeout time.Duration
}

func NewCommandHandler(svc *FarmService, d *dedup.Deduper) *CommandHandler {
	if d == nil {
		d = dedup.New(10*time.Minute, 10000)
	}
	return &CommandHandler{svc: svc, deduper: d, timeout: 5 * time.Second}
}

// Handle has the rabbitmq.Handler signature. Bad payloads are logged and
// dropped; they never stop the subscription.
func (h *CommandHandler) Handle(topic string, msg mqtt.Message) error {
	if !h.deduper.ShouldProcessPayload(msg.Payload()) {
		log.Printf("farm: duplicate command on %s dropped", topic)
		return nil
	}
	var cmd model.ActionCommand
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		log.Printf("farm: bad command payload on %s: %v", topic, err)
		return nil
	}
	name := strings.TrimSpace(cmd.Action)
	if name == "" {
		name = topic[strings.LastIndex(topic, "/")+1:]
	}
	action, err := simulation.ParseAction(name)
	if err != nil {
		log.Printf("farm: command %s: %v", cmd.ActionID, err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	res, err := h.svc.Apply(ctx, action, cmd.PlantID, cmd.ActionID)
	if err != nil {
		return fmt.Errorf("command %s (%s): %w", res.ActionID, action, err)
	}
	log.Printf("farm: command %s action=%s affected=%d", res.ActionID, action, res.Affected)
	return nil
}
