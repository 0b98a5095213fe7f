package operator_simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/LeonardoBeccarini/spacefarm/internal/model"
	"github.com/LeonardoBeccarini/spacefarm/pkg/dedup"
	"github.com/LeonardoBeccarini/spacefarm/pkg/rabbitmq"
)

const (
	commandTopicPrefix = "farm/command/"
	ResultTopic        = "event/irrigationAction/#"

	// results older than this are not expected any more
	pendingTTL = 2 * time.Minute
)

type pendingCmd struct {
	action string
	sent   time.Time
}

// OperatorSimulator drives the farm over MQTT: it publishes a command every
// interval and tallies the results the farm reports back.
type OperatorSimulator struct {
	generator *CommandGenerator
	publisher rabbitmq.IPublisher
	consumer  rabbitmq.IConsumer
	deduper   *dedup.Deduper

	mu      sync.Mutex
	pending map[string]pendingCmd // by action id
	results map[string]int        // status -> count
	expired int
	now     func() time.Time
}

func NewOperatorSimulator(consumer rabbitmq.IConsumer, publisher rabbitmq.IPublisher, gen *CommandGenerator) *OperatorSimulator {
	return &OperatorSimulator{
		generator: gen,
		publisher: publisher,
		consumer:  consumer,
		deduper:   dedup.New(pendingTTL, 10000),
		pending:   make(map[string]pendingCmd),
		results:   make(map[string]int),
		now:       time.Now,
	}
}

// Start publishes until ctx is cancelled.
func (s *OperatorSimulator) Start(ctx context.Context, interval time.Duration) {
	if s.consumer != nil {
		s.consumer.SetHandler(s.handleResult)
		go s.consumer.ConsumeMessage(ctx)
	}

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("operator: stopping, results=%v pending=%d expired=%d", s.Results(), s.Pending(), s.Expired())
			return
		case <-t.C:
			if err := s.tick(); err != nil {
				log.Printf("operator: %v", err)
			}
		}
	}
}

func (s *OperatorSimulator) tick() error {
	cmd := s.generator.Next()
	topic := commandTopicPrefix + cmd.Action

	// registered before publishing: the result can arrive before the QoS1 ack
	s.mu.Lock()
	s.expireLocked()
	s.pending[cmd.ActionID] = pendingCmd{action: cmd.Action, sent: s.now()}
	s.mu.Unlock()

	if err := s.publisher.PublishToQos(topic, rabbitmq.QoSFor(topic), false, cmd); err != nil {
		s.mu.Lock()
		delete(s.pending, cmd.ActionID)
		s.mu.Unlock()
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	log.Printf("operator: sent %s id=%s", cmd.Action, cmd.ActionID)
	return nil
}

// expireLocked drops commands whose result never came back.
func (s *OperatorSimulator) expireLocked() {
	cutoff := s.now().Add(-pendingTTL)
	for id, p := range s.pending {
		if p.sent.Before(cutoff) {
			delete(s.pending, id)
			s.expired++
		}
	}
}

func (s *OperatorSimulator) handleResult(_ string, msg mqtt.Message) error {
	// QoS1 redelivery carries the same payload
	if s.deduper != nil && !s.deduper.ShouldProcessPayload(msg.Payload()) {
		return nil
	}
	var evt model.ActionResultEvent
	if err := json.Unmarshal(msg.Payload(), &evt); err != nil {
		return fmt.Errorf("invalid ActionResultEvent: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[evt.ActionID]; !ok {
		// someone else's action (dashboard, API)
		return nil
	}
	delete(s.pending, evt.ActionID)
	s.results[strings.ToUpper(evt.Status)]++
	if evt.Status != model.StatusOK {
		log.Printf("operator: %s id=%s failed: %s", evt.Action, evt.ActionID, evt.Message)
	}
	return nil
}

// Results returns a copy of the per-status tally.
func (s *OperatorSimulator) Results() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.results))
	for k, v := range s.results {
		out[k] = v
	}
	return out
}

// Expired counts commands dropped without a result.
func (s *OperatorSimulator) Expired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expired
}

func (s *OperatorSimulator) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
