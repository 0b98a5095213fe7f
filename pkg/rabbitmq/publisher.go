package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// IPublisher publishes a payload on an MQTT topic.
type IPublisher interface {
	PublishToQos(topic string, qos byte, retained bool, message interface{}) error
}

// Publisher publishes on a default topic through a shared client.
type Publisher struct {
	client  mqtt.Client
	topic   string
	timeout time.Duration
}

func NewPublisher(client mqtt.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic, timeout: 5 * time.Second}
}

// PublishMessage publishes on the default topic with the topic's QoS.
func (p *Publisher) PublishMessage(message interface{}) error {
	return p.PublishToQos(p.topic, qosFor(p.topic), false, message)
}

// PublishToQos accepts a string, a byte slice or any JSON-encodable value.
func (p *Publisher) PublishToQos(topic string, qos byte, retained bool, message interface{}) error {
	payload, err := encode(message)
	if err != nil {
		return err
	}
	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish to %s: timed out after %s", topic, p.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func encode(message interface{}) ([]byte, error) {
	switch m := message.(type) {
	case []byte:
		return m, nil
	case string:
		return []byte(m), nil
	default:
		b, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("invalid message format: %w", err)
		}
		return b, nil
	}
}
