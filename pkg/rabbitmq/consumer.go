package rabbitmq

import (
	"context"
	"log"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Handler processes one message received on the subscribed topic filter.
type Handler func(topic string, message mqtt.Message) error

// IConsumer subscribes and dispatches until the context is cancelled.
type IConsumer interface {
	ConsumeMessage(ctx context.Context)
	SetHandler(handler Handler)
}

// at-least-once topics; everything else is fire and forget
var qos1Prefixes = []string{
	"farm/command",
	"event/irrigationAction",
}

func qosFor(topic string) byte {
	t := strings.TrimSpace(topic)
	for _, p := range qos1Prefixes {
		if strings.HasPrefix(t, p) {
			return 1
		}
	}
	return 0
}

// QoSFor exposes the per-topic QoS used by consumers and publishers.
func QoSFor(topic string) byte { return qosFor(topic) }

// Consumer subscribes one or more topic filters with a single handler.
type Consumer struct {
	client  mqtt.Client
	topics  []string
	handler Handler
}

func NewConsumer(client mqtt.Client, topic string, handler Handler) *Consumer {
	return NewMultiConsumer(client, []string{topic}, handler)
}

func NewMultiConsumer(client mqtt.Client, topics []string, handler Handler) *Consumer {
	return &Consumer{client: client, topics: topics, handler: handler}
}

func (c *Consumer) SetHandler(handler Handler) {
	c.handler = handler
}

// ConsumeMessage blocks until ctx is cancelled, then unsubscribes.
func (c *Consumer) ConsumeMessage(ctx context.Context) {
	var subscribed []string
	for _, topic := range c.topics {
		if strings.TrimSpace(topic) == "" {
			continue
		}
		token := c.client.Subscribe(topic, qosFor(topic), func(_ mqtt.Client, msg mqtt.Message) {
			c.dispatch(topic, msg)
		})
		if token.Wait() && token.Error() != nil {
			log.Printf("mqtt: subscribe %s: %v", topic, token.Error())
			continue
		}
		log.Printf("mqtt: subscribed to %s", topic)
		subscribed = append(subscribed, topic)
	}

	<-ctx.Done()

	if len(subscribed) > 0 {
		c.client.Unsubscribe(subscribed...).Wait()
	}
}

func (c *Consumer) dispatch(topic string, msg mqtt.Message) {
	if c.handler == nil {
		log.Printf("mqtt: no handler set for topic %s", topic)
		return
	}
	if err := c.handler(msg.Topic(), msg); err != nil {
		log.Printf("mqtt: error handling message on %s: %v", msg.Topic(), err)
	}
}
