// Command operator-sim publishes random irrigation commands to the farm service.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	operatorSimulator "github.com/LeonardoBeccarini/spacefarm/internal/operator-simulator"
	"github.com/LeonardoBeccarini/spacefarm/pkg/rabbitmq"
)

func main() {
	clientID := flag.String("client-id", "operatorPublisher1", "MQTT client ID")
	host := flag.String("host", "localhost", "broker host")
	port := flag.Int("port", 1883, "broker port")
	interval := flag.Duration("interval", 15*time.Second, "publish interval")
	gridSize := flag.Int("grid-size", 8, "grid side length, used to pick plant ids")
	seed := flag.Int64("seed", 0, "random seed (0 = clock)")
	flag.Parse()

	cfg := &rabbitmq.RabbitMQConfig{
		Host:     *host,
		Port:     *port,
		User:     "guest",
		Password: "guest",
		ClientID: *clientID,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := rabbitmq.NewRabbitMQConn(cfg, ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer rabbitmq.CloseRabbitMQConn(client)

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	gen := operatorSimulator.NewCommandGenerator(rand.New(rand.NewSource(*seed)), *gridSize, nil)
	publisher := rabbitmq.NewPublisher(client, "farm/command")
	consumer := rabbitmq.NewConsumer(client, operatorSimulator.ResultTopic, nil)

	operatorSimulator.NewOperatorSimulator(consumer, publisher, gen).Start(ctx, *interval)
}
