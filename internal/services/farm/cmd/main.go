package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"
	"google.golang.org/grpc"

	"github.com/LeonardoBeccarini/spacefarm/internal/config"
	"github.com/LeonardoBeccarini/spacefarm/internal/rpc/farmrpc"
	"github.com/LeonardoBeccarini/spacefarm/internal/services/farm"
	"github.com/LeonardoBeccarini/spacefarm/internal/services/weather"
	"github.com/LeonardoBeccarini/spacefarm/internal/simulation"
	"github.com/LeonardoBeccarini/spacefarm/pkg/dedup"
	"github.com/LeonardoBeccarini/spacefarm/pkg/rabbitmq"
)

func echoLevel(s string) glog.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return glog.DEBUG
	case "warn":
		return glog.WARN
	case "error":
		return glog.ERROR
	case "off":
		return glog.OFF
	default:
		return glog.INFO
	}
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("farm: .env: %v", err)
	}

	cfgPath := flag.String("config", os.Getenv("FARM_CONFIG"), "optional YAML config file")
	useMQTT := flag.Bool("mqtt", true, "connect to the MQTT broker")
	fetchWeather := flag.Bool("weather", true, "seed the weather panel from NASA POWER")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("farm: %v", err)
	}
	seasonStart, seasonEnd, err := cfg.Season.Bounds()
	if err != nil {
		log.Fatalf("farm: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- simulation ----
	seed := cfg.Farm.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	gen := simulation.NewGenerator(rng, nil, cfg.Farm.Occupancy)

	svc := farm.NewFarmService(farm.Config{
		GridSize:        cfg.Farm.GridSize,
		WeatherDrift:    cfg.Timers.WeatherDrift,
		AutoIrrigation:  cfg.Timers.AutoIrrigation,
		Analysis:        cfg.Timers.Analysis,
		Snapshot:        cfg.Timers.Snapshot,
		NotificationTTL: cfg.Timers.NotificationTTL,
		SeasonStart:     seasonStart,
		SeasonEnd:       seasonEnd,
		Latitude:        cfg.Weather.Latitude,
		Longitude:       cfg.Weather.Longitude,
	}, gen, rng)

	metrics := farm.NewMetrics()
	svc.SetMetrics(metrics)

	if *fetchWeather {
		svc.SetWeatherFetcher(weather.NewProvider(weather.Options{
			BaseURL: cfg.Weather.PowerURL,
			Days:    cfg.Weather.Days,
			Timeout: cfg.Weather.Timeout,
		}))
		svc.SeedWeather(ctx)
	}

	store, err := farm.OpenScheduleStore(cfg.DB.Path)
	if err != nil {
		log.Fatalf("farm: schedule store: %v", err)
	}
	defer store.Close()

	// ---- MQTT ----
	if *useMQTT {
		client, err := rabbitmq.NewRabbitMQConn(&rabbitmq.RabbitMQConfig{
			Host:     cfg.MQTT.Host,
			Port:     cfg.MQTT.Port,
			User:     cfg.MQTT.User,
			Password: cfg.MQTT.Password,
			ClientID: cfg.MQTT.ClientID,
		}, ctx)
		if err != nil {
			log.Fatalf("farm: MQTT connect error: %v", err)
		}
		svc.SetPublisher(rabbitmq.NewPublisher(client, farm.SnapshotTopic))

		commands := farm.NewCommandHandler(svc, dedup.New(10*time.Minute, 20000))
		consumer := rabbitmq.NewConsumer(client, farm.CommandTopic, commands.Handle)
		go consumer.ConsumeMessage(ctx)
	}

	// ---- gRPC ----
	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		log.Fatalf("farm: listen %s: %v", cfg.GRPC.Addr, err)
	}
	grpcServer := grpc.NewServer()
	farmrpc.RegisterFarmControlServer(grpcServer, farm.NewGrpcHandler(svc))
	go func() {
		log.Printf("farm: gRPC listening on %s", cfg.GRPC.Addr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("farm: gRPC serve error: %v", err)
		}
	}()

	// ---- HTTP ----
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(echoLevel(os.Getenv("LOG_LEVEL")))
	e.Use(middleware.Recover())
	farm.NewAPI(svc, store, metrics).Register(e)
	go func() {
		log.Printf("farm: HTTP listening on %s", cfg.HTTP.Addr)
		if err := e.Start(cfg.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("farm: http server error: %v", err)
		}
	}()

	go svc.Start(ctx)

	// ---- graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	<-sigc
	log.Println("farm: shutting down...")
	cancel()

	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	_ = e.Shutdown(shCtx)
	grpcServer.GracefulStop()
}
