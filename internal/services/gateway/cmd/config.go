package main

import (
	"os"
	"strconv"
	"time"

	"github.com/LeonardoBeccarini/spacefarm/internal/services/gateway"
)

type Config struct {
	Port        string
	TimeoutMs   int
	ActionLimit int

	FarmGRPCAddr string // e.g. farm-service:50051
	EventURL     string // e.g. http://event-service:8081

	FarmCB  gateway.BreakerSettings
	EventCB gateway.BreakerSettings
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func loadConfig() Config {
	return Config{
		Port:        getenv("PORT", "5009"),
		TimeoutMs:   getenvInt("TIMEOUT_MS", 3000),
		ActionLimit: getenvInt("ACTION_LIMIT", 20),

		FarmGRPCAddr: getenv("FARM_GRPC_ADDR", "localhost:50051"),
		EventURL:     getenv("EVENT_URL", "http://localhost:8081"),

		FarmCB: gateway.BreakerSettings{
			Fails:    getenvInt("CB_FARM_FAILS", 3),
			Open:     ms(getenvInt("CB_FARM_OPEN_MS", 10000)),
			Interval: ms(getenvInt("CB_FARM_INTERVAL_MS", 60000)),
		},
		EventCB: gateway.BreakerSettings{
			Fails:    getenvInt("CB_EVENT_FAILS", 3),
			Open:     ms(getenvInt("CB_EVENT_OPEN_MS", 10000)),
			Interval: ms(getenvInt("CB_EVENT_INTERVAL_MS", 60000)),
		},
	}
}
