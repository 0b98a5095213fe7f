package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/LeonardoBeccarini/spacefarm/internal/rpc/farmrpc"
	"github.com/LeonardoBeccarini/spacefarm/internal/services/gateway"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("gateway: .env: %v", err)
	}
	cfg := loadConfig()

	conn, err := grpc.NewClient(cfg.FarmGRPCAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("gateway: grpc client %s: %v", cfg.FarmGRPCAddr, err)
	}
	defer conn.Close()

	timeout := ms(cfg.TimeoutMs)
	app := gateway.NewApp(
		farmrpc.NewClient(conn),
		gateway.NewEventClient(cfg.EventURL, timeout),
		gateway.Options{
			Timeout:     timeout,
			ActionLimit: cfg.ActionLimit,
			FarmCB:      cfg.FarmCB,
			EventCB:     cfg.EventCB,
		},
	)

	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("gateway: listening on %s (farm=%s events=%s)", hs.Addr, cfg.FarmGRPCAddr, cfg.EventURL)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("gateway: http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Printf("gateway: shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = hs.Shutdown(ctx)
}
