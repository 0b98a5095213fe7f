// Package gateway composes the dashboard view from the farm service (gRPC)
// and the event service (REST), each behind its own circuit breaker.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
	"github.com/LeonardoBeccarini/spacefarm/internal/rpc/farmrpc"
)

// BreakerSettings configures one upstream breaker.
type BreakerSettings struct {
	Fails    int
	Open     time.Duration
	Interval time.Duration
}

func newBreaker(name string, s BreakerSettings) *gobreaker.CircuitBreaker {
	fails := s.Fails
	if fails <= 0 {
		fails = 3
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: s.Interval,
		Timeout:  s.Open,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(fails)
		},
		IsSuccessful: func(err error) bool {
			var ce *callerError
			return err == nil || errors.As(err, &ce)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("gateway: breaker %s %s -> %s", name, from, to)
		},
	})
}

type Options struct {
	Timeout     time.Duration
	ActionLimit int
	FarmCB      BreakerSettings
	EventCB     BreakerSettings
}

// App serves the dashboard endpoints.
type App struct {
	farm   FarmClient
	events ActionSource
	opts   Options

	farmCB  *gobreaker.CircuitBreaker
	eventCB *gobreaker.CircuitBreaker

	mu          sync.RWMutex
	lastStats   *entities.GridStats
	lastActions []Action
}

func NewApp(farm FarmClient, events ActionSource, opts Options) *App {
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	if opts.ActionLimit <= 0 {
		opts.ActionLimit = 20
	}
	return &App{
		farm:    farm,
		events:  events,
		opts:    opts,
		farmCB:  newBreaker("farm-service", opts.FarmCB),
		eventCB: newBreaker("event-service", opts.EventCB),
	}
}

func (a *App) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/dashboard/data", a.handleData)
	mux.HandleFunc("/dashboard/actions/", a.handleAction)
	return mux
}

func (a *App) stats(ctx context.Context) (*entities.GridStats, bool) {
	res, err := a.farmCB.Execute(func() (interface{}, error) {
		s, err := a.farm.GetStats(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
	if err == nil {
		s := res.(entities.GridStats)
		a.mu.Lock()
		a.lastStats = &s
		a.mu.Unlock()
		return &s, false
	}
	log.Printf("gateway: stats: %v", err)
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.lastStats == nil {
		return nil, true
	}
	s := *a.lastStats
	return &s, true
}

func (a *App) actions(ctx context.Context) []Action {
	res, err := a.eventCB.Execute(func() (interface{}, error) {
		ev, err := a.events.RecentActions(ctx, a.opts.ActionLimit)
		if err != nil {
			return nil, err
		}
		return ev, nil
	})
	if err == nil {
		ev := res.([]Action)
		a.mu.Lock()
		a.lastActions = ev
		a.mu.Unlock()
		return ev
	}
	log.Printf("gateway: actions: %v", err)
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastActions
}

func (a *App) handleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), a.opts.Timeout)
	defer cancel()

	var (
		wg      sync.WaitGroup
		stats   *entities.GridStats
		stale   bool
		actions []Action
	)
	wg.Add(2)
	go func() { defer wg.Done(); stats, stale = a.stats(ctx) }()
	go func() { defer wg.Done(); actions = a.actions(ctx) }()
	wg.Wait()

	if actions == nil {
		actions = []Action{}
	}
	resp := Payload{
		Stats:      stats,
		StatsStale: stale,
		Actions:    actions,
		Breakers: map[string]string{
			a.farmCB.Name():  a.farmCB.State().String(),
			a.eventCB.Name(): a.eventCB.State().String(),
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)

	log.Printf("gateway: GET /dashboard/data [%dms] cb[farm]=%v cb[event]=%v actions=%d",
		time.Since(start).Milliseconds(), a.farmCB.State(), a.eventCB.State(), len(actions))
}

// handleAction forwards POST /dashboard/actions/{action}[?plant_id=N] to the farm.
func (a *App) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	action := strings.Trim(strings.TrimPrefix(r.URL.Path, "/dashboard/actions/"), "/")
	if action == "" {
		writeError(w, http.StatusBadRequest, "missing action")
		return
	}
	req := farmrpc.ActionRequest{Action: action}
	if v := strings.TrimSpace(r.URL.Query().Get("plant_id")); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid plant_id")
			return
		}
		req.PlantID = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.opts.Timeout)
	defer cancel()
	res, err := a.farmCB.Execute(func() (interface{}, error) {
		rep, err := a.farm.ApplyAction(ctx, req)
		if err != nil && !countsAsFailure(err) {
			// caller errors must not trip the breaker
			return rep, &callerError{err}
		}
		return rep, err
	})
	var ce *callerError
	switch {
	case errors.As(err, &ce):
		writeError(w, httpStatus(ce.err), status.Convert(ce.err).Message())
		return
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res.(farmrpc.ActionReply))
}

type callerError struct{ err error }

func (e *callerError) Error() string { return e.err.Error() }

func countsAsFailure(err error) bool {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.NotFound, codes.FailedPrecondition:
		return false
	}
	return true
}

func httpStatus(err error) int {
	switch status.Code(err) {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.FailedPrecondition:
		return http.StatusConflict
	}
	return http.StatusBadGateway
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
