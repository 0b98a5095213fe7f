package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
	"github.com/LeonardoBeccarini/spacefarm/internal/rpc/farmrpc"
)

type fakeFarm struct {
	mu       sync.Mutex
	stats    entities.GridStats
	statsErr error
	applyErr error
	last     farmrpc.ActionRequest
	calls    int
}

func (f *fakeFarm) GetStats(context.Context, ...grpc.CallOption) (entities.GridStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.stats, f.statsErr
}

func (f *fakeFarm) ApplyAction(_ context.Context, req farmrpc.ActionRequest, _ ...grpc.CallOption) (farmrpc.ActionReply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = req
	if f.applyErr != nil {
		return farmrpc.ActionReply{}, f.applyErr
	}
	return farmrpc.ActionReply{ActionID: "id-1", Action: req.Action, Status: "OK", Affected: 3, Stats: f.stats}, nil
}

func (f *fakeFarm) set(stats entities.GridStats, err error) {
	f.mu.Lock()
	f.stats, f.statsErr = stats, err
	f.mu.Unlock()
}

type fakeEvents struct {
	mu      sync.Mutex
	actions []Action
	err     error
}

func (f *fakeEvents) RecentActions(context.Context, int) ([]Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.actions, f.err
}

func (f *fakeEvents) set(a []Action, err error) {
	f.mu.Lock()
	f.actions, f.err = a, err
	f.mu.Unlock()
}

func newTestApp(farm *fakeFarm, events *fakeEvents) *App {
	cb := BreakerSettings{Fails: 2, Open: time.Minute}
	return NewApp(farm, events, Options{Timeout: time.Second, FarmCB: cb, EventCB: cb})
}

func getData(t *testing.T, h http.Handler) Payload {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/data", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var p Payload
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDashboardData(t *testing.T) {
	farm := &fakeFarm{stats: entities.GridStats{TotalPlants: 48, HealthyPlants: 30}}
	events := &fakeEvents{actions: []Action{{Action: "optimize", Status: "OK", Affected: 48}}}
	h := newTestApp(farm, events).Routes()

	p := getData(t, h)
	if p.Stats == nil || p.Stats.TotalPlants != 48 || p.StatsStale {
		t.Fatalf("stats = %+v stale=%v", p.Stats, p.StatsStale)
	}
	if len(p.Actions) != 1 || p.Actions[0].Action != "optimize" {
		t.Fatalf("actions = %+v", p.Actions)
	}
	if p.Breakers["farm-service"] != "closed" || p.Breakers["event-service"] != "closed" {
		t.Fatalf("breakers = %v", p.Breakers)
	}
}

func TestDashboardServesLastGood(t *testing.T) {
	farm := &fakeFarm{stats: entities.GridStats{TotalPlants: 10}}
	events := &fakeEvents{actions: []Action{{Action: "drain", Status: "OK", Affected: 2}}}
	h := newTestApp(farm, events).Routes()
	getData(t, h)

	farm.set(entities.GridStats{}, status.Error(codes.Unavailable, "down"))
	events.set(nil, errors.New("event service down"))

	p := getData(t, h)
	if p.Stats == nil || p.Stats.TotalPlants != 10 || !p.StatsStale {
		t.Fatalf("want cached stats, got %+v stale=%v", p.Stats, p.StatsStale)
	}
	if len(p.Actions) != 1 || p.Actions[0].Action != "drain" {
		t.Fatalf("want cached actions, got %+v", p.Actions)
	}

	// second failure trips both breakers
	p = getData(t, h)
	if p.Breakers["farm-service"] != "open" || p.Breakers["event-service"] != "open" {
		t.Fatalf("breakers = %v", p.Breakers)
	}

	// open breaker short-circuits the upstream
	before := farm.calls
	getData(t, h)
	if farm.calls != before {
		t.Fatalf("farm called while breaker open")
	}
}

func TestDashboardNoCache(t *testing.T) {
	farm := &fakeFarm{statsErr: errors.New("down")}
	events := &fakeEvents{err: errors.New("down")}
	p := getData(t, newTestApp(farm, events).Routes())
	if p.Stats != nil || !p.StatsStale {
		t.Fatalf("stats = %+v stale=%v", p.Stats, p.StatsStale)
	}
	if p.Actions == nil || len(p.Actions) != 0 {
		t.Fatalf("actions = %#v", p.Actions)
	}
}

func TestDashboardAction(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		applyErr error
		want     int
	}{
		{"ok", http.MethodPost, "/dashboard/actions/optimize", nil, http.StatusOK},
		{"with plant", http.MethodPost, "/dashboard/actions/water?plant_id=5", nil, http.StatusOK},
		{"bad plant", http.MethodPost, "/dashboard/actions/water?plant_id=x", nil, http.StatusBadRequest},
		{"missing action", http.MethodPost, "/dashboard/actions/", nil, http.StatusBadRequest},
		{"wrong method", http.MethodGet, "/dashboard/actions/optimize", nil, http.StatusMethodNotAllowed},
		{"unknown action", http.MethodPost, "/dashboard/actions/bogus", status.Error(codes.InvalidArgument, "unknown action"), http.StatusBadRequest},
		{"not found", http.MethodPost, "/dashboard/actions/water?plant_id=999", status.Error(codes.NotFound, "plant not found"), http.StatusNotFound},
		{"no selection", http.MethodPost, "/dashboard/actions/water", status.Error(codes.FailedPrecondition, "no plant selected"), http.StatusConflict},
		{"upstream down", http.MethodPost, "/dashboard/actions/optimize", status.Error(codes.Unavailable, "down"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			farm := &fakeFarm{applyErr: tt.applyErr}
			h := newTestApp(farm, &fakeEvents{}).Routes()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestDashboardActionForwardsPlant(t *testing.T) {
	farm := &fakeFarm{}
	h := newTestApp(farm, &fakeEvents{}).Routes()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/dashboard/actions/water?plant_id=7", nil))

	if farm.last.Action != "water" || farm.last.PlantID == nil || *farm.last.PlantID != 7 {
		t.Fatalf("request = %+v", farm.last)
	}
	var rep farmrpc.ActionReply
	if err := json.NewDecoder(rec.Body).Decode(&rep); err != nil {
		t.Fatal(err)
	}
	if rep.Status != "OK" || rep.Affected != 3 {
		t.Fatalf("reply = %+v", rep)
	}
}

func TestCallerErrorsDoNotTripBreaker(t *testing.T) {
	farm := &fakeFarm{applyErr: status.Error(codes.InvalidArgument, "unknown action")}
	a := newTestApp(farm, &fakeEvents{})
	h := a.Routes()
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/dashboard/actions/bogus", nil))
	}
	if a.farmCB.State().String() != "closed" {
		t.Fatalf("breaker = %s", a.farmCB.State())
	}
}
