package farm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
)

func newTestAPI(t *testing.T, plants ...entities.Plant) (*echo.Echo, *FarmService) {
	t.Helper()
	svc, _, _ := newTestService(t, plants...)
	m := NewMetrics()
	svc.SetMetrics(m)
	e := echo.New()
	NewAPI(svc, openTestStore(t), m).Register(e)
	return e, svc
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAPIStatusCodes(t *testing.T) {
	e, _ := newTestAPI(t, testPlant(0, 95, 50, 50), testPlant(1, 10, 50, 50))
	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/grid", "", http.StatusOK},
		{http.MethodGet, "/plants/1", "", http.StatusOK},
		{http.MethodGet, "/plants/42", "", http.StatusNotFound},
		{http.MethodGet, "/plants/abc", "", http.StatusBadRequest},
		{http.MethodPost, "/actions/manual", "", http.StatusConflict},
		{http.MethodPost, "/actions/cosechar", "", http.StatusBadRequest},
		{http.MethodPost, "/actions/drenaje", "", http.StatusOK},
		{http.MethodPost, "/actions/manual", `{"plant_id": 7}`, http.StatusNotFound},
		{http.MethodPost, "/plants/1/water", "", http.StatusOK},
		{http.MethodPost, "/plants/42/select", "", http.StatusNotFound},
		{http.MethodPost, "/schedules", `{"type":"manual","frequency":"daily","start_time":"07:00","duration":20}`, http.StatusCreated},
		{http.MethodPost, "/schedules", `{"type":"manual","frequency":"yearly","start_time":"07:00","duration":20}`, http.StatusBadRequest},
		{http.MethodGet, "/schedules", "", http.StatusOK},
		{http.MethodGet, "/stats", "", http.StatusOK},
		{http.MethodGet, "/weather", "", http.StatusOK},
		{http.MethodGet, "/analysis", "", http.StatusOK},
		{http.MethodGet, "/notifications", "", http.StatusOK},
		{http.MethodPost, "/grid/regenerate", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			if rec := do(e, tt.method, tt.path, tt.body); rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestAPIAction(t *testing.T) {
	e, svc := newTestAPI(t, testPlant(0, 95, 50, 50), testPlant(1, 10, 50, 50))

	rec := do(e, http.MethodPost, "/actions/manual", `{"plant_id": 1, "action_id": "ui-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var res ActionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.ActionID != "ui-1" || res.Affected != 1 || res.Stats.TotalPlants != 2 {
		t.Errorf("result = %+v", res)
	}
	if d, _ := svc.Plant(1); d.WaterLevel != 30 {
		t.Errorf("plant 1 water = %d, want 30", d.WaterLevel)
	}

	rec = do(e, http.MethodGet, "/notifications", "")
	var notes []struct {
		Type string `json:"type"`
		Icon string `json:"icon"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &notes); err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].Type != "success" || notes[0].Icon != "✅" {
		t.Errorf("notifications = %+v", notes)
	}
}

func TestAPIPlantDetail(t *testing.T) {
	e, _ := newTestAPI(t, testPlant(5, 10, 90, 90))
	rec := do(e, http.MethodGet, "/plants/5", "")
	var d PlantDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatal(err)
	}
	if d.ID != 5 || d.Icon != "🍅" || d.WaterStatus != "Crítico" || d.Assessment.Status != "Crítico - Sin Agua" {
		t.Errorf("detail = %+v", d)
	}
}

func TestAPIReportsAndMetrics(t *testing.T) {
	e, _ := newTestAPI(t, testPlant(0, 50, 50, 50))

	rec := do(e, http.MethodGet, "/grid.csv", "")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "id,row,col") {
		t.Errorf("csv = %d %q", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, ".csv") {
		t.Errorf("content disposition = %q", cd)
	}

	rec = do(e, http.MethodGet, "/grid.xlsx", "")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "PK") {
		t.Errorf("xlsx = %d", rec.Code)
	}

	_ = do(e, http.MethodPost, "/actions/goteo", "")
	rec = do(e, http.MethodGet, "/metrics", "")
	if !strings.Contains(rec.Body.String(), `spacefarm_actions_total{action="drip",status="OK"} 1`) {
		t.Errorf("metrics lack the drip counter:\n%s", rec.Body.String())
	}
}

func TestAPISelectThenManual(t *testing.T) {
	e, svc := newTestAPI(t, testPlant(0, 95, 50, 50), testPlant(1, 10, 50, 50))

	if rec := do(e, http.MethodPost, "/plants/1/select", ""); rec.Code != http.StatusOK {
		t.Fatalf("select: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, http.MethodPost, "/actions/manual", ""); rec.Code != http.StatusOK {
		t.Fatalf("manual: %d %s", rec.Code, rec.Body.String())
	}
	d, err := svc.Plant(1)
	if err != nil {
		t.Fatal(err)
	}
	if d.Plant.WaterLevel != 30 {
		t.Fatalf("water = %d, want 30", d.Plant.WaterLevel)
	}
}
