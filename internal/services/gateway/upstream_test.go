package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestEventClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events/actions/latest" || r.URL.Query().Get("limit") != "5" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"action":"optimize","status":"OK","affected":48,"time":"2024-05-01T10:00:00Z"}]`))
	}))
	defer srv.Close()

	got, err := NewEventClient(srv.URL+"/", time.Second).RecentActions(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Action != "optimize" || got[0].Affected != 48 {
		t.Fatalf("got %+v", got)
	}
}

func TestEventClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"influx error header", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("X-Error", "influx-query-error")
			_, _ = w.Write([]byte("[]"))
		}},
		{"bad json", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("{")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			if _, err := NewEventClient(srv.URL, time.Second).RecentActions(context.Background(), 5); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
