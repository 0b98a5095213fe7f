package event

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// ConnChecker is satisfied by mqtt.Client.
type ConnChecker interface {
	IsConnectionOpen() bool
}

// Pinger is satisfied by influxdb2.Client.
type Pinger interface {
	Ping(ctx context.Context) (bool, error)
}

const pingTimeout = time.Second

func influxUp(ctx context.Context, p Pinger) bool {
	if p == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	ok, err := p.Ping(ctx)
	return err == nil && ok
}

type healthHandler struct {
	mqtt   ConnChecker
	influx Pinger
	writer *Writer
}

func NewHealthHandler(m ConnChecker, i Pinger, w *Writer) http.Handler {
	return &healthHandler{mqtt: m, influx: i, writer: w}
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type status struct {
		Status          string  `json:"status"`
		MQTTConnected   bool    `json:"mqtt_connected"`
		InfluxOK        bool    `json:"influx_ok"`
		LastWriteErrorS float64 `json:"last_write_error_age_sec"`
		Actions         int64   `json:"actions_ingested"`
		Snapshots       int64   `json:"snapshots_ingested"`
	}
	age := h.writer.LastErrorAge()
	st := status{
		MQTTConnected:   h.mqtt != nil && h.mqtt.IsConnectionOpen(),
		InfluxOK:        influxUp(r.Context(), h.influx),
		LastWriteErrorS: age.Seconds(),
		Actions:         h.writer.Count(TypeAction),
		Snapshots:       h.writer.Count(TypeSnapshot),
	}

	switch {
	case st.MQTTConnected && st.InfluxOK && age > 30*time.Second:
		st.Status = "ok"
	case st.MQTTConnected || st.InfluxOK:
		st.Status = "degraded"
	default:
		st.Status = "down"
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(st)
}

// readyHandler answers 200 only when every dependency is up.
type readyHandler struct {
	mqtt     ConnChecker
	influx   Pinger
	writer   *Writer
	minError time.Duration
}

func NewReadyHandler(m ConnChecker, i Pinger, w *Writer, minOkErrorAge time.Duration) http.Handler {
	return &readyHandler{mqtt: m, influx: i, writer: w, minError: minOkErrorAge}
}

func (h *readyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ready := h.mqtt != nil && h.mqtt.IsConnectionOpen() &&
		influxUp(r.Context(), h.influx) &&
		h.writer.LastErrorAge() > h.minError
	w.Header().Set("Content-Type", "application/json")
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(struct {
		Ready bool `json:"ready"`
	}{Ready: ready})
}
