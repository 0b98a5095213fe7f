package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"google.golang.org/grpc"

	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
	"github.com/LeonardoBeccarini/spacefarm/internal/rpc/farmrpc"
)

// FarmClient is the part of farmrpc.Client the gateway needs.
type FarmClient interface {
	GetStats(ctx context.Context, opts ...grpc.CallOption) (entities.GridStats, error)
	ApplyAction(ctx context.Context, req farmrpc.ActionRequest, opts ...grpc.CallOption) (farmrpc.ActionReply, error)
}

// ActionSource returns the most recent actions.
type ActionSource interface {
	RecentActions(ctx context.Context, limit int) ([]Action, error)
}

// EventClient reads the action feed of the event service over REST.
type EventClient struct {
	base string
	http *http.Client
}

func NewEventClient(base string, timeout time.Duration) *EventClient {
	return &EventClient{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

func (c *EventClient) RecentActions(ctx context.Context, limit int) ([]Action, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	u := c.base + "/events/actions/latest?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s -> %s", u, res.Status)
	}
	// the event service answers [] with X-Error when Influx is unavailable
	if xe := res.Header.Get("X-Error"); xe != "" {
		return nil, fmt.Errorf("GET %s: %s", u, xe)
	}
	var out []Action
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode actions: %w", err)
	}
	return out, nil
}
