// Package weather fetches the farm weather panel from the NASA POWER daily point API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
)

const (
	DefaultPowerURL = "https://power.larc.nasa.gov/api/temporal/daily/point"

	parameters = "T2M,RH2M,WS10M,ALLSKY_SFC_UVA,PS,PRECTOTCORR"
	dayLayout  = "20060102"

	// POWER marks missing samples with this value.
	fillValue = -999.0

	// not reported by POWER
	defaultVisibility = 15.0

	heavyRainMM   = 10.0
	dryDayMM      = 1.0
	droughtDryDay = 5
)

var ErrNoData = errors.New("weather: no daily data")

// Fetcher is implemented by Provider; the farm depends on this.
type Fetcher interface {
	Current(ctx context.Context, lat, lon float64) (entities.Weather, error)
}

type Options struct {
	BaseURL    string
	Days       int // lookback window
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
}

// Provider queries POWER with retries behind a circuit breaker.
type Provider struct {
	baseURL    string
	days       int
	maxRetries int
	hc         *http.Client
	cb         *gobreaker.CircuitBreaker
	now        func() time.Time
	newBackOff func() backoff.BackOff
}

func NewProvider(o Options) *Provider {
	if o.BaseURL == "" {
		o.BaseURL = DefaultPowerURL
	}
	if o.Days <= 0 {
		o.Days = 7
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	return &Provider{
		baseURL:    o.BaseURL,
		days:       o.Days,
		maxRetries: o.MaxRetries,
		hc:         hc,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "nasa-power",
			Timeout: 60 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
		}),
		now: time.Now,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 500 * time.Millisecond
			bo.MaxElapsedTime = 15 * time.Second
			return bo
		},
	}
}

type powerResponse struct {
	Properties struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
}

// statusError is an unexpected HTTP status from POWER.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("power status %d: %s", e.code, e.body)
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// Current returns the latest complete day of the lookback window.
func (p *Provider) Current(ctx context.Context, lat, lon float64) (entities.Weather, error) {
	res, err := p.cb.Execute(func() (interface{}, error) {
		return p.fetchWithRetry(ctx, lat, lon)
	})
	if err != nil {
		return entities.Weather{}, err
	}
	return res.(entities.Weather), nil
}

func (p *Provider) fetchWithRetry(ctx context.Context, lat, lon float64) (entities.Weather, error) {
	var out entities.Weather
	op := func() error {
		w, err := p.fetch(ctx, lat, lon)
		if err != nil {
			var se *statusError
			if errors.As(err, &se) && !retryable(se.code) {
				return backoff.Permanent(err)
			}
			if errors.Is(err, ErrNoData) {
				return backoff.Permanent(err)
			}
			return err
		}
		out = w
		return nil
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(p.newBackOff(), uint64(p.maxRetries)), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return entities.Weather{}, err
	}
	return out, nil
}

func (p *Provider) requestURL(lat, lon float64) string {
	now := p.now().UTC()
	q := url.Values{}
	q.Set("parameters", parameters)
	q.Set("community", "AG")
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("start", now.AddDate(0, 0, -p.days).Format(dayLayout))
	q.Set("end", now.Format(dayLayout))
	q.Set("format", "JSON")
	return p.baseURL + "?" + q.Encode()
}

func (p *Provider) fetch(ctx context.Context, lat, lon float64) (entities.Weather, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.requestURL(lat, lon), nil)
	if err != nil {
		return entities.Weather{}, err
	}
	resp, err := p.hc.Do(req)
	if err != nil {
		return entities.Weather{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return entities.Weather{}, &statusError{code: resp.StatusCode, body: string(b)}
	}
	var pr powerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return entities.Weather{}, fmt.Errorf("power decode: %w", err)
	}
	return parse(pr.Properties.Parameter)
}

// parse picks the latest day with a temperature sample.
func parse(params map[string]map[string]float64) (entities.Weather, error) {
	t2m := params["T2M"]
	days := make([]string, 0, len(t2m))
	for d, v := range t2m {
		if v != fillValue {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return entities.Weather{}, ErrNoData
	}
	sort.Strings(days)
	latest := days[len(days)-1]

	get := func(name string) float64 {
		v, ok := params[name][latest]
		if !ok || v == fillValue {
			return 0
		}
		return v
	}
	w := entities.Weather{
		Temperature:   get("T2M"),
		Humidity:      get("RH2M"),
		WindSpeed:     get("WS10M"),
		UVIndex:       get("ALLSKY_SFC_UVA") / 100,
		Pressure:      get("PS"),
		Visibility:    defaultVisibility,
		Precipitation: get("PRECTOTCORR"),
	}
	w.Alerts = alerts(w, params["PRECTOTCORR"])
	return w, nil
}

func alerts(w entities.Weather, rain map[string]float64) []string {
	out := []string{}
	if w.Precipitation > heavyRainMM {
		out = append(out, fmt.Sprintf("Lluvia intensa registrada: %.1f mm", w.Precipitation))
	}
	dry := 0
	for _, v := range rain {
		if v != fillValue && v < dryDayMM {
			dry++
		}
	}
	if dry > droughtDryDay {
		out = append(out, fmt.Sprintf("Riesgo de sequía: %d días sin lluvia", dry))
	}
	return out
}
