package farm

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LeonardoBeccarini/spacefarm/internal/model"
	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
	"github.com/LeonardoBeccarini/spacefarm/internal/simulation"
)

const namespace = "spacefarm"

// Metrics exports the grid statistics and the weather panel.
type Metrics struct {
	registry *prometheus.Registry

	plants      *prometheus.GaugeVec
	avgWater    prometheus.Gauge
	harvest     prometheus.Gauge
	nextHarvest prometheus.Gauge
	efficiency  prometheus.Gauge
	autoMode    prometheus.Gauge
	weather     *prometheus.GaugeVec
	actions     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		plants: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "plants",
			Help: "Plants on the grid by class.",
		}, []string{"class"}),
		avgWater: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "average_water_level_percent",
			Help: "Mean water level of the grid.",
		}),
		harvest: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "estimated_harvest_kg_m2",
			Help: "Sum of expected yields.",
		}),
		nextHarvest: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "days_to_next_harvest",
			Help: "Days until the earliest harvest.",
		}),
		efficiency: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "water_efficiency_percent",
			Help: "Water efficiency score.",
		}),
		autoMode: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "auto_mode",
			Help: "1 when auto-irrigation is enabled.",
		}),
		weather: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "weather",
			Help: "Weather panel readings by field.",
		}, []string{"field"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "actions_total",
			Help: "Irrigation actions by name and status.",
		}, []string{"action", "status"}),
	}
	m.registry.MustRegister(
		m.plants, m.avgWater, m.harvest, m.nextHarvest, m.efficiency,
		m.autoMode, m.weather, m.actions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Observe sets every gauge from a fresh reading.
func (m *Metrics) Observe(s entities.GridStats, w entities.Weather, autoMode bool) {
	m.plants.WithLabelValues("total").Set(float64(s.TotalPlants))
	m.plants.WithLabelValues("healthy").Set(float64(s.HealthyPlants))
	m.plants.WithLabelValues("critical").Set(float64(s.CriticalPlants))
	m.avgWater.Set(s.AverageWaterLevel)
	m.harvest.Set(s.EstimatedHarvest)
	m.nextHarvest.Set(float64(s.DaysToNextHarvest))
	m.efficiency.Set(float64(s.WaterEfficiency))

	m.weather.WithLabelValues("temperature").Set(w.Temperature)
	m.weather.WithLabelValues("humidity").Set(w.Humidity)
	m.weather.WithLabelValues("wind_speed").Set(w.WindSpeed)
	m.weather.WithLabelValues("uv_index").Set(w.UVIndex)
	m.weather.WithLabelValues("pressure").Set(w.Pressure)
	m.weather.WithLabelValues("precipitation").Set(w.Precipitation)

	if autoMode {
		m.autoMode.Set(1)
	} else {
		m.autoMode.Set(0)
	}
}

// countAction is safe on a nil receiver.
func (m *Metrics) countAction(a simulation.Action, err error) {
	if m == nil {
		return
	}
	status := model.StatusOK
	if err != nil {
		status = model.StatusFail
	}
	m.actions.WithLabelValues(string(a), status).Inc()
}
