package simulation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
)

func TestDriftWeatherStaysBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	w := entities.DefaultWeather()
	for i := 0; i < 5000; i++ {
		prev := w
		w = DriftWeather(w, rng)
		if w.Temperature < tempMin || w.Temperature > tempMax ||
			w.Humidity < humidityMin || w.Humidity > humidityMax ||
			w.WindSpeed < windMin || w.WindSpeed > windMax ||
			w.UVIndex < uvMin || w.UVIndex > uvMax {
			t.Fatalf("step %d: weather out of bounds: %+v", i, w)
		}
		if math.Abs(w.Temperature-prev.Temperature) > tempStep/2 {
			t.Fatalf("step %d: temperature jumped %v -> %v", i, prev.Temperature, w.Temperature)
		}
		if w.Pressure != prev.Pressure || w.Visibility != prev.Visibility {
			t.Fatalf("step %d: static fields changed", i)
		}
	}
}

func TestDriftWeatherClampsExtremes(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	w := entities.Weather{Temperature: 80, Humidity: 0, WindSpeed: -3, UVIndex: 20}
	w = DriftWeather(w, rng)
	if w.Temperature != tempMax || w.Humidity != humidityMin || w.WindSpeed != windMin || w.UVIndex != uvMax {
		t.Errorf("extremes not clamped: %+v", w)
	}
}
