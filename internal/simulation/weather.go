package simulation

import (
	"math"
	"math/rand"

	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
)

// bounds of the weather random walk
const (
	tempMin, tempMax         = 5.0, 45.0
	humidityMin, humidityMax = 20.0, 95.0
	windMin, windMax         = 0.0, 50.0
	uvMin, uvMax             = 0.0, 12.0

	tempStep     = 2.0
	humidityStep = 5.0
	windStep     = 3.0
	uvStep       = 0.5
)

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// DriftWeather applies one random-walk step to the ambient fields and
// clamps them to realistic bounds. The other fields are copied unchanged.
func DriftWeather(w entities.Weather, rng *rand.Rand) entities.Weather {
	step := func(size float64) float64 { return (rng.Float64() - 0.5) * size }

	w.Temperature = clamp(w.Temperature+step(tempStep), tempMin, tempMax)
	w.Humidity = clamp(w.Humidity+step(humidityStep), humidityMin, humidityMax)
	w.WindSpeed = clamp(w.WindSpeed+step(windStep), windMin, windMax)
	w.UVIndex = clamp(w.UVIndex+step(uvStep), uvMin, uvMax)
	return w
}
