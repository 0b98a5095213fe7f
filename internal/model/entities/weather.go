package entities

// Weather is the ambient weather panel of the farm.
type Weather struct {
	Temperature   float64  `json:"temperature"` // °C
	Humidity      float64  `json:"humidity"`    // %
	WindSpeed     float64  `json:"wind_speed"`  // km/h
	UVIndex       float64  `json:"uv_index"`
	Pressure      float64  `json:"pressure"`   // hPa
	Visibility    float64  `json:"visibility"` // km
	Precipitation float64  `json:"precipitation"`
	Alerts        []string `json:"alerts,omitempty"`
}

// DefaultWeather is used whenever live weather data is not available.
func DefaultWeather() Weather {
	return Weather{
		Temperature: 24.2,
		Humidity:    68,
		WindSpeed:   12.3,
		UVIndex:     6.2,
		Pressure:    1013,
		Visibility:  15,
		Alerts:      []string{"Sequía prevista en 3 días", "Lluvia intensa el viernes"},
	}
}
