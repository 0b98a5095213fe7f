package simulation

import (
	"strings"

	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
)

const (
	colorCritical = "#C53030"
	colorRed      = "#E53E3E"
	colorOrange   = "#DD6B20"
	colorAmber    = "#D69E2E"
	colorGreen    = "#38A169"
	colorTeal     = "#00D4AA"
	colorBlue     = "#3182CE"

	noWaterLevel   = 15
	diseasedHealth = 20
)

const (
	StatusNoWater   = "Crítico - Sin Agua"
	StatusDiseased  = "Crítico - Enfermo"
	StatusVeryBad   = "Muy Malo"
	StatusBad       = "Malo"
	StatusFair      = "Regular"
	StatusGood      = "Bueno"
	StatusExcellent = "Excelente"

	RecommendFine = "✅ Planta en buen estado"
)

// band is one row of a threshold table: values strictly below limit match.
type band struct {
	limit float64
	value string
}

// pick returns the value of the first band whose limit exceeds v, else fallback.
func pick(bands []band, v float64, fallback string) string {
	for _, b := range bands {
		if v < b.limit {
			return b.value
		}
	}
	return fallback
}

var (
	statusBands = []band{{30, StatusVeryBad}, {50, StatusBad}, {70, StatusFair}, {85, StatusGood}}
	colorBands  = []band{{30, colorRed}, {50, colorOrange}, {70, colorAmber}, {85, colorGreen}}
	iconBands   = []band{{30, "💀"}, {50, "😷"}, {70, "😐"}, {85, "😊"}}

	waterColorBands  = []band{{15, colorCritical}, {25, colorRed}, {40, colorOrange}, {60, colorAmber}, {80, colorGreen}}
	waterClassBands  = []band{{15, "water-critical"}, {25, "water-very-low"}, {40, "water-low"}, {60, "water-medium"}, {80, "water-good"}}
	waterStatusBands = []band{{15, "Crítico"}, {25, "Muy Bajo"}, {40, "Bajo"}, {60, "Medio"}, {80, "Bueno"}}

	gaugeBands = []band{{25, colorRed}, {50, colorOrange}, {75, colorAmber}}
	cellBands  = []band{{25, "#1A365D"}, {50, "#2C5282"}, {75, colorBlue}}
	uvBands    = []band{{3, colorGreen}, {6, colorAmber}, {8, colorOrange}}
)

// Assessment is the full qualitative reading of one plant.
type Assessment struct {
	Status         string `json:"status"`
	Color          string `json:"color"`
	Icon           string `json:"icon"`
	Recommendation string `json:"recommendation"`
}

// Assess classifies a plant.
func Assess(p entities.Plant) Assessment {
	return Assessment{
		Status:         Status(p),
		Color:          StatusColor(p),
		Icon:           StatusIcon(p),
		Recommendation: Recommend(p),
	}
}

// Status gives priority to the critical conditions over the gauge average.
func Status(p entities.Plant) string {
	if p.WaterLevel < noWaterLevel {
		return StatusNoWater
	}
	if p.Health < diseasedHealth {
		return StatusDiseased
	}
	return pick(statusBands, p.AverageGauge(), StatusExcellent)
}

func StatusColor(p entities.Plant) string {
	if p.WaterLevel < noWaterLevel || p.Health < diseasedHealth {
		return colorCritical
	}
	return pick(colorBands, p.AverageGauge(), colorTeal)
}

func StatusIcon(p entities.Plant) string {
	if p.WaterLevel < noWaterLevel {
		return "🚨"
	}
	if p.Health < diseasedHealth {
		return "🦠"
	}
	return pick(iconBands, p.AverageGauge(), "🌟")
}

// Recommend returns the single most urgent advice for the plant.
func Recommend(p entities.Plant) string {
	switch {
	case p.WaterLevel < noWaterLevel:
		return "🚨 REGAR INMEDIATAMENTE"
	case p.WaterLevel < 30:
		return "💧 Regar pronto"
	case p.WaterLevel > 90:
		return "⚠️ Reducir riego"
	}
	switch {
	case p.Health < 25:
		return "🌿 Aplicar tratamiento"
	case p.Health < 50:
		return "🔍 Revisar plagas"
	}
	switch {
	case p.Growth < 30:
		return "🌱 Fertilizar"
	case p.Growth > 85:
		return "✂️ Considerar poda"
	}
	if r := cropRecommendation(p); r != "" {
		return r
	}
	return RecommendFine
}

func cropRecommendation(p entities.Plant) string {
	switch strings.ToLower(p.Type) {
	case strings.ToLower(entities.CropTomato):
		if p.WaterLevel > 80 && p.Health < 60 {
			return "🍅 Cuidado: tomates sensibles al exceso de agua"
		}
	case strings.ToLower(entities.CropLettuce):
		if p.Growth > 70 {
			return "🥬 Listo para cosecha pronto"
		}
	case strings.ToLower(entities.CropCarrot):
		if p.WaterLevel < 40 {
			return "🥕 Zanahorias necesitan riego constante"
		}
	case strings.ToLower(entities.CropPepper):
		if p.WaterLevel < 50 && p.Health > 70 {
			return "🌶️ Aumentar riego para mejor producción"
		}
	case strings.ToLower(entities.CropCorn):
		if p.WaterLevel < 60 {
			return "🌽 Maíz requiere mucha agua"
		}
	case strings.ToLower(entities.CropBroccoli):
		if p.Health < 60 {
			return "🥦 Brócoli sensible a temperaturas"
		}
	case strings.ToLower(entities.CropCucumber):
		if p.WaterLevel < 70 {
			return "🥒 Pepino necesita riego frecuente"
		}
	case strings.ToLower(entities.CropOnion):
		if p.WaterLevel > 75 {
			return "🧅 Cebolla prefiere suelo menos húmedo"
		}
	}
	return ""
}

// WaterLevelColor, WaterLevelClass and WaterLevelStatus share one band table.
func WaterLevelColor(level int) string {
	return pick(waterColorBands, float64(level), colorBlue)
}

func WaterLevelClass(level int) string {
	return pick(waterClassBands, float64(level), "water-high")
}

func WaterLevelStatus(level int) string {
	return pick(waterStatusBands, float64(level), "Alto")
}

func HealthColor(health int) string { return pick(gaugeBands, float64(health), colorGreen) }

func GrowthColor(growth int) string { return pick(gaugeBands, float64(growth), colorTeal) }

// CellColor shades a grid cell by water level; nil is an empty cell.
func CellColor(p *entities.Plant) string {
	if p == nil {
		return "#4A5568"
	}
	return pick(cellBands, float64(p.WaterLevel), "#63B3ED")
}

func UVIndexColor(uv float64) string { return pick(uvBands, uv, colorRed) }
