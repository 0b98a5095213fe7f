package simulation

import (
	"fmt"
	"math"
	"time"

	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
)

const (
	highUVIndex     = 8
	lowSoilMoisture = 30
)

// Recommendations turns the grid statistics into the dashboard advice records.
func Recommendations(s entities.GridStats) []entities.AIRecommendation {
	return []entities.AIRecommendation{
		{
			Type:       entities.RecommendWarning,
			Message:    fmt.Sprintf("%d plantas requieren atención inmediata", s.CriticalPlants),
			Priority:   1,
			Confidence: 0.89,
		},
		{
			Type:       entities.RecommendInfo,
			Message:    fmt.Sprintf("Eficiencia de agua actual: %d%%", s.WaterEfficiency),
			Priority:   2,
			Confidence: 0.95,
		},
	}
}

// Insights are the one-line summaries shown next to the recommendations.
func Insights(s entities.GridStats) []string {
	return []string{
		fmt.Sprintf("Nivel promedio de agua: %.1f%%", s.AverageWaterLevel),
		fmt.Sprintf("%d plantas en estado óptimo", s.HealthyPlants),
		fmt.Sprintf("%d plantas requieren atención", s.CriticalPlants),
		fmt.Sprintf("Próxima cosecha en %d días", s.DaysToNextHarvest),
	}
}

// MoistureAdvisories flags a grid whose average water level is critically low.
func MoistureAdvisories(s entities.GridStats) []entities.AIRecommendation {
	if s.TotalPlants == 0 || s.AverageWaterLevel >= lowSoilMoisture {
		return nil
	}
	return []entities.AIRecommendation{{
		Type:       entities.RecommendWarning,
		Message:    "Niveles críticos de humedad del suelo detectados. Riego inmediato recomendado.",
		Priority:   1,
		Confidence: 0.92,
	}}
}

// WeatherAdvisories flags weather conditions that stress the crops.
func WeatherAdvisories(w entities.Weather) []entities.AIRecommendation {
	var out []entities.AIRecommendation
	if w.UVIndex > highUVIndex {
		out = append(out, entities.AIRecommendation{
			Type:       entities.RecommendWarning,
			Message:    "Alto índice UV puede causar estrés en plantas. Considerar sombreado.",
			Priority:   2,
			Confidence: 0.78,
		})
	}
	return out
}

// Season describes how far the growing season has advanced.
type Season struct {
	Progress   float64 `json:"progress"` // percent in [0,100]
	CurrentDay int     `json:"current_day"`
	TotalDays  int     `json:"total_days"`
}

func daysCeil(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}

// SeasonProgress places now inside the [start,end] season.
func SeasonProgress(now, start, end time.Time) Season {
	total := daysCeil(end.Sub(start))
	passed := daysCeil(now.Sub(start))
	s := Season{TotalDays: total, CurrentDay: max(1, passed)}
	if total > 0 {
		s.Progress = clamp(float64(passed)/float64(total)*100, 0, 100)
	}
	return s
}

// Analysis bundles everything the periodic analysis produces.
type Analysis struct {
	Recommendations []entities.AIRecommendation `json:"recommendations"`
	Insights        []string                    `json:"insights"`
	Season          Season                      `json:"season"`
	At              time.Time                   `json:"at"`
}

// Analyze runs the threshold analysis on a state snapshot.
func Analyze(s State, now, seasonStart, seasonEnd time.Time) Analysis {
	stats := s.Stats()
	recs := Recommendations(stats)
	recs = append(recs, MoistureAdvisories(stats)...)
	recs = append(recs, WeatherAdvisories(s.Weather)...)
	return Analysis{
		Recommendations: recs,
		Insights:        Insights(stats),
		Season:          SeasonProgress(now, seasonStart, seasonEnd),
		At:              now,
	}
}
