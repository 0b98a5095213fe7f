package farm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LeonardoBeccarini/spacefarm/internal/model"
	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
	"github.com/LeonardoBeccarini/spacefarm/internal/services/weather"
	"github.com/LeonardoBeccarini/spacefarm/internal/simulation"
	"github.com/LeonardoBeccarini/spacefarm/pkg/rabbitmq"
)

var (
	ErrPlantNotFound   = errors.New("plant not found")
	ErrNoPlantSelected = errors.New("no plant selected")
)

const (
	SnapshotTopic     = "farm/snapshot"
	CommandTopic      = "farm/command/#"
	actionTopicPrefix = "event/irrigationAction/"
)

// ActionTopic is the topic an action result is published on.
func ActionTopic(a simulation.Action) string { return actionTopicPrefix + string(a) }

type Config struct {
	GridSize        int
	WeatherDrift    time.Duration
	AutoIrrigation  time.Duration
	Analysis        time.Duration
	Snapshot        time.Duration
	NotificationTTL time.Duration

	SeasonStart time.Time
	SeasonEnd   time.Time

	Latitude  float64
	Longitude float64
}

func DefaultConfig() Config {
	return Config{
		GridSize:        simulation.DefaultGridSize,
		WeatherDrift:    30 * time.Second,
		AutoIrrigation:  10 * time.Minute,
		Analysis:        5 * time.Minute,
		Snapshot:        10 * time.Second,
		NotificationTTL: 5 * time.Second,
		SeasonStart:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		SeasonEnd:       time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC),
	}
}

// ActionResult is what an operator invocation reports back.
type ActionResult struct {
	ActionID string             `json:"action_id"`
	Action   simulation.Action  `json:"action"`
	Affected int                `json:"affected"`
	Message  string             `json:"message"`
	AutoMode bool               `json:"auto_mode"`
	Stats    entities.GridStats `json:"stats"`
}

// PlantDetail is a plant together with its classification.
type PlantDetail struct {
	entities.Plant
	Icon        string                `json:"icon"`
	WaterStatus string                `json:"water_status"`
	WaterClass  string                `json:"water_class"`
	WaterColor  string                `json:"water_color"`
	HealthColor string                `json:"health_color"`
	GrowthColor string                `json:"growth_color"`
	Assessment  simulation.Assessment `json:"assessment"`
}

// FarmService owns the simulation state. Every mutation happens under mu.
type FarmService struct {
	cfg Config

	mu       sync.Mutex
	state    *simulation.State
	gen      *simulation.Generator
	rng      *rand.Rand
	autoMode bool
	selected *int
	notes    []entities.Notification
	analysis simulation.Analysis

	publisher rabbitmq.IPublisher
	weather   weather.Fetcher
	metrics   *Metrics

	now func() time.Time
}

// NewFarmService generates the initial grid. gen and rng must share nothing
// with other goroutines: the service serializes their use.
func NewFarmService(cfg Config, gen *simulation.Generator, rng *rand.Rand) *FarmService {
	s := &FarmService{
		cfg:   cfg,
		state: simulation.NewState(gen, cfg.GridSize),
		gen:   gen,
		rng:   rng,
		now:   time.Now,
	}
	s.addNoteLocked(entities.NotifyInfo, "Sistema de riego iniciado correctamente")
	return s
}

func (s *FarmService) SetPublisher(p rabbitmq.IPublisher) { s.publisher = p }

func (s *FarmService) SetWeatherFetcher(f weather.Fetcher) { s.weather = f }

func (s *FarmService) SetMetrics(m *Metrics) {
	s.metrics = m
	s.mu.Lock()
	s.observeLocked()
	s.mu.Unlock()
}

// ====== reads ======

func (s *FarmService) GridSize() int { return s.state.GridSize }

func (s *FarmService) Plants() []entities.Plant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.Plant(nil), s.state.Plants...)
}

func (s *FarmService) Plant(id int) (PlantDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.state.Plant(id)
	if p == nil {
		return PlantDetail{}, fmt.Errorf("%w: %d", ErrPlantNotFound, id)
	}
	return detail(*p), nil
}

func detail(p entities.Plant) PlantDetail {
	return PlantDetail{
		Plant:       p,
		Icon:        entities.CropIcon(p.Type),
		WaterStatus: simulation.WaterLevelStatus(p.WaterLevel),
		WaterClass:  simulation.WaterLevelClass(p.WaterLevel),
		WaterColor:  simulation.WaterLevelColor(p.WaterLevel),
		HealthColor: simulation.HealthColor(p.Health),
		GrowthColor: simulation.GrowthColor(p.Growth),
		Assessment:  simulation.Assess(p),
	}
}

func (s *FarmService) Stats() entities.GridStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Stats()
}

func (s *FarmService) Weather() entities.Weather {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weatherLocked()
}

// weatherLocked copies the weather without cloning the whole grid.
func (s *FarmService) weatherLocked() entities.Weather {
	w := s.state.Weather
	w.Alerts = append([]string(nil), w.Alerts...)
	return w
}

func (s *FarmService) AutoMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoMode
}

// Snapshot is the periodic summary published on SnapshotTopic.
func (s *FarmService) Snapshot() model.GridSnapshotEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.GridSnapshotEvent{
		Stats:     s.state.Stats(),
		Weather:   s.weatherLocked(),
		AutoMode:  s.autoMode,
		Timestamp: s.now(),
	}
}

// Analysis returns the last analysis, running one if none exists yet.
func (s *FarmService) Analysis() simulation.Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.analysis.At.IsZero() {
		s.runAnalysisLocked()
	}
	return s.analysis
}

func (s *FarmService) RunAnalysis() simulation.Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runAnalysisLocked()
	return s.analysis
}

func (s *FarmService) runAnalysisLocked() {
	s.analysis = simulation.Analyze(s.state.Clone(), s.now(), s.cfg.SeasonStart, s.cfg.SeasonEnd)
}

// ====== notifications ======

// Notifications returns the live notifications, oldest first.
func (s *FarmService) Notifications() []entities.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneNotesLocked()
	return append([]entities.Notification(nil), s.notes...)
}

func (s *FarmService) addNoteLocked(t entities.NotificationType, msg string) {
	s.pruneNotesLocked()
	s.notes = append(s.notes, entities.Notification{Type: t, Message: msg, Timestamp: s.now()})
}

func (s *FarmService) pruneNotesLocked() {
	ttl := s.cfg.NotificationTTL
	if ttl <= 0 {
		return
	}
	cut := s.now().Add(-ttl)
	kept := s.notes[:0]
	for _, n := range s.notes {
		if n.Timestamp.After(cut) {
			kept = append(kept, n)
		}
	}
	s.notes = kept
}

// ====== mutations ======

// Regenerate replaces the whole grid.
func (s *FarmService) Regenerate() entities.GridStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Regenerate(s.gen)
	s.selected = nil
	s.analysis = simulation.Analysis{}
	s.observeLocked()
	log.Printf("farm: grid regenerated plants=%d", len(s.state.Plants))
	return s.state.Stats()
}

// Select marks the plant the manual action waters.
func (s *FarmService) Select(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Plant(id) == nil {
		return fmt.Errorf("%w: %d", ErrPlantNotFound, id)
	}
	s.selected = &id
	return nil
}

// Water selects and waters one plant.
func (s *FarmService) Water(ctx context.Context, id int) (ActionResult, error) {
	return s.Apply(ctx, simulation.ActionManual, &id, "")
}

// ToggleAutoMode flips auto mode and returns the new value.
func (s *FarmService) ToggleAutoMode(ctx context.Context) bool {
	res, _ := s.Apply(ctx, simulation.ActionAuto, nil, "")
	return res.AutoMode
}

// Apply runs one action. plantID only matters for the manual action; without it
// the selected plant is watered. An empty actionID gets a fresh one.
func (s *FarmService) Apply(ctx context.Context, action simulation.Action, plantID *int, actionID string) (ActionResult, error) {
	if actionID == "" {
		actionID = uuid.NewString()
	}
	s.mu.Lock()
	res, err := s.applyLocked(action, plantID)
	res.ActionID = actionID
	res.Action = action
	res.AutoMode = s.autoMode
	res.Stats = s.state.Stats()
	s.observeLocked()
	s.mu.Unlock()

	s.metrics.countAction(action, err)
	s.publishResult(ctx, res, err)
	return res, err
}

func (s *FarmService) applyLocked(action simulation.Action, plantID *int) (ActionResult, error) {
	var res ActionResult
	switch action {
	case simulation.ActionManual:
		id := plantID
		if id == nil {
			id = s.selected
		}
		if id == nil {
			s.addNoteLocked(entities.NotifyWarning, "Selecciona una planta para riego manual")
			return res, ErrNoPlantSelected
		}
		p := s.state.Plant(*id)
		if p == nil {
			return res, fmt.Errorf("%w: %d", ErrPlantNotFound, *id)
		}
		s.selected = &p.ID
		gained := simulation.Water(p)
		if gained > 0 {
			res.Affected = 1
			res.Message = fmt.Sprintf("%s regado exitosamente (+%d%% agua)", p.Type, gained)
			s.addNoteLocked(entities.NotifySuccess, res.Message)
		} else {
			res.Message = fmt.Sprintf("%s ya tiene el nivel de agua máximo", p.Type)
		}

	case simulation.ActionAuto:
		s.autoMode = !s.autoMode
		if s.autoMode {
			res.Message = "Modo auto-riego activado"
			s.addNoteLocked(entities.NotifySuccess, res.Message)
		} else {
			res.Message = "Modo auto-riego desactivado"
			s.addNoteLocked(entities.NotifyInfo, res.Message)
		}

	case simulation.ActionDrainage:
		res.Affected = simulation.Drain(s.state.Plants)
		res.Message = fmt.Sprintf("Drenaje aplicado a %d plantas", res.Affected)
		s.addNoteLocked(entities.NotifyInfo, res.Message)

	case simulation.ActionSprinklers:
		res.Affected = simulation.Sprinkle(s.state.Plants)
		res.Message = fmt.Sprintf("Aspersores activados - %d plantas regadas", res.Affected)
		s.addNoteLocked(entities.NotifySuccess, res.Message)

	case simulation.ActionDrip:
		res.Affected = simulation.Drip(s.state.Plants)
		res.Message = fmt.Sprintf("Riego por goteo activado - %d plantas críticas atendidas", res.Affected)
		s.addNoteLocked(entities.NotifySuccess, res.Message)

	case simulation.ActionSchedule:
		res.Message = "Programación de riego disponible en /schedules"
		s.addNoteLocked(entities.NotifyInfo, res.Message)

	default:
		return res, fmt.Errorf("%w: %q", simulation.ErrUnknownAction, action)
	}
	return res, nil
}

// AutoIrrigate is the periodic sweep; it does nothing outside auto mode.
func (s *FarmService) AutoIrrigate(ctx context.Context) int {
	s.mu.Lock()
	if !s.autoMode {
		s.mu.Unlock()
		return 0
	}
	res := ActionResult{ActionID: uuid.NewString(), Action: simulation.ActionAuto, AutoMode: true}
	res.Affected = simulation.AutoIrrigate(s.state.Plants)
	if res.Affected > 0 {
		res.Message = fmt.Sprintf("Auto-riego: %d plantas regadas automáticamente", res.Affected)
		s.addNoteLocked(entities.NotifySuccess, res.Message)
	}
	res.Stats = s.state.Stats()
	s.observeLocked()
	s.mu.Unlock()

	if res.Affected > 0 {
		s.metrics.countAction(simulation.ActionAuto, nil)
		s.publishResult(ctx, res, nil)
	}
	return res.Affected
}

// DriftWeather advances the weather panel by one step.
func (s *FarmService) DriftWeather() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.DriftWeather(s.rng)
	s.observeLocked()
}

// SeedWeather replaces the default weather with one fetch from the provider.
// On failure the current weather is kept.
func (s *FarmService) SeedWeather(ctx context.Context) {
	if s.weather == nil {
		return
	}
	w, err := s.weather.Current(ctx, s.cfg.Latitude, s.cfg.Longitude)
	if err != nil {
		log.Printf("farm: weather fetch failed, keeping defaults: %v", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Weather = w
	s.observeLocked()
	log.Printf("farm: weather seeded temp=%.1f humidity=%.0f uv=%.1f", w.Temperature, w.Humidity, w.UVIndex)
}

func (s *FarmService) observeLocked() {
	if s.metrics == nil {
		return
	}
	s.metrics.Observe(s.state.Stats(), s.state.Weather, s.autoMode)
}

// ====== events ======

func (s *FarmService) publishResult(_ context.Context, res ActionResult, err error) {
	if s.publisher == nil {
		return
	}
	evt := model.ActionResultEvent{
		ActionID:  res.ActionID,
		Action:    string(res.Action),
		Status:    model.StatusOK,
		Affected:  res.Affected,
		Message:   res.Message,
		Timestamp: s.now(),
	}
	if err != nil {
		evt.Status = model.StatusFail
		evt.Message = err.Error()
	}
	topic := ActionTopic(res.Action)
	if err := s.publisher.PublishToQos(topic, rabbitmq.QoSFor(topic), false, evt); err != nil {
		log.Printf("farm: publish %s failed: %v", topic, err)
	}
}

func (s *FarmService) PublishSnapshot() {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishToQos(SnapshotTopic, rabbitmq.QoSFor(SnapshotTopic), false, s.Snapshot()); err != nil {
		log.Printf("farm: publish snapshot failed: %v", err)
	}
}

// ====== loop ======

// Start runs the timers until ctx is cancelled.
func (s *FarmService) Start(ctx context.Context) {
	weatherT := time.NewTicker(s.cfg.WeatherDrift)
	autoT := time.NewTicker(s.cfg.AutoIrrigation)
	analysisT := time.NewTicker(s.cfg.Analysis)
	snapT := time.NewTicker(s.cfg.Snapshot)
	defer weatherT.Stop()
	defer autoT.Stop()
	defer analysisT.Stop()
	defer snapT.Stop()

	log.Printf("farm: loop started grid=%dx%d", s.state.GridSize, s.state.GridSize)
	for {
		select {
		case <-ctx.Done():
			log.Printf("farm: loop stopped")
			return
		case <-weatherT.C:
			s.DriftWeather()
		case <-autoT.C:
			if n := s.AutoIrrigate(ctx); n > 0 {
				log.Printf("farm: auto-irrigation watered=%d", n)
			}
		case <-analysisT.C:
			if s.AutoMode() {
				s.RunAnalysis()
			}
		case <-snapT.C:
			s.PublishSnapshot()
		}
	}
}

func (s *FarmService) notify(t entities.NotificationType, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addNoteLocked(t, msg)
}
