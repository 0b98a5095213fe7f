package farm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/LeonardoBeccarini/spacefarm/internal/model/entities"
)

var ErrInvalidSchedule = errors.New("invalid schedule")

var (
	scheduleTypes       = map[string]bool{"manual": true, "automatic": true}
	scheduleFrequencies = map[string]bool{"daily": true, "weekly": true, "custom": true}
)

const maxScheduleMinutes = 24 * 60

// ScheduleStore persists irrigation programs in SQLite.
type ScheduleStore struct {
	db *gorm.DB
}

var migrateSchedules = func(db *gorm.DB) error {
	return db.AutoMigrate(&entities.Schedule{})
}

// OpenScheduleStore opens (or creates) the database at path; ":memory:" works for tests.
func OpenScheduleStore(path string) (*ScheduleStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// one connection: sqlite has a single writer and ":memory:" is per connection
	sqlDB.SetMaxOpenConns(1)

	if err := migrateSchedules(db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return &ScheduleStore{db: db}, nil
}

// closeDB releases the pool behind a half-initialized handle.
func closeDB(db *gorm.DB) {
	if db == nil || db.ConnPool == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (s *ScheduleStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ValidateSchedule normalizes sc in place.
func ValidateSchedule(sc *entities.Schedule) error {
	sc.Type = strings.ToLower(strings.TrimSpace(sc.Type))
	sc.Frequency = strings.ToLower(strings.TrimSpace(sc.Frequency))
	sc.StartTime = strings.TrimSpace(sc.StartTime)

	if !scheduleTypes[sc.Type] {
		return fmt.Errorf("%w: type %q", ErrInvalidSchedule, sc.Type)
	}
	if !scheduleFrequencies[sc.Frequency] {
		return fmt.Errorf("%w: frequency %q", ErrInvalidSchedule, sc.Frequency)
	}
	t, err := time.Parse("15:04", sc.StartTime)
	if err != nil {
		return fmt.Errorf("%w: start time %q", ErrInvalidSchedule, sc.StartTime)
	}
	sc.StartTime = t.Format("15:04")
	if sc.DurationMin <= 0 || sc.DurationMin > maxScheduleMinutes {
		return fmt.Errorf("%w: duration %d min", ErrInvalidSchedule, sc.DurationMin)
	}
	return nil
}

// Save validates and inserts sc, returning it with its id.
func (s *ScheduleStore) Save(ctx context.Context, sc entities.Schedule) (entities.Schedule, error) {
	sc.ID = 0
	if err := ValidateSchedule(&sc); err != nil {
		return sc, err
	}
	if err := s.db.WithContext(ctx).Create(&sc).Error; err != nil {
		return sc, fmt.Errorf("save schedule: %w", err)
	}
	return sc, nil
}

// List returns every schedule, newest first.
func (s *ScheduleStore) List(ctx context.Context) ([]entities.Schedule, error) {
	var out []entities.Schedule
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return out, nil
}
