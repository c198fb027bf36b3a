package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/history"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/route"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RouteHistoryModel is the GORM model for the route_history table.
type RouteHistoryModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SessionID       *uuid.UUID      `gorm:"type:uuid;index"`
	Origin          string          `gorm:"not null;size:500"`
	Destinations    json.RawMessage `gorm:"type:jsonb;not null"`
	Mode            string          `gorm:"not null;size:20;index"`
	Optimize        bool            `gorm:"not null"`
	Backend         string          `gorm:"not null;size:20"`
	DistanceMeters  int             `gorm:"not null"`
	DurationSeconds int             `gorm:"not null"`
	LegCount        int             `gorm:"not null"`
	CreatedAt       time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for the GORM model.
func (RouteHistoryModel) TableName() string {
	return "route_history"
}

// GormHistoryRepository is the GORM-based implementation of history.Repository.
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository.
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Save persists a new record.
func (r *GormHistoryRepository) Save(ctx context.Context, rec *history.Record) error {
	model, err := toHistoryModel(rec)
	if err != nil {
		return fmt.Errorf("failed to convert history record to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save history record: %w", err)
	}
	return nil
}

// List retrieves records newest first with pagination.
func (r *GormHistoryRepository) List(ctx context.Context, page, limit int) ([]*history.Record, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&RouteHistoryModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count history records: %w", err)
	}

	var models []RouteHistoryModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list history records: %w", err)
	}

	records := make([]*history.Record, len(models))
	for i, m := range models {
		rec, err := toDomainRecord(&m)
		if err != nil {
			return nil, 0, err
		}
		records[i] = rec
	}

	return records, total, nil
}

// CountByMode returns record counts grouped by travel mode.
func (r *GormHistoryRepository) CountByMode(ctx context.Context) (map[string]int64, error) {
	type modeCount struct {
		Mode  string
		Count int64
	}
	var results []modeCount
	if err := r.db.WithContext(ctx).Model(&RouteHistoryModel{}).
		Select("mode, count(*) as count").
		Group("mode").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by mode: %w", err)
	}

	counts := make(map[string]int64)
	for _, mc := range results {
		counts[mc.Mode] = mc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toHistoryModel(rec *history.Record) (*RouteHistoryModel, error) {
	destinationsJSON, err := json.Marshal(rec.Destinations())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal destinations: %w", err)
	}

	return &RouteHistoryModel{
		ID:              rec.ID(),
		SessionID:       rec.SessionID(),
		Origin:          rec.Origin(),
		Destinations:    destinationsJSON,
		Mode:            string(rec.Mode()),
		Optimize:        rec.Optimize(),
		Backend:         rec.Backend(),
		DistanceMeters:  rec.DistanceMeters(),
		DurationSeconds: rec.DurationSeconds(),
		LegCount:        rec.LegCount(),
		CreatedAt:       rec.CreatedAt(),
	}, nil
}

func toDomainRecord(m *RouteHistoryModel) (*history.Record, error) {
	var destinations []string
	if err := json.Unmarshal(m.Destinations, &destinations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal destinations: %w", err)
	}

	mode, err := route.ParseTravelMode(m.Mode)
	if err != nil {
		return nil, err
	}

	return history.ReconstructRecord(
		m.ID,
		m.SessionID,
		m.Origin,
		destinations,
		mode,
		m.Optimize,
		m.Backend,
		m.DistanceMeters,
		m.DurationSeconds,
		m.LegCount,
		m.CreatedAt,
	), nil
}
