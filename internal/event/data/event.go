package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rwa-portal/rwa-backend/internal/event/biz"
)

// EventPO is the database model for events.
type EventPO struct {
	ID          string    `gorm:"type:uuid;primarykey"`
	Title       string    `gorm:"column:title;size:512;not null"`
	Description string    `gorm:"column:description;type:text"`
	Location    string    `gorm:"column:location;size:512"`
	StartsAt    time.Time `gorm:"column:starts_at;index:idx_events_starts_at,sort:desc"`
	EndsAt      time.Time `gorm:"column:ends_at"`
	Published   bool      `gorm:"column:published;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null"`
}

func (EventPO) TableName() string {
	return "events"
}

type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) *EventRepo {
	return &EventRepo{db: db}
}

func (r *EventRepo) Create(ctx context.Context, e *biz.Event) error {
	if err := r.db.WithContext(ctx).Create(toPO(e)).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *EventRepo) GetByID(ctx context.Context, id string) (*biz.Event, error) {
	var po EventPO
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return toDomain(&po), nil
}

func (r *EventRepo) List(ctx context.Context, req *biz.ListEventsRequest) ([]*biz.Event, int64, error) {
	query := r.db.WithContext(ctx).Model(&EventPO{})
	if !req.IncludeDrafts {
		query = query.Where("published = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	var pos []EventPO
	err := query.Order("starts_at DESC").
		Limit(req.PageSize).
		Offset((req.Page - 1) * req.PageSize).
		Find(&pos).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}

	items := make([]*biz.Event, len(pos))
	for i := range pos {
		items[i] = toDomain(&pos[i])
	}
	return items, total, nil
}

func (r *EventRepo) Update(ctx context.Context, e *biz.Event) error {
	result := r.db.WithContext(ctx).Model(&EventPO{}).
		Where("id = ?", e.ID).
		Updates(map[string]interface{}{
			"title":       e.Title,
			"description": e.Description,
			"location":    e.Location,
			"starts_at":   e.StartsAt,
			"ends_at":     e.EndsAt,
			"published":   e.Published,
			"updated_at":  e.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrEventNotFound
	}
	return nil
}

func (r *EventRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&EventPO{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrEventNotFound
	}
	return nil
}

func toPO(e *biz.Event) *EventPO {
	return &EventPO{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
		Published:   e.Published,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toDomain(po *EventPO) *biz.Event {
	return &biz.Event{
		ID:          po.ID,
		Title:       po.Title,
		Description: po.Description,
		Location:    po.Location,
		StartsAt:    po.StartsAt,
		EndsAt:      po.EndsAt,
		Published:   po.Published,
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
	}
}
