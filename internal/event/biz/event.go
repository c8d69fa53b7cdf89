package biz

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/rwa-portal/rwa-backend/internal/pkg/errors"
)

var (
	// ErrEventTitleRequired rejects events without a title.
	ErrEventTitleRequired = apperrors.New(apperrors.CodeInvalidParams, "Event title is required")

	// ErrEventNotFound is returned when no event exists for the identifier.
	ErrEventNotFound = apperrors.New(apperrors.CodeNotFound, "Event not found")
)

// Event is an association gathering: AGM, picnic, farewell.
type Event struct {
	ID          string
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      time.Time
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ListEventsRequest struct {
	Page          int
	PageSize      int
	IncludeDrafts bool
}

type EventList struct {
	Items      []*Event
	Page       int
	PageSize   int
	TotalItems int64
	TotalPages int64
}

type EventRepo interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, req *ListEventsRequest) ([]*Event, int64, error)
	Update(ctx context.Context, e *Event) error
	Delete(ctx context.Context, id string) error
}

type CreateEventRequest struct {
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      time.Time
	Published   bool
}

type UpdateEventRequest struct {
	Title       *string
	Description *string
	Location    *string
	StartsAt    *time.Time
	EndsAt      *time.Time
	Published   *bool
}

type EventUseCase struct {
	repo EventRepo
}

func NewEventUseCase(repo EventRepo) *EventUseCase {
	return &EventUseCase{repo: repo}
}

func (uc *EventUseCase) Create(ctx context.Context, req *CreateEventRequest) (*Event, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrEventTitleRequired
	}

	now := time.Now().UTC()
	e := &Event{
		ID:          uuid.New().String(),
		Title:       title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Published:   req.Published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (uc *EventUseCase) List(ctx context.Context, req *ListEventsRequest) (*EventList, error) {
	if req == nil {
		req = &ListEventsRequest{}
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 12
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	items, total, err := uc.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	return &EventList{
		Items:      items,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalItems: total,
		TotalPages: (total + int64(req.PageSize) - 1) / int64(req.PageSize),
	}, nil
}

func (uc *EventUseCase) Get(ctx context.Context, id string) (*Event, error) {
	return uc.repo.GetByID(ctx, id)
}

func (uc *EventUseCase) Update(ctx context.Context, id string, req *UpdateEventRequest) (*Event, error) {
	e, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrEventTitleRequired
		}
		e.Title = title
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Location != nil {
		e.Location = *req.Location
	}
	if req.StartsAt != nil {
		e.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		e.EndsAt = *req.EndsAt
	}
	if req.Published != nil {
		e.Published = *req.Published
	}
	e.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (uc *EventUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}
