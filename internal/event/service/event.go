package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rwa-portal/rwa-backend/internal/event/biz"
	apperrors "github.com/rwa-portal/rwa-backend/internal/pkg/errors"
	"github.com/rwa-portal/rwa-backend/internal/pkg/logger"
	"github.com/rwa-portal/rwa-backend/internal/pkg/response"
)

// EventService exposes the events endpoints.
type EventService struct {
	uc     *biz.EventUseCase
	logger *logger.Logger
}

func NewEventService(uc *biz.EventUseCase, log *logger.Logger) *EventService {
	if log == nil {
		log = logger.L()
	}
	return &EventService{uc: uc, logger: log}
}

func (s *EventService) RegisterPublicRoutes(r *gin.RouterGroup) {
	events := r.Group("/events")
	{
		events.GET("", s.List)
		events.GET("/:id", s.Get)
	}
}

func (s *EventService) RegisterAdminRoutes(r *gin.RouterGroup) {
	events := r.Group("/events")
	{
		events.GET("", s.ListAll)
		events.POST("", s.Create)
		events.PUT("/:id", s.Update)
		events.DELETE("/:id", s.Delete)
	}
}

type eventRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
	Published   bool       `json:"published"`
}

type eventResponse struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toEventResponse(e *biz.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
		Published:   e.Published,
		CreatedAt:   e.CreatedAt,
	}
}

// Create handles POST /api/admin/events.
func (s *EventService) Create(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, apperrors.CodeInvalidParams, "Title is required")
		return
	}

	create := &biz.CreateEventRequest{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Published:   req.Published,
	}
	if req.StartsAt != nil {
		create.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		create.EndsAt = *req.EndsAt
	}

	e, err := s.uc.Create(c.Request.Context(), create)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Created(c, gin.H{"event": toEventResponse(e)})
}

// List handles GET /api/events: published events only.
func (s *EventService) List(c *gin.Context) {
	s.list(c, false)
}

// ListAll handles GET /api/admin/events: drafts included.
func (s *EventService) ListAll(c *gin.Context) {
	s.list(c, true)
}

func (s *EventService) list(c *gin.Context, includeDrafts bool) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))

	list, err := s.uc.List(c.Request.Context(), &biz.ListEventsRequest{
		Page:          page,
		PageSize:      limit,
		IncludeDrafts: includeDrafts,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	data := make([]eventResponse, len(list.Items))
	for i, e := range list.Items {
		data[i] = toEventResponse(e)
	}

	response.JSON(c, gin.H{
		"data":       data,
		"page":       list.Page,
		"limit":      list.PageSize,
		"totalItems": list.TotalItems,
		"totalPages": list.TotalPages,
	})
}

// Get handles GET /api/events/:id.
func (s *EventService) Get(c *gin.Context) {
	e, err := s.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.OK(c, gin.H{"event": toEventResponse(e)})
}

type updateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
	Published   *bool      `json:"published"`
}

// Update handles PUT /api/admin/events/:id.
func (s *EventService) Update(c *gin.Context) {
	var req updateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, apperrors.CodeInvalidParams, "Invalid request body")
		return
	}

	e, err := s.uc.Update(c.Request.Context(), c.Param("id"), &biz.UpdateEventRequest{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Published:   req.Published,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.OK(c, gin.H{"event": toEventResponse(e)})
}

// Delete handles DELETE /api/admin/events/:id.
func (s *EventService) Delete(c *gin.Context) {
	if err := s.uc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.OK(c, gin.H{"message": "Event deleted successfully"})
}
