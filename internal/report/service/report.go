package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/rwa-portal/rwa-backend/internal/pkg/errors"
	"github.com/rwa-portal/rwa-backend/internal/pkg/logger"
	"github.com/rwa-portal/rwa-backend/internal/pkg/response"
	"github.com/rwa-portal/rwa-backend/internal/report/biz"
)

// ReportService exposes the AGM report endpoints.
type ReportService struct {
	uc     *biz.ReportUseCase
	logger *logger.Logger
}

func NewReportService(uc *biz.ReportUseCase, log *logger.Logger) *ReportService {
	if log == nil {
		log = logger.L()
	}
	return &ReportService{uc: uc, logger: log}
}

func (s *ReportService) RegisterPublicRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("", s.List)
		reports.GET("/:id", s.Get)
	}
}

func (s *ReportService) RegisterAdminRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("", s.ListAll)
		reports.POST("", s.Create)
		reports.PUT("/:id", s.Update)
		reports.DELETE("/:id", s.Delete)
	}
}

type reportRequest struct {
	Title        string `json:"title" binding:"required"`
	Summary      string `json:"summary"`
	Content      string `json:"content"`
	FileURL      string `json:"fileUrl"`
	OriginalName string `json:"originalName"`
	Published    bool   `json:"published"`
}

type reportResponse struct {
	ID           string    `json:"_id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Summary      string    `json:"summary"`
	Content      string    `json:"content"`
	FileURL      string    `json:"fileUrl"`
	OriginalName string    `json:"originalName"`
	Published    bool      `json:"published"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toReportResponse(r *biz.Report) reportResponse {
	return reportResponse{
		ID:           r.ID,
		Title:        r.Title,
		Slug:         r.Slug,
		Summary:      r.Summary,
		Content:      r.Content,
		FileURL:      r.FileURL,
		OriginalName: r.OriginalName,
		Published:    r.Published,
		CreatedAt:    r.CreatedAt,
	}
}

// Create handles POST /api/admin/reports.
func (s *ReportService) Create(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, apperrors.CodeInvalidParams, "Title is required")
		return
	}

	r, err := s.uc.Create(c.Request.Context(), &biz.CreateReportRequest{
		Title:        req.Title,
		Summary:      req.Summary,
		Content:      req.Content,
		FileURL:      req.FileURL,
		OriginalName: req.OriginalName,
		Published:    req.Published,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Created(c, gin.H{"report": toReportResponse(r)})
}

// List handles GET /api/reports: published reports only.
func (s *ReportService) List(c *gin.Context) {
	s.list(c, false)
}

// ListAll handles GET /api/admin/reports: drafts included.
func (s *ReportService) ListAll(c *gin.Context) {
	s.list(c, true)
}

func (s *ReportService) list(c *gin.Context, includeDrafts bool) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))

	list, err := s.uc.List(c.Request.Context(), &biz.ListReportsRequest{
		Page:          page,
		PageSize:      limit,
		IncludeDrafts: includeDrafts,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	data := make([]reportResponse, len(list.Items))
	for i, r := range list.Items {
		data[i] = toReportResponse(r)
	}

	response.JSON(c, gin.H{
		"data":       data,
		"page":       list.Page,
		"limit":      list.PageSize,
		"totalItems": list.TotalItems,
		"totalPages": list.TotalPages,
	})
}

// Get handles GET /api/reports/:id, accepting either id or slug.
func (s *ReportService) Get(c *gin.Context) {
	r, err := s.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.OK(c, gin.H{"report": toReportResponse(r)})
}

type updateReportRequest struct {
	Title     *string `json:"title"`
	Summary   *string `json:"summary"`
	Content   *string `json:"content"`
	FileURL   *string `json:"fileUrl"`
	Published *bool   `json:"published"`
}

// Update handles PUT /api/admin/reports/:id.
func (s *ReportService) Update(c *gin.Context) {
	var req updateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, apperrors.CodeInvalidParams, "Invalid request body")
		return
	}

	r, err := s.uc.Update(c.Request.Context(), c.Param("id"), &biz.UpdateReportRequest{
		Title:     req.Title,
		Summary:   req.Summary,
		Content:   req.Content,
		FileURL:   req.FileURL,
		Published: req.Published,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.OK(c, gin.H{"report": toReportResponse(r)})
}

// Delete handles DELETE /api/admin/reports/:id.
func (s *ReportService) Delete(c *gin.Context) {
	if err := s.uc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.OK(c, gin.H{"message": "Report deleted successfully"})
}
