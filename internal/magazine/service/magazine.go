package service

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rwa-portal/rwa-backend/internal/magazine/biz"
	apperrors "github.com/rwa-portal/rwa-backend/internal/pkg/errors"
	"github.com/rwa-portal/rwa-backend/internal/pkg/logger"
	"github.com/rwa-portal/rwa-backend/internal/pkg/response"
)

// MagazineService exposes the e-magazine endpoints. Reads are public,
// mutations are mounted on the admin group.
type MagazineService struct {
	uc     *biz.MagazineUseCase
	logger *logger.Logger
}

func NewMagazineService(uc *biz.MagazineUseCase, log *logger.Logger) *MagazineService {
	if log == nil {
		log = logger.L()
	}
	return &MagazineService{uc: uc, logger: log}
}

// RegisterPublicRoutes mounts the read endpoints.
func (s *MagazineService) RegisterPublicRoutes(r *gin.RouterGroup) {
	magazines := r.Group("/magazines")
	{
		magazines.GET("", s.List)
		magazines.GET("/:id", s.Get)
	}
}

// RegisterAdminRoutes mounts the mutation endpoints.
func (s *MagazineService) RegisterAdminRoutes(r *gin.RouterGroup) {
	magazines := r.Group("/magazines")
	{
		magazines.POST("", s.Create)
		magazines.PUT("/:id", s.Update)
		magazines.DELETE("/:id", s.Delete)
	}
}

type magazineResponse struct {
	ID           string    `json:"_id"`
	Title        string    `json:"title"`
	IssueDate    time.Time `json:"issueDate"`
	Summary      string    `json:"summary"`
	FileURL      string    `json:"fileUrl"`
	CoverURL     string    `json:"coverUrl"`
	OriginalName string    `json:"originalName"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toMagazineResponse(m *biz.Magazine) magazineResponse {
	return magazineResponse{
		ID:           m.ID,
		Title:        m.Title,
		IssueDate:    m.IssueDate,
		Summary:      m.Summary,
		FileURL:      m.FileURL,
		CoverURL:     m.CoverURL,
		OriginalName: m.OriginalName,
		CreatedAt:    m.CreatedAt,
	}
}

// Create handles POST /api/admin/magazines: multipart with a "file" PDF
// plus title, date (RFC 3339 or YYYY-MM-DD) and summary fields.
func (s *MagazineService) Create(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperrors.CodeNoFile, "No file uploaded")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperrors.CodeUploadError, "Failed to read upload")
		return
	}

	m, err := s.uc.Create(c.Request.Context(), &biz.CreateMagazineRequest{
		Title:        c.PostForm("title"),
		IssueDate:    parseIssueDate(c.PostForm("date")),
		Summary:      c.PostForm("summary"),
		OriginalName: header.Filename,
		Content:      content,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Created(c, gin.H{"magazine": toMagazineResponse(m)})
}

func parseIssueDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// List handles GET /api/magazines?page=&limit=.
func (s *MagazineService) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))

	list, err := s.uc.List(c.Request.Context(), &biz.ListMagazinesRequest{
		Page:     page,
		PageSize: limit,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	data := make([]magazineResponse, len(list.Items))
	for i, m := range list.Items {
		data[i] = toMagazineResponse(m)
	}

	response.JSON(c, gin.H{
		"data":       data,
		"page":       list.Page,
		"limit":      list.PageSize,
		"totalItems": list.TotalItems,
		"totalPages": list.TotalPages,
	})
}

// Get handles GET /api/magazines/:id.
func (s *MagazineService) Get(c *gin.Context) {
	m, err := s.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.OK(c, gin.H{"magazine": toMagazineResponse(m)})
}

type updateMagazineRequest struct {
	Title   *string `json:"title"`
	Date    *string `json:"date"`
	Summary *string `json:"summary"`
}

// Update handles PUT /api/admin/magazines/:id.
func (s *MagazineService) Update(c *gin.Context) {
	var req updateMagazineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, apperrors.CodeInvalidParams, "Invalid request body")
		return
	}

	upd := &biz.UpdateMagazineRequest{
		Title:   req.Title,
		Summary: req.Summary,
	}
	if req.Date != nil {
		d := parseIssueDate(*req.Date)
		if d.IsZero() {
			response.Error(c, http.StatusBadRequest, apperrors.CodeInvalidParams, "Invalid date")
			return
		}
		upd.IssueDate = &d
	}

	m, err := s.uc.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.OK(c, gin.H{"magazine": toMagazineResponse(m)})
}

// Delete handles DELETE /api/admin/magazines/:id.
func (s *MagazineService) Delete(c *gin.Context) {
	if err := s.uc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.OK(c, gin.H{"message": "Magazine deleted successfully"})
}
