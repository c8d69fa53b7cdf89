package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/rwa-portal/rwa-backend/internal/pkg/errors"
	"github.com/rwa-portal/rwa-backend/internal/pkg/logger"
	"github.com/rwa-portal/rwa-backend/internal/pkg/response"
	"github.com/rwa-portal/rwa-backend/internal/post/biz"
)

// PostService exposes the news post endpoints.
type PostService struct {
	uc     *biz.PostUseCase
	logger *logger.Logger
}

func NewPostService(uc *biz.PostUseCase, log *logger.Logger) *PostService {
	if log == nil {
		log = logger.L()
	}
	return &PostService{uc: uc, logger: log}
}

func (s *PostService) RegisterPublicRoutes(r *gin.RouterGroup) {
	posts := r.Group("/posts")
	{
		posts.GET("", s.List)
		posts.GET("/:id", s.Get)
	}
}

func (s *PostService) RegisterAdminRoutes(r *gin.RouterGroup) {
	posts := r.Group("/posts")
	{
		posts.GET("", s.ListAll)
		posts.POST("", s.Create)
		posts.PUT("/:id", s.Update)
		posts.DELETE("/:id", s.Delete)
	}
}

type postRequest struct {
	Title     string `json:"title" binding:"required"`
	Body      string `json:"body"`
	CoverURL  string `json:"coverUrl"`
	Published bool   `json:"published"`
}

type postResponse struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Body        string     `json:"body"`
	CoverURL    string     `json:"coverUrl"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toPostResponse(p *biz.Post) postResponse {
	resp := postResponse{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Body:      p.Body,
		CoverURL:  p.CoverURL,
		Published: p.Published,
		CreatedAt: p.CreatedAt,
	}
	if !p.PublishedAt.IsZero() {
		t := p.PublishedAt
		resp.PublishedAt = &t
	}
	return resp
}

// Create handles POST /api/admin/posts.
func (s *PostService) Create(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, apperrors.CodeInvalidParams, "Title is required")
		return
	}

	p, err := s.uc.Create(c.Request.Context(), &biz.CreatePostRequest{
		Title:     req.Title,
		Body:      req.Body,
		CoverURL:  req.CoverURL,
		Published: req.Published,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Created(c, gin.H{"post": toPostResponse(p)})
}

// List handles GET /api/posts: published posts only.
func (s *PostService) List(c *gin.Context) {
	s.list(c, false)
}

// ListAll handles GET /api/admin/posts: drafts included.
func (s *PostService) ListAll(c *gin.Context) {
	s.list(c, true)
}

func (s *PostService) list(c *gin.Context, includeDrafts bool) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))

	list, err := s.uc.List(c.Request.Context(), &biz.ListPostsRequest{
		Page:          page,
		PageSize:      limit,
		IncludeDrafts: includeDrafts,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	data := make([]postResponse, len(list.Items))
	for i, p := range list.Items {
		data[i] = toPostResponse(p)
	}

	response.JSON(c, gin.H{
		"data":       data,
		"page":       list.Page,
		"limit":      list.PageSize,
		"totalItems": list.TotalItems,
		"totalPages": list.TotalPages,
	})
}

// Get handles GET /api/posts/:id, accepting either id or slug.
func (s *PostService) Get(c *gin.Context) {
	p, err := s.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.OK(c, gin.H{"post": toPostResponse(p)})
}

type updatePostRequest struct {
	Title     *string `json:"title"`
	Body      *string `json:"body"`
	CoverURL  *string `json:"coverUrl"`
	Published *bool   `json:"published"`
}

// Update handles PUT /api/admin/posts/:id.
func (s *PostService) Update(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, apperrors.CodeInvalidParams, "Invalid request body")
		return
	}

	p, err := s.uc.Update(c.Request.Context(), c.Param("id"), &biz.UpdatePostRequest{
		Title:     req.Title,
		Body:      req.Body,
		CoverURL:  req.CoverURL,
		Published: req.Published,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.OK(c, gin.H{"post": toPostResponse(p)})
}

// Delete handles DELETE /api/admin/posts/:id.
func (s *PostService) Delete(c *gin.Context) {
	if err := s.uc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.OK(c, gin.H{"message": "Post deleted successfully"})
}
