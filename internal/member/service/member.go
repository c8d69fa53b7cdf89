package service

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rwa-portal/rwa-backend/internal/member/biz"
	apperrors "github.com/rwa-portal/rwa-backend/internal/pkg/errors"
	"github.com/rwa-portal/rwa-backend/internal/pkg/logger"
	"github.com/rwa-portal/rwa-backend/internal/pkg/response"
)

// MemberService exposes the office bearers directory.
type MemberService struct {
	uc     *biz.MemberUseCase
	logger *logger.Logger
}

func NewMemberService(uc *biz.MemberUseCase, log *logger.Logger) *MemberService {
	if log == nil {
		log = logger.L()
	}
	return &MemberService{uc: uc, logger: log}
}

func (s *MemberService) RegisterPublicRoutes(r *gin.RouterGroup) {
	members := r.Group("/members")
	{
		members.GET("", s.List)
		members.GET("/:id", s.Get)
	}
}

func (s *MemberService) RegisterAdminRoutes(r *gin.RouterGroup) {
	members := r.Group("/members")
	{
		members.POST("", s.Create)
		members.PUT("/:id", s.Update)
		members.DELETE("/:id", s.Delete)
	}
}

type memberRequest struct {
	Name        string `json:"name" binding:"required"`
	Designation string `json:"designation"`
	PhotoURL    string `json:"photoUrl"`
	Bio         string `json:"bio"`
	Contact     string `json:"contact"`
	SortOrder   int    `json:"sortOrder"`
}

type memberResponse struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Designation string    `json:"designation"`
	PhotoURL    string    `json:"photoUrl"`
	Bio         string    `json:"bio"`
	Contact     string    `json:"contact"`
	SortOrder   int       `json:"sortOrder"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toMemberResponse(m *biz.Member) memberResponse {
	return memberResponse{
		ID:          m.ID,
		Name:        m.Name,
		Designation: m.Designation,
		PhotoURL:    m.PhotoURL,
		Bio:         m.Bio,
		Contact:     m.Contact,
		SortOrder:   m.SortOrder,
		CreatedAt:   m.CreatedAt,
	}
}

// Create handles POST /api/admin/members.
func (s *MemberService) Create(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, apperrors.CodeInvalidParams, "Name is required")
		return
	}

	m, err := s.uc.Create(c.Request.Context(), &biz.CreateMemberRequest{
		Name:        req.Name,
		Designation: req.Designation,
		PhotoURL:    req.PhotoURL,
		Bio:         req.Bio,
		Contact:     req.Contact,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Created(c, gin.H{"member": toMemberResponse(m)})
}

// List handles GET /api/members: the whole directory in display order.
func (s *MemberService) List(c *gin.Context) {
	members, err := s.uc.List(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}

	data := make([]memberResponse, len(members))
	for i, m := range members {
		data[i] = toMemberResponse(m)
	}
	response.OK(c, gin.H{"members": data})
}

// Get handles GET /api/members/:id.
func (s *MemberService) Get(c *gin.Context) {
	m, err := s.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.OK(c, gin.H{"member": toMemberResponse(m)})
}

type updateMemberRequest struct {
	Name        *string `json:"name"`
	Designation *string `json:"designation"`
	PhotoURL    *string `json:"photoUrl"`
	Bio         *string `json:"bio"`
	Contact     *string `json:"contact"`
	SortOrder   *int    `json:"sortOrder"`
}

// Update handles PUT /api/admin/members/:id.
func (s *MemberService) Update(c *gin.Context) {
	var req updateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, apperrors.CodeInvalidParams, "Invalid request body")
		return
	}

	m, err := s.uc.Update(c.Request.Context(), c.Param("id"), &biz.UpdateMemberRequest{
		Name:        req.Name,
		Designation: req.Designation,
		PhotoURL:    req.PhotoURL,
		Bio:         req.Bio,
		Contact:     req.Contact,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.OK(c, gin.H{"member": toMemberResponse(m)})
}

// Delete handles DELETE /api/admin/members/:id.
func (s *MemberService) Delete(c *gin.Context) {
	if err := s.uc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.OK(c, gin.H{"message": "Member deleted successfully"})
}
