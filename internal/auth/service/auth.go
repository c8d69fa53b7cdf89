package service

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rwa-portal/rwa-backend/internal/auth/biz"
	"github.com/rwa-portal/rwa-backend/internal/auth/middleware"
	apperrors "github.com/rwa-portal/rwa-backend/internal/pkg/errors"
	"github.com/rwa-portal/rwa-backend/internal/pkg/logger"
	"github.com/rwa-portal/rwa-backend/internal/pkg/response"
)

// AuthService exposes registration, login and the current-account endpoint.
type AuthService struct {
	uc     *biz.AuthUseCase
	logger *logger.Logger
}

func NewAuthService(uc *biz.AuthUseCase, log *logger.Logger) *AuthService {
	if log == nil {
		log = logger.L()
	}
	return &AuthService{uc: uc, logger: log}
}

// RegisterRoutes mounts the public auth endpoints; the caller supplies the
// login rate limiter so tests can run without Redis.
func (s *AuthService) RegisterRoutes(r *gin.RouterGroup, loginLimiter gin.HandlerFunc) {
	auth := r.Group("/auth")
	{
		if loginLimiter != nil {
			auth.POST("/login", loginLimiter, s.Login)
		} else {
			auth.POST("/login", s.Login)
		}
		auth.POST("/register", s.Register)
	}
}

// RegisterProtectedRoutes mounts endpoints that require a valid token.
func (s *AuthService) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/auth/me", s.Me)
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// userResponse never carries the password hash.
type userResponse struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *biz.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Register handles POST /api/auth/register. Self-registration always yields
// a member account; admins are provisioned out of band.
func (s *AuthService) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, apperrors.CodeInvalidParams, "Email and password are required")
		return
	}

	u, err := s.uc.Register(c.Request.Context(), &biz.RegisterRequest{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Created(c, gin.H{"user": toUserResponse(u)})
}

// Login handles POST /api/auth/login.
func (s *AuthService) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, apperrors.CodeInvalidParams, "Email and password are required")
		return
	}

	result, err := s.uc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.OK(c, gin.H{
		"token": result.Token,
		"user":  toUserResponse(result.User),
	})
}

// Me handles GET /api/auth/me.
func (s *AuthService) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperrors.CodeUnauthorized, "Not authenticated")
		return
	}

	u, err := s.uc.Me(c.Request.Context(), userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.OK(c, gin.H{"user": toUserResponse(u)})
}
