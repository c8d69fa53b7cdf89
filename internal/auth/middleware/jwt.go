package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rwa-portal/rwa-backend/internal/auth"
	apperrors "github.com/rwa-portal/rwa-backend/internal/pkg/errors"
	"github.com/rwa-portal/rwa-backend/internal/pkg/logger"
	"github.com/rwa-portal/rwa-backend/internal/pkg/response"
)

// RoleAdmin is the only role with mutation rights.
const RoleAdmin = "admin"

// JWTAuth rejects requests without a valid bearer token and injects the
// claims into the request context.
func JWTAuth(manager *auth.JWTManager, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.L()
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, apperrors.CodeUnauthorized, "Missing authorization header")
			c.Abort()
			return
		}

		token, err := auth.ExtractTokenFromHeader(authHeader)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, apperrors.CodeUnauthorized, "Invalid authorization header")
			c.Abort()
			return
		}

		claims, err := manager.VerifyToken(token)
		if err != nil {
			log.Warn("invalid access token",
				zap.Error(err),
				zap.String("ip", c.ClientIP()))
			response.Error(c, http.StatusUnauthorized, apperrors.CodeUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RequireRole allows only the listed roles through. Must run after JWTAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Error(c, http.StatusForbidden, apperrors.CodeForbidden, "Forbidden")
			c.Abort()
			return
		}

		roleStr, _ := role.(string)
		for _, r := range roles {
			if roleStr == r {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, apperrors.CodeForbidden, "Insufficient permissions")
		c.Abort()
	}
}

// GetUserID returns the authenticated user's identifier.
func GetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// CORS restricts cross-origin access to the configured client origins. An
// empty allow-list reflects any origin, which is only acceptable in
// development setups.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if origin != "" {
			_, ok := allowed[origin]
			if ok || len(allowed) == 0 {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
				c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization")
				c.Header("Access-Control-Expose-Headers", "Content-Length, Content-Disposition")
				c.Header("Access-Control-Allow-Credentials", "true")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
