package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rwa-portal/rwa-backend/internal/auth"
	"github.com/rwa-portal/rwa-backend/internal/auth/middleware"
	authservice "github.com/rwa-portal/rwa-backend/internal/auth/service"
	"github.com/rwa-portal/rwa-backend/internal/conf"
	eventservice "github.com/rwa-portal/rwa-backend/internal/event/service"
	fileservice "github.com/rwa-portal/rwa-backend/internal/file/service"
	magazineservice "github.com/rwa-portal/rwa-backend/internal/magazine/service"
	memberservice "github.com/rwa-portal/rwa-backend/internal/member/service"
	"github.com/rwa-portal/rwa-backend/internal/pkg/logger"
	postservice "github.com/rwa-portal/rwa-backend/internal/post/service"
	reportservice "github.com/rwa-portal/rwa-backend/internal/report/service"
)

// Services bundles everything the HTTP server mounts.
type Services struct {
	File     *fileservice.FileService
	Auth     *authservice.AuthService
	Magazine *magazineservice.MagazineService
	Report   *reportservice.ReportService
	Member   *memberservice.MemberService
	Event    *eventservice.EventService
	Post     *postservice.PostService
}

type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

// NewHTTPServer builds the router. Reads are public; /api/admin is guarded
// by JWT plus the admin role. When uploadDir is non-empty it is served
// statically under /uploads (magazine covers).
func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	svcs *Services,
	jwtManager *auth.JWTManager,
	rdb *redis.Client,
	uploadDir string,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinLogger(log))
	router.Use(middleware.CORS(config.Server.ClientOrigins))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	if uploadDir != "" {
		router.Static("/uploads", uploadDir)
	}

	api := router.Group("/api")

	// public surface
	svcs.File.RegisterRoutes(api, middleware.UploadRateLimiter(rdb, log))
	svcs.Auth.RegisterRoutes(api, middleware.LoginRateLimiter(rdb, log))
	svcs.Magazine.RegisterPublicRoutes(api)
	svcs.Report.RegisterPublicRoutes(api)
	svcs.Member.RegisterPublicRoutes(api)
	svcs.Event.RegisterPublicRoutes(api)
	svcs.Post.RegisterPublicRoutes(api)

	// authenticated surface
	authed := api.Group("")
	authed.Use(middleware.JWTAuth(jwtManager, log))
	svcs.Auth.RegisterProtectedRoutes(authed)

	// admin surface
	admin := api.Group("/admin")
	admin.Use(middleware.JWTAuth(jwtManager, log), middleware.RequireRole(middleware.RoleAdmin))
	svcs.Magazine.RegisterAdminRoutes(admin)
	svcs.Report.RegisterAdminRoutes(admin)
	svcs.Member.RegisterAdminRoutes(admin)
	svcs.Event.RegisterAdminRoutes(admin)
	svcs.Post.RegisterAdminRoutes(admin)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	return &HTTPServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: log,
	}
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}
