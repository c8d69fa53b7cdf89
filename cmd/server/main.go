package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rwa-portal/rwa-backend/internal/auth"
	authbiz "github.com/rwa-portal/rwa-backend/internal/auth/biz"
	authdata "github.com/rwa-portal/rwa-backend/internal/auth/data"
	authservice "github.com/rwa-portal/rwa-backend/internal/auth/service"
	"github.com/rwa-portal/rwa-backend/internal/conf"
	"github.com/rwa-portal/rwa-backend/internal/data"
	eventbiz "github.com/rwa-portal/rwa-backend/internal/event/biz"
	eventdata "github.com/rwa-portal/rwa-backend/internal/event/data"
	eventservice "github.com/rwa-portal/rwa-backend/internal/event/service"
	filebiz "github.com/rwa-portal/rwa-backend/internal/file/biz"
	filedata "github.com/rwa-portal/rwa-backend/internal/file/data"
	fileservice "github.com/rwa-portal/rwa-backend/internal/file/service"
	magazinebiz "github.com/rwa-portal/rwa-backend/internal/magazine/biz"
	magazinedata "github.com/rwa-portal/rwa-backend/internal/magazine/data"
	magazineservice "github.com/rwa-portal/rwa-backend/internal/magazine/service"
	memberbiz "github.com/rwa-portal/rwa-backend/internal/member/biz"
	memberdata "github.com/rwa-portal/rwa-backend/internal/member/data"
	memberservice "github.com/rwa-portal/rwa-backend/internal/member/service"
	"github.com/rwa-portal/rwa-backend/internal/pkg/logger"
	postbiz "github.com/rwa-portal/rwa-backend/internal/post/biz"
	postdata "github.com/rwa-portal/rwa-backend/internal/post/data"
	postservice "github.com/rwa-portal/rwa-backend/internal/post/service"
	reportbiz "github.com/rwa-portal/rwa-backend/internal/report/biz"
	reportdata "github.com/rwa-portal/rwa-backend/internal/report/data"
	reportservice "github.com/rwa-portal/rwa-backend/internal/report/service"
	"github.com/rwa-portal/rwa-backend/internal/server"
)

var configFile = flag.String("config", "config.yaml", "config file path")

func main() {
	flag.Parse()

	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logConfig := &logger.Config{
		Level:            config.Log.Level,
		Format:           config.Log.Format,
		Output:           config.Log.Output,
		EnableCaller:     config.Log.EnableCaller,
		EnableStacktrace: config.Log.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   config.Log.File.Filename,
			MaxSize:    config.Log.File.MaxSize,
			MaxAge:     config.Log.File.MaxAge,
			MaxBackups: config.Log.File.MaxBackups,
			Compress:   config.Log.File.Compress,
		},
	}

	log, err := logger.New(logConfig)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if err := logger.InitGlobal(logConfig); err != nil {
		log.Fatal("failed to initialize global logger", zap.Error(err))
	}

	log.Info("config loaded", zap.String("file", *configFile))

	d, cleanup, err := data.NewData(config, log)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	// content store: local disk by default, MinIO when configured
	var contentStore filebiz.ContentStore
	var uploadDir string
	switch config.Upload.Backend {
	case "minio":
		store, err := filedata.NewMinIOStore(context.Background(), d.MinIOClient, config.MinIO.Bucket)
		if err != nil {
			log.Fatal("failed to initialize minio content store", zap.Error(err))
		}
		contentStore = store
	default:
		store, err := filedata.NewDiskStore(config.Upload.Dir)
		if err != nil {
			log.Fatal("failed to initialize disk content store", zap.Error(err))
		}
		contentStore = store
		uploadDir = store.Dir()
	}

	jwtManager := auth.NewJWTManager(config.Auth.JWTSecret, config.Auth.JWTIssuer, config.Auth.TokenTTL)

	// repositories
	fileRepo := filedata.NewFileRepo(d.DB)
	userRepo := authdata.NewUserRepo(d.DB)
	magazineRepo := magazinedata.NewMagazineRepo(d.DB)
	reportRepo := reportdata.NewReportRepo(d.DB)
	memberRepo := memberdata.NewMemberRepo(d.DB)
	eventRepo := eventdata.NewEventRepo(d.DB)
	postRepo := postdata.NewPostRepo(d.DB)

	// use cases
	fileUseCase := filebiz.NewFileUseCase(fileRepo, contentStore, filebiz.Config{
		MaxFileSize:  config.Upload.MaxFileSize,
		AllowedTypes: config.Upload.AllowedTypes,
		MinPageSize:  config.Upload.MinPageSize,
		MaxPageSize:  config.Upload.MaxPageSize,
	}, log)
	authUseCase := authbiz.NewAuthUseCase(userRepo, jwtManager, log)
	magazineUseCase := magazinebiz.NewMagazineUseCase(
		magazineRepo, fileUseCase, magazinebiz.NewPDFCoverRenderer(), contentStore, log)
	reportUseCase := reportbiz.NewReportUseCase(reportRepo, log)
	memberUseCase := memberbiz.NewMemberUseCase(memberRepo)
	eventUseCase := eventbiz.NewEventUseCase(eventRepo)
	postUseCase := postbiz.NewPostUseCase(postRepo)

	// services
	svcs := &server.Services{
		File:     fileservice.NewFileService(fileUseCase, log),
		Auth:     authservice.NewAuthService(authUseCase, log),
		Magazine: magazineservice.NewMagazineService(magazineUseCase, log),
		Report:   reportservice.NewReportService(reportUseCase, log),
		Member:   memberservice.NewMemberService(memberUseCase, log),
		Event:    eventservice.NewEventService(eventUseCase, log),
		Post:     postservice.NewPostService(postUseCase, log),
	}

	httpServer := server.NewHTTPServer(config, log, svcs, jwtManager, d.RedisClient, uploadDir)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
