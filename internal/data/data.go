package data

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	authdata "github.com/rwa-portal/rwa-backend/internal/auth/data"
	"github.com/rwa-portal/rwa-backend/internal/conf"
	eventdata "github.com/rwa-portal/rwa-backend/internal/event/data"
	filedata "github.com/rwa-portal/rwa-backend/internal/file/data"
	magazinedata "github.com/rwa-portal/rwa-backend/internal/magazine/data"
	memberdata "github.com/rwa-portal/rwa-backend/internal/member/data"
	"github.com/rwa-portal/rwa-backend/internal/pkg/logger"
	postdata "github.com/rwa-portal/rwa-backend/internal/post/data"
	reportdata "github.com/rwa-portal/rwa-backend/internal/report/data"
)

// Data aggregates the shared infrastructure clients. MinIOClient is nil
// unless the upload backend is "minio".
type Data struct {
	DB          *gorm.DB
	RedisClient *redis.Client
	MinIOClient *minio.Client
}

func NewData(config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	db, err := initDB(config, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init database: %w", err)
	}

	redisClient := initRedis(config)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	var minioClient *minio.Client
	if config.Upload.Backend == "minio" {
		minioClient, err = initMinIO(config)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init minio: %w", err)
		}
	}

	d := &Data{
		DB:          db,
		RedisClient: redisClient,
		MinIOClient: minioClient,
	}

	cleanup := func() {
		log.Info("cleaning up data resources")

		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
		redisClient.Close()
	}

	return d, cleanup, nil
}

func initDB(config *conf.Config, log *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(config.Database.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&filedata.FilePO{},
		&authdata.UserPO{},
		&magazinedata.MagazinePO{},
		&reportdata.ReportPO{},
		&memberdata.MemberPO{},
		&eventdata.EventPO{},
		&postdata.PostPO{},
	); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}

	log.Info("database initialized", zap.String("db", config.Database.DBName))
	return db, nil
}

func initRedis(config *conf.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Redis.Host, config.Redis.Port),
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
}

func initMinIO(config *conf.Config) (*minio.Client, error) {
	return minio.New(config.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.MinIO.AccessKey, config.MinIO.SecretKey, ""),
		Secure: config.MinIO.UseSSL,
	})
}
