package biz

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/rwa-portal/rwa-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// File is the metadata record for one uploaded asset. StoragePath is
// server-internal and never leaves the service layer.
type File struct {
	ID           string
	StoredName   string
	OriginalName string
	MimeType     string
	Size         int64
	StoragePath  string
	URL          string
	Description  string
	Tags         []string
	Downloads    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListFilesRequest carries pagination and optional filters for List.
type ListFilesRequest struct {
	Page     int
	PageSize int
	MimeType string // exact match
	Search   string // free-text match against the original name
}

// FileList is a single page of records plus pagination totals.
type FileList struct {
	Items      []*File
	Page       int
	PageSize   int
	TotalItems int64
	TotalPages int64
}

// TypeStat is the per-MIME-type slice of the statistics breakdown.
type TypeStat struct {
	MimeType  string
	Count     int64
	TotalSize int64
}

// Stats aggregates all file records.
type Stats struct {
	TotalFiles     int64
	TotalSize      int64
	AvgSize        float64
	TotalDownloads int64
	FilesByType    []TypeStat
}

// FileRepo is the persistent record store for file metadata.
type FileRepo interface {
	Create(ctx context.Context, f *File) error
	GetByID(ctx context.Context, id string) (*File, error)
	List(ctx context.Context, req *ListFilesRequest) ([]*File, int64, error)
	Delete(ctx context.Context, id string) error
	// IncrementDownloads must be atomic in the store; concurrent downloads
	// must not lose updates.
	IncrementDownloads(ctx context.Context, id string) error
	Stats(ctx context.Context) (*Stats, error)
}

// ContentStore is the content area holding the physical bytes, addressed by
// stored name, disjoint from record identifiers. Save must not leave partial
// objects behind on failure. Open returns an error satisfying
// errors.Is(err, fs.ErrNotExist) when the object is absent.
type ContentStore interface {
	Save(ctx context.Context, key string, content io.Reader, contentType string) (written int64, path string, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Config bounds the upload pipeline.
type Config struct {
	MaxFileSize  int64
	AllowedTypes []string
	MinPageSize  int
	MaxPageSize  int
}

// UploadRequest is a validated-at-the-boundary upload: the content reader is
// untrusted and the declared size is never used.
type UploadRequest struct {
	OriginalName string
	DeclaredType string
	Content      io.Reader
	Description  string
	Tags         []string
}

// FileUseCase orchestrates the record store and the content area.
type FileUseCase struct {
	repo    FileRepo
	store   ContentStore
	cfg     Config
	allowed map[string]struct{}
	logger  *logger.Logger
}

func NewFileUseCase(repo FileRepo, store ContentStore, cfg Config, log *logger.Logger) *FileUseCase {
	if log == nil {
		log = logger.L()
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[t] = struct{}{}
	}
	if cfg.MinPageSize <= 0 {
		cfg.MinPageSize = 1
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	return &FileUseCase{
		repo:    repo,
		store:   store,
		cfg:     cfg,
		allowed: allowed,
		logger:  log,
	}
}

// MaxFileSize reports the configured per-file byte limit.
func (uc *FileUseCase) MaxFileSize() int64 {
	return uc.cfg.MaxFileSize
}

// Upload validates and stages the incoming bytes, then inserts the metadata
// record. Ordering is bytes first, metadata second: a failed or partial
// write never leaves a record behind, and a failed record insert rolls the
// staged bytes back.
func (uc *FileUseCase) Upload(ctx context.Context, req *UploadRequest) (*File, error) {
	if req == nil || req.Content == nil {
		return nil, ErrNoFile
	}

	if _, ok := uc.allowed[req.DeclaredType]; !ok {
		return nil, ErrInvalidType
	}

	storedName := StoredName(req.OriginalName)

	// Read at most one byte past the limit so oversize uploads are detected
	// without draining the whole stream.
	limited := io.LimitReader(req.Content, uc.cfg.MaxFileSize+1)

	written, path, err := uc.store.Save(ctx, storedName, limited, req.DeclaredType)
	if err != nil {
		uc.logger.Error("failed to stage upload",
			zap.String("stored_name", storedName),
			zap.String("original_name", req.OriginalName),
			zap.Error(err))
		return nil, ErrStorageFailed
	}

	if written > uc.cfg.MaxFileSize {
		if derr := uc.store.Delete(ctx, storedName); derr != nil {
			uc.logger.Warn("failed to remove oversize upload",
				zap.String("stored_name", storedName), zap.Error(derr))
		}
		return nil, ErrFileTooLarge
	}

	now := time.Now().UTC()
	f := &File{
		ID:           uuid.New().String(),
		StoredName:   storedName,
		OriginalName: req.OriginalName,
		MimeType:     req.DeclaredType,
		Size:         written, // bytes actually written, never client-declared
		StoragePath:  path,
		Description:  req.Description,
		Tags:         req.Tags,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.URL = "/api/files/" + f.ID + "/download"

	if err := uc.repo.Create(ctx, f); err != nil {
		uc.logger.Error("failed to persist file record, rolling back staged bytes",
			zap.String("stored_name", storedName), zap.Error(err))
		if derr := uc.store.Delete(ctx, storedName); derr != nil {
			uc.logger.Warn("failed to roll back staged bytes",
				zap.String("stored_name", storedName), zap.Error(derr))
		}
		return nil, ErrPersistFailed
	}

	return f, nil
}

// List returns one page of records, newest first. Page and page size are
// clamped to configured bounds; an empty result is not an error.
func (uc *FileUseCase) List(ctx context.Context, req *ListFilesRequest) (*FileList, error) {
	if req == nil {
		req = &ListFilesRequest{}
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < uc.cfg.MinPageSize {
		req.PageSize = uc.cfg.MinPageSize
	}
	if req.PageSize > uc.cfg.MaxPageSize {
		req.PageSize = uc.cfg.MaxPageSize
	}

	items, total, err := uc.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	totalPages := (total + int64(req.PageSize) - 1) / int64(req.PageSize)

	return &FileList{
		Items:      items,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// GetMetadata returns the record for id.
func (uc *FileUseCase) GetMetadata(ctx context.Context, id string) (*File, error) {
	return uc.repo.GetByID(ctx, id)
}

// Download resolves the record and opens its content for streaming. A record
// whose bytes are gone is a consistency fault: logged as such, surfaced as a
// 404-shaped error. The download counter is not touched here; callers invoke
// ConfirmDownload once the stream has completed.
func (uc *FileUseCase) Download(ctx context.Context, id string) (*File, io.ReadCloser, error) {
	f, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := uc.store.Open(ctx, f.StoredName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			uc.logger.Warn("file record references missing content",
				zap.String("id", f.ID),
				zap.String("stored_name", f.StoredName),
				zap.String("path", f.StoragePath))
			return nil, nil, ErrContentMissing
		}
		uc.logger.Error("failed to open file content",
			zap.String("id", f.ID), zap.Error(err))
		return nil, nil, ErrStorageFailed
	}

	return f, rc, nil
}

// ConfirmDownload increments the download counter. Called strictly after a
// stream has completed successfully; an aborted stream must not reach here.
func (uc *FileUseCase) ConfirmDownload(ctx context.Context, id string) {
	if err := uc.repo.IncrementDownloads(ctx, id); err != nil {
		uc.logger.Warn("failed to increment download counter",
			zap.String("id", id), zap.Error(err))
	}
}

// Delete removes the physical object best-effort, then the metadata record.
// A missing or undeletable physical file is logged but does not block the
// record deletion: the record never outlives a delete attempt.
func (uc *FileUseCase) Delete(ctx context.Context, id string) error {
	f, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.store.Delete(ctx, f.StoredName); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			uc.logger.Info("file content already absent on delete",
				zap.String("id", f.ID), zap.String("stored_name", f.StoredName))
		} else {
			uc.logger.Warn("failed to delete file content, removing record anyway",
				zap.String("id", f.ID),
				zap.String("stored_name", f.StoredName),
				zap.String("path", f.StoragePath),
				zap.Error(err))
		}
	}

	return uc.repo.Delete(ctx, id)
}

// Stats returns aggregate statistics across all records.
func (uc *FileUseCase) Stats(ctx context.Context) (*Stats, error) {
	return uc.repo.Stats(ctx)
}
