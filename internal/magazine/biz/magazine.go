package biz

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	filebiz "github.com/rwa-portal/rwa-backend/internal/file/biz"
	"github.com/rwa-portal/rwa-backend/internal/pkg/logger"
)

// Magazine is one issue of the association's e-magazine. The PDF itself
// lives in the file pipeline; CoverURL points at a rendered first-page
// image served statically.
type Magazine struct {
	ID           string
	Title        string
	IssueDate    time.Time
	Summary      string
	FileID       string
	FileURL      string
	CoverURL     string
	OriginalName string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListMagazinesRequest carries pagination for List.
type ListMagazinesRequest struct {
	Page     int
	PageSize int
}

// MagazineList is one page of issues plus totals.
type MagazineList struct {
	Items      []*Magazine
	Page       int
	PageSize   int
	TotalItems int64
	TotalPages int64
}

// MagazineRepo is the persistent store for magazine issues.
type MagazineRepo interface {
	Create(ctx context.Context, m *Magazine) error
	GetByID(ctx context.Context, id string) (*Magazine, error)
	List(ctx context.Context, req *ListMagazinesRequest) ([]*Magazine, int64, error)
	Update(ctx context.Context, m *Magazine) error
	Delete(ctx context.Context, id string) error
}

// CreateMagazineRequest is a new issue plus its PDF content.
type CreateMagazineRequest struct {
	Title        string
	IssueDate    time.Time
	Summary      string
	OriginalName string
	Content      []byte
}

// UpdateMagazineRequest updates issue metadata; the PDF is immutable, a new
// issue replaces a bad one.
type UpdateMagazineRequest struct {
	Title     *string
	IssueDate *time.Time
	Summary   *string
}

// MagazineUseCase manages issues on top of the file pipeline. The PDF goes
// through the same staging path as any upload; the cover is rendered
// best-effort and its absence is not an error.
type MagazineUseCase struct {
	repo   MagazineRepo
	files  *filebiz.FileUseCase
	covers CoverRenderer
	store  filebiz.ContentStore
	logger *logger.Logger
}

func NewMagazineUseCase(repo MagazineRepo, files *filebiz.FileUseCase, covers CoverRenderer, store filebiz.ContentStore, log *logger.Logger) *MagazineUseCase {
	if log == nil {
		log = logger.L()
	}
	return &MagazineUseCase{
		repo:   repo,
		files:  files,
		covers: covers,
		store:  store,
		logger: log,
	}
}

// Create stages the PDF through the file pipeline, renders the cover, then
// inserts the issue record. A failed record insert removes the staged file.
func (uc *MagazineUseCase) Create(ctx context.Context, req *CreateMagazineRequest) (*Magazine, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}
	if len(req.Content) == 0 {
		return nil, filebiz.ErrNoFile
	}

	uploaded, err := uc.files.Upload(ctx, &filebiz.UploadRequest{
		OriginalName: req.OriginalName,
		DeclaredType: "application/pdf",
		Content:      bytes.NewReader(req.Content),
		Description:  "E-magazine: " + req.Title,
		Tags:         []string{"magazine"},
	})
	if err != nil {
		return nil, err
	}

	coverURL := uc.renderCover(ctx, uploaded.StoredName, req.Content)

	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now().UTC()
	}

	now := time.Now().UTC()
	m := &Magazine{
		ID:           uuid.New().String(),
		Title:        strings.TrimSpace(req.Title),
		IssueDate:    issueDate,
		Summary:      req.Summary,
		FileID:       uploaded.ID,
		FileURL:      uploaded.URL,
		CoverURL:     coverURL,
		OriginalName: uploaded.OriginalName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.repo.Create(ctx, m); err != nil {
		uc.logger.Error("failed to persist magazine, removing staged file",
			zap.String("file_id", uploaded.ID), zap.Error(err))
		if derr := uc.files.Delete(ctx, uploaded.ID); derr != nil {
			uc.logger.Warn("failed to roll back magazine file",
				zap.String("file_id", uploaded.ID), zap.Error(derr))
		}
		return nil, ErrPersistFailed
	}

	return m, nil
}

// renderCover renders and stores the first-page PNG. Failures are logged
// and swallowed: an issue without a cover is still an issue.
func (uc *MagazineUseCase) renderCover(ctx context.Context, storedName string, pdf []byte) string {
	cover, err := uc.covers.Render(pdf)
	if err != nil {
		uc.logger.Warn("failed to render magazine cover",
			zap.String("stored_name", storedName), zap.Error(err))
		return ""
	}

	coverName := strings.TrimSuffix(storedName, ".pdf") + "-cover.png"
	if _, _, err := uc.store.Save(ctx, coverName, bytes.NewReader(cover), "image/png"); err != nil {
		uc.logger.Warn("failed to store magazine cover",
			zap.String("cover_name", coverName), zap.Error(err))
		return ""
	}

	return "/uploads/" + coverName
}

// List returns one page of issues, newest issue date first.
func (uc *MagazineUseCase) List(ctx context.Context, req *ListMagazinesRequest) (*MagazineList, error) {
	if req == nil {
		req = &ListMagazinesRequest{}
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 12
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	items, total, err := uc.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	return &MagazineList{
		Items:      items,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalItems: total,
		TotalPages: (total + int64(req.PageSize) - 1) / int64(req.PageSize),
	}, nil
}

func (uc *MagazineUseCase) Get(ctx context.Context, id string) (*Magazine, error) {
	return uc.repo.GetByID(ctx, id)
}

// Update patches issue metadata.
func (uc *MagazineUseCase) Update(ctx context.Context, id string, req *UpdateMagazineRequest) (*Magazine, error) {
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, ErrTitleRequired
		}
		m.Title = strings.TrimSpace(*req.Title)
	}
	if req.IssueDate != nil {
		m.IssueDate = *req.IssueDate
	}
	if req.Summary != nil {
		m.Summary = *req.Summary
	}
	m.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes the issue record, its PDF and its cover. The underlying
// file delete tolerates already-missing bytes.
func (uc *MagazineUseCase) Delete(ctx context.Context, id string) error {
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if m.FileID != "" {
		if err := uc.files.Delete(ctx, m.FileID); err != nil {
			uc.logger.Warn("failed to delete magazine file, removing record anyway",
				zap.String("magazine_id", m.ID),
				zap.String("file_id", m.FileID),
				zap.Error(err))
		}
	}

	if m.CoverURL != "" {
		coverName := strings.TrimPrefix(m.CoverURL, "/uploads/")
		if err := uc.store.Delete(ctx, coverName); err != nil {
			uc.logger.Warn("failed to delete magazine cover",
				zap.String("magazine_id", m.ID),
				zap.String("cover_name", coverName),
				zap.Error(err))
		}
	}

	return uc.repo.Delete(ctx, id)
}
