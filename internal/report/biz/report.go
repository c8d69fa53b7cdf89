package biz

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/rwa-portal/rwa-backend/internal/pkg/errors"
	"github.com/rwa-portal/rwa-backend/internal/pkg/logger"
)

var (
	// ErrReportTitleRequired rejects reports without a title.
	ErrReportTitleRequired = apperrors.New(apperrors.CodeInvalidParams, "Report title is required")

	// ErrReportNotFound is returned when no report exists for the identifier.
	ErrReportNotFound = apperrors.New(apperrors.CodeNotFound, "Report not found")
)

// Report is an AGM or committee report. Content is the inline body; FileURL
// optionally points at a full document in the file pipeline.
type Report struct {
	ID           string
	Title        string
	Slug         string
	Summary      string
	Content      string
	FileURL      string
	OriginalName string
	Published    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListReportsRequest carries pagination; IncludeDrafts is only set on the
// admin surface.
type ListReportsRequest struct {
	Page          int
	PageSize      int
	IncludeDrafts bool
}

type ReportList struct {
	Items      []*Report
	Page       int
	PageSize   int
	TotalItems int64
	TotalPages int64
}

type ReportRepo interface {
	Create(ctx context.Context, r *Report) error
	GetByID(ctx context.Context, id string) (*Report, error)
	GetBySlug(ctx context.Context, slug string) (*Report, error)
	List(ctx context.Context, req *ListReportsRequest) ([]*Report, int64, error)
	Update(ctx context.Context, r *Report) error
	Delete(ctx context.Context, id string) error
}

type CreateReportRequest struct {
	Title        string
	Summary      string
	Content      string
	FileURL      string
	OriginalName string
	Published    bool
}

type UpdateReportRequest struct {
	Title     *string
	Summary   *string
	Content   *string
	FileURL   *string
	Published *bool
}

// ReportUseCase manages AGM reports.
type ReportUseCase struct {
	repo   ReportRepo
	logger *logger.Logger
}

func NewReportUseCase(repo ReportRepo, log *logger.Logger) *ReportUseCase {
	if log == nil {
		log = logger.L()
	}
	return &ReportUseCase{repo: repo, logger: log}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the title and replaces every non-alphanumeric run with
// a single hyphen.
func Slugify(title string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

func (uc *ReportUseCase) Create(ctx context.Context, req *CreateReportRequest) (*Report, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrReportTitleRequired
	}

	slug := Slugify(title)
	// a taken slug gets a short uniquifier rather than an error
	if _, err := uc.repo.GetBySlug(ctx, slug); err == nil {
		slug = slug + "-" + uuid.New().String()[:8]
	}

	now := time.Now().UTC()
	r := &Report{
		ID:           uuid.New().String(),
		Title:        title,
		Slug:         slug,
		Summary:      req.Summary,
		Content:      req.Content,
		FileURL:      req.FileURL,
		OriginalName: req.OriginalName,
		Published:    req.Published,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (uc *ReportUseCase) List(ctx context.Context, req *ListReportsRequest) (*ReportList, error) {
	if req == nil {
		req = &ListReportsRequest{}
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

	return &ReportList{
		Items:      items,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalItems: total,
		TotalPages: (total + int64(req.PageSize) - 1) / int64(req.PageSize),
	}, nil
}

func (uc *ReportUseCase) Get(ctx context.Context, idOrSlug string) (*Report, error) {
	r, err := uc.repo.GetByID(ctx, idOrSlug)
	if err == nil {
		return r, nil
	}
	return uc.repo.GetBySlug(ctx, idOrSlug)
}

func (uc *ReportUseCase) Update(ctx context.Context, id string, req *UpdateReportRequest) (*Report, error) {
	r, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrReportTitleRequired
		}
		r.Title = title
	}
	if req.Summary != nil {
		r.Summary = *req.Summary
	}
	if req.Content != nil {
		r.Content = *req.Content
	}
	if req.FileURL != nil {
		r.FileURL = *req.FileURL
	}
	if req.Published != nil {
		r.Published = *req.Published
	}
	r.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (uc *ReportUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}
