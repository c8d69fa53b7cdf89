package biz

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/rwa-portal/rwa-backend/internal/pkg/errors"
	reportbiz "github.com/rwa-portal/rwa-backend/internal/report/biz"
)

var (
	// ErrPostTitleRequired rejects posts without a title.
	ErrPostTitleRequired = apperrors.New(apperrors.CodeInvalidParams, "Post title is required")

	// ErrPostNotFound is returned when no post exists for the identifier.
	ErrPostNotFound = apperrors.New(apperrors.CodeNotFound, "Post not found")
)

// Post is a news item or announcement on the portal front page.
type Post struct {
	ID          string
	Title       string
	Slug        string
	Body        string
	CoverURL    string
	Published   bool
	PublishedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ListPostsRequest struct {
	Page          int
	PageSize      int
	IncludeDrafts bool
}

type PostList struct {
	Items      []*Post
	Page       int
	PageSize   int
	TotalItems int64
	TotalPages int64
}

type PostRepo interface {
	Create(ctx context.Context, p *Post) error
	GetByID(ctx context.Context, id string) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context, req *ListPostsRequest) ([]*Post, int64, error)
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id string) error
}

type CreatePostRequest struct {
	Title     string
	Body      string
	CoverURL  string
	Published bool
}

type UpdatePostRequest struct {
	Title     *string
	Body      *string
	CoverURL  *string
	Published *bool
}

type PostUseCase struct {
	repo PostRepo
}

func NewPostUseCase(repo PostRepo) *PostUseCase {
	return &PostUseCase{repo: repo}
}

func (uc *PostUseCase) Create(ctx context.Context, req *CreatePostRequest) (*Post, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrPostTitleRequired
	}

	slug := reportbiz.Slugify(title)
	if _, err := uc.repo.GetBySlug(ctx, slug); err == nil {
		slug = slug + "-" + uuid.New().String()[:8]
	}

	now := time.Now().UTC()
	p := &Post{
		ID:        uuid.New().String(),
		Title:     title,
		Slug:      slug,
		Body:      req.Body,
		CoverURL:  req.CoverURL,
		Published: req.Published,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Published {
		p.PublishedAt = now
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *PostUseCase) List(ctx context.Context, req *ListPostsRequest) (*PostList, error) {
	if req == nil {
		req = &ListPostsRequest{}
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

	return &PostList{
		Items:      items,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalItems: total,
		TotalPages: (total + int64(req.PageSize) - 1) / int64(req.PageSize),
	}, nil
}

func (uc *PostUseCase) Get(ctx context.Context, idOrSlug string) (*Post, error) {
	p, err := uc.repo.GetByID(ctx, idOrSlug)
	if err == nil {
		return p, nil
	}
	return uc.repo.GetBySlug(ctx, idOrSlug)
}

func (uc *PostUseCase) Update(ctx context.Context, id string, req *UpdatePostRequest) (*Post, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrPostTitleRequired
		}
		p.Title = title
	}
	if req.Body != nil {
		p.Body = *req.Body
	}
	if req.CoverURL != nil {
		p.CoverURL = *req.CoverURL
	}
	if req.Published != nil {
		// first transition to published stamps the publish time
		if *req.Published && !p.Published {
			p.PublishedAt = time.Now().UTC()
		}
		p.Published = *req.Published
	}
	p.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *PostUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}
