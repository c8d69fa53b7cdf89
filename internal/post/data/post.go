package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rwa-portal/rwa-backend/internal/post/biz"
)

// PostPO is the database model for news posts.
type PostPO struct {
	ID          string    `gorm:"type:uuid;primarykey"`
	Title       string    `gorm:"column:title;size:512;not null"`
	Slug        string    `gorm:"column:slug;size:512;not null;uniqueIndex:idx_posts_slug"`
	Body        string    `gorm:"column:body;type:text"`
	CoverURL    string    `gorm:"column:cover_url;size:512"`
	Published   bool      `gorm:"column:published;not null;default:false"`
	PublishedAt time.Time `gorm:"column:published_at;index:idx_posts_published_at,sort:desc"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null"`
}

func (PostPO) TableName() string {
	return "posts"
}

type PostRepo struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) *PostRepo {
	return &PostRepo{db: db}
}

func (r *PostRepo) Create(ctx context.Context, p *biz.Post) error {
	if err := r.db.WithContext(ctx).Create(toPO(p)).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *PostRepo) GetByID(ctx context.Context, id string) (*biz.Post, error) {
	return r.getBy(ctx, "id = ?", id)
}

func (r *PostRepo) GetBySlug(ctx context.Context, slug string) (*biz.Post, error) {
	return r.getBy(ctx, "slug = ?", slug)
}

func (r *PostRepo) getBy(ctx context.Context, cond string, arg string) (*biz.Post, error) {
	var po PostPO
	err := r.db.WithContext(ctx).Where(cond, arg).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return toDomain(&po), nil
}

func (r *PostRepo) List(ctx context.Context, req *biz.ListPostsRequest) ([]*biz.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&PostPO{})
	if !req.IncludeDrafts {
		query = query.Where("published = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	var pos []PostPO
	err := query.Order("created_at DESC").
		Limit(req.PageSize).
		Offset((req.Page - 1) * req.PageSize).
		Find(&pos).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}

	items := make([]*biz.Post, len(pos))
	for i := range pos {
		items[i] = toDomain(&pos[i])
	}
	return items, total, nil
}

func (r *PostRepo) Update(ctx context.Context, p *biz.Post) error {
	result := r.db.WithContext(ctx).Model(&PostPO{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"title":        p.Title,
			"body":         p.Body,
			"cover_url":    p.CoverURL,
			"published":    p.Published,
			"published_at": p.PublishedAt,
			"updated_at":   p.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrPostNotFound
	}
	return nil
}

func (r *PostRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&PostPO{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrPostNotFound
	}
	return nil
}

func toPO(p *biz.Post) *PostPO {
	return &PostPO{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Body:        p.Body,
		CoverURL:    p.CoverURL,
		Published:   p.Published,
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toDomain(po *PostPO) *biz.Post {
	return &biz.Post{
		ID:          po.ID,
		Title:       po.Title,
		Slug:        po.Slug,
		Body:        po.Body,
		CoverURL:    po.CoverURL,
		Published:   po.Published,
		PublishedAt: po.PublishedAt,
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
	}
}
