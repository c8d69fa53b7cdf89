package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rwa-portal/rwa-backend/internal/report/biz"
)

// ReportPO is the database model for AGM reports.
type ReportPO struct {
	ID           string    `gorm:"type:uuid;primarykey"`
	Title        string    `gorm:"column:title;size:512;not null"`
	Slug         string    `gorm:"column:slug;size:512;not null;uniqueIndex:idx_reports_slug"`
	Summary      string    `gorm:"column:summary;type:text"`
	Content      string    `gorm:"column:content;type:text"`
	FileURL      string    `gorm:"column:file_url;size:512"`
	OriginalName string    `gorm:"column:original_name;size:512"`
	Published    bool      `gorm:"column:published;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;index:idx_reports_created_at,sort:desc"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

func (ReportPO) TableName() string {
	return "reports"
}

type ReportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) *ReportRepo {
	return &ReportRepo{db: db}
}

func (r *ReportRepo) Create(ctx context.Context, rep *biz.Report) error {
	if err := r.db.WithContext(ctx).Create(toPO(rep)).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (r *ReportRepo) GetByID(ctx context.Context, id string) (*biz.Report, error) {
	return r.getBy(ctx, "id = ?", id)
}

func (r *ReportRepo) GetBySlug(ctx context.Context, slug string) (*biz.Report, error) {
	return r.getBy(ctx, "slug = ?", slug)
}

func (r *ReportRepo) getBy(ctx context.Context, cond string, arg string) (*biz.Report, error) {
	var po ReportPO
	err := r.db.WithContext(ctx).Where(cond, arg).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return toDomain(&po), nil
}

func (r *ReportRepo) List(ctx context.Context, req *biz.ListReportsRequest) ([]*biz.Report, int64, error) {
	query := r.db.WithContext(ctx).Model(&ReportPO{})
	if !req.IncludeDrafts {
		query = query.Where("published = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	var pos []ReportPO
	err := query.Order("created_at DESC").
		Limit(req.PageSize).
		Offset((req.Page - 1) * req.PageSize).
		Find(&pos).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}

	items := make([]*biz.Report, len(pos))
	for i := range pos {
		items[i] = toDomain(&pos[i])
	}
	return items, total, nil
}

func (r *ReportRepo) Update(ctx context.Context, rep *biz.Report) error {
	result := r.db.WithContext(ctx).Model(&ReportPO{}).
		Where("id = ?", rep.ID).
		Updates(map[string]interface{}{
			"title":      rep.Title,
			"summary":    rep.Summary,
			"content":    rep.Content,
			"file_url":   rep.FileURL,
			"published":  rep.Published,
			"updated_at": rep.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrReportNotFound
	}
	return nil
}

func (r *ReportRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ReportPO{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrReportNotFound
	}
	return nil
}

func toPO(r *biz.Report) *ReportPO {
	return &ReportPO{
		ID:           r.ID,
		Title:        r.Title,
		Slug:         r.Slug,
		Summary:      r.Summary,
		Content:      r.Content,
		FileURL:      r.FileURL,
		OriginalName: r.OriginalName,
		Published:    r.Published,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toDomain(po *ReportPO) *biz.Report {
	return &biz.Report{
		ID:           po.ID,
		Title:        po.Title,
		Slug:         po.Slug,
		Summary:      po.Summary,
		Content:      po.Content,
		FileURL:      po.FileURL,
		OriginalName: po.OriginalName,
		Published:    po.Published,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
}
