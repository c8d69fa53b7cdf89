package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rwa-portal/rwa-backend/internal/magazine/biz"
)

// MagazinePO is the database model for magazine issues.
type MagazinePO struct {
	ID           string    `gorm:"type:uuid;primarykey"`
	Title        string    `gorm:"column:title;size:512;not null"`
	IssueDate    time.Time `gorm:"column:issue_date;not null;index:idx_magazines_issue_date,sort:desc"`
	Summary      string    `gorm:"column:summary;type:text"`
	FileID       string    `gorm:"column:file_id;type:uuid;not null"`
	FileURL      string    `gorm:"column:file_url;size:512;not null"`
	CoverURL     string    `gorm:"column:cover_url;size:512"`
	OriginalName string    `gorm:"column:original_name;size:512"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

func (MagazinePO) TableName() string {
	return "magazines"
}

// MagazineRepo is the gorm-backed issue store.
type MagazineRepo struct {
	db *gorm.DB
}

func NewMagazineRepo(db *gorm.DB) *MagazineRepo {
	return &MagazineRepo{db: db}
}

func (r *MagazineRepo) Create(ctx context.Context, m *biz.Magazine) error {
	if err := r.db.WithContext(ctx).Create(toPO(m)).Error; err != nil {
		return fmt.Errorf("failed to create magazine: %w", err)
	}
	return nil
}

func (r *MagazineRepo) GetByID(ctx context.Context, id string) (*biz.Magazine, error) {
	var po MagazinePO
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrMagazineNotFound
		}
		return nil, fmt.Errorf("failed to get magazine: %w", err)
	}
	return toDomain(&po), nil
}

func (r *MagazineRepo) List(ctx context.Context, req *biz.ListMagazinesRequest) ([]*biz.Magazine, int64, error) {
	query := r.db.WithContext(ctx).Model(&MagazinePO{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count magazines: %w", err)
	}

	var pos []MagazinePO
	err := query.Order("issue_date DESC").
		Limit(req.PageSize).
		Offset((req.Page - 1) * req.PageSize).
		Find(&pos).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list magazines: %w", err)
	}

	items := make([]*biz.Magazine, len(pos))
	for i := range pos {
		items[i] = toDomain(&pos[i])
	}
	return items, total, nil
}

func (r *MagazineRepo) Update(ctx context.Context, m *biz.Magazine) error {
	result := r.db.WithContext(ctx).Model(&MagazinePO{}).
		Where("id = ?", m.ID).
		Updates(map[string]interface{}{
			"title":      m.Title,
			"issue_date": m.IssueDate,
			"summary":    m.Summary,
			"updated_at": m.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update magazine: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrMagazineNotFound
	}
	return nil
}

func (r *MagazineRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&MagazinePO{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete magazine: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrMagazineNotFound
	}
	return nil
}

func toPO(m *biz.Magazine) *MagazinePO {
	return &MagazinePO{
		ID:           m.ID,
		Title:        m.Title,
		IssueDate:    m.IssueDate,
		Summary:      m.Summary,
		FileID:       m.FileID,
		FileURL:      m.FileURL,
		CoverURL:     m.CoverURL,
		OriginalName: m.OriginalName,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toDomain(po *MagazinePO) *biz.Magazine {
	return &biz.Magazine{
		ID:           po.ID,
		Title:        po.Title,
		IssueDate:    po.IssueDate,
		Summary:      po.Summary,
		FileID:       po.FileID,
		FileURL:      po.FileURL,
		CoverURL:     po.CoverURL,
		OriginalName: po.OriginalName,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
}
