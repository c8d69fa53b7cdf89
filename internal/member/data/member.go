package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rwa-portal/rwa-backend/internal/member/biz"
)

// MemberPO is the database model for directory entries.
type MemberPO struct {
	ID          string    `gorm:"type:uuid;primarykey"`
	Name        string    `gorm:"column:name;size:255;not null"`
	Designation string    `gorm:"column:designation;size:255"`
	PhotoURL    string    `gorm:"column:photo_url;size:512"`
	Bio         string    `gorm:"column:bio;type:text"`
	Contact     string    `gorm:"column:contact;size:255"`
	SortOrder   int       `gorm:"column:sort_order;not null;default:0;index:idx_members_sort_order"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null"`
}

func (MemberPO) TableName() string {
	return "members"
}

type MemberRepo struct {
	db *gorm.DB
}

func NewMemberRepo(db *gorm.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

func (r *MemberRepo) Create(ctx context.Context, m *biz.Member) error {
	if err := r.db.WithContext(ctx).Create(toPO(m)).Error; err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

func (r *MemberRepo) GetByID(ctx context.Context, id string) (*biz.Member, error) {
	var po MemberPO
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return toDomain(&po), nil
}

func (r *MemberRepo) List(ctx context.Context) ([]*biz.Member, error) {
	var pos []MemberPO
	err := r.db.WithContext(ctx).
		Order("sort_order ASC, name ASC").
		Find(&pos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	items := make([]*biz.Member, len(pos))
	for i := range pos {
		items[i] = toDomain(&pos[i])
	}
	return items, nil
}

func (r *MemberRepo) Update(ctx context.Context, m *biz.Member) error {
	result := r.db.WithContext(ctx).Model(&MemberPO{}).
		Where("id = ?", m.ID).
		Updates(map[string]interface{}{
			"name":        m.Name,
			"designation": m.Designation,
			"photo_url":   m.PhotoURL,
			"bio":         m.Bio,
			"contact":     m.Contact,
			"sort_order":  m.SortOrder,
			"updated_at":  m.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrMemberNotFound
	}
	return nil
}

func (r *MemberRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&MemberPO{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrMemberNotFound
	}
	return nil
}

func toPO(m *biz.Member) *MemberPO {
	return &MemberPO{
		ID:          m.ID,
		Name:        m.Name,
		Designation: m.Designation,
		PhotoURL:    m.PhotoURL,
		Bio:         m.Bio,
		Contact:     m.Contact,
		SortOrder:   m.SortOrder,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toDomain(po *MemberPO) *biz.Member {
	return &biz.Member{
		ID:          po.ID,
		Name:        po.Name,
		Designation: po.Designation,
		PhotoURL:    po.PhotoURL,
		Bio:         po.Bio,
		Contact:     po.Contact,
		SortOrder:   po.SortOrder,
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
	}
}
