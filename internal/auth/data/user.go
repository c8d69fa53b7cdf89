package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rwa-portal/rwa-backend/internal/auth/biz"
)

// UserPO is the database model for accounts.
type UserPO struct {
	ID           string    `gorm:"type:uuid;primarykey"`
	Email        string    `gorm:"column:email;size:255;not null;uniqueIndex:idx_users_email"`
	Name         string    `gorm:"column:name;size:255"`
	Role         string    `gorm:"column:role;size:32;not null;default:member"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

func (UserPO) TableName() string {
	return "users"
}

// UserRepo is the gorm-backed account store.
type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, u *biz.User) error {
	po := toPO(u)
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return biz.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*biz.User, error) {
	var po UserPO
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return toDomain(&po), nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*biz.User, error) {
	var po UserPO
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toDomain(&po), nil
}

func toPO(u *biz.User) *UserPO {
	return &UserPO{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toDomain(po *UserPO) *biz.User {
	return &biz.User{
		ID:           po.ID,
		Email:        po.Email,
		Name:         po.Name,
		Role:         po.Role,
		PasswordHash: po.PasswordHash,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
}
