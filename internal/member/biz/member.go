package biz

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/rwa-portal/rwa-backend/internal/pkg/errors"
)

var (
	// ErrNameRequired rejects directory entries without a name.
	ErrNameRequired = apperrors.New(apperrors.CodeInvalidParams, "Member name is required")

	// ErrMemberNotFound is returned when no entry exists for the identifier.
	ErrMemberNotFound = apperrors.New(apperrors.CodeNotFound, "Member not found")
)

// Member is one entry in the office bearers / members directory. SortOrder
// drives the display order; lower comes first.
type Member struct {
	ID          string
	Name        string
	Designation string
	PhotoURL    string
	Bio         string
	Contact     string
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type MemberRepo interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id string) (*Member, error)
	List(ctx context.Context) ([]*Member, error)
	Update(ctx context.Context, m *Member) error
	Delete(ctx context.Context, id string) error
}

type CreateMemberRequest struct {
	Name        string
	Designation string
	PhotoURL    string
	Bio         string
	Contact     string
	SortOrder   int
}

type UpdateMemberRequest struct {
	Name        *string
	Designation *string
	PhotoURL    *string
	Bio         *string
	Contact     *string
	SortOrder   *int
}

// MemberUseCase manages the directory. The list is small and unpaginated;
// the association has tens of office bearers, not thousands.
type MemberUseCase struct {
	repo MemberRepo
}

func NewMemberUseCase(repo MemberRepo) *MemberUseCase {
	return &MemberUseCase{repo: repo}
}

func (uc *MemberUseCase) Create(ctx context.Context, req *CreateMemberRequest) (*Member, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	now := time.Now().UTC()
	m := &Member{
		ID:          uuid.New().String(),
		Name:        name,
		Designation: req.Designation,
		PhotoURL:    req.PhotoURL,
		Bio:         req.Bio,
		Contact:     req.Contact,
		SortOrder:   req.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (uc *MemberUseCase) List(ctx context.Context) ([]*Member, error) {
	return uc.repo.List(ctx)
}

func (uc *MemberUseCase) Get(ctx context.Context, id string) (*Member, error) {
	return uc.repo.GetByID(ctx, id)
}

func (uc *MemberUseCase) Update(ctx context.Context, id string, req *UpdateMemberRequest) (*Member, error) {
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		m.Name = name
	}
	if req.Designation != nil {
		m.Designation = *req.Designation
	}
	if req.PhotoURL != nil {
		m.PhotoURL = *req.PhotoURL
	}
	if req.Bio != nil {
		m.Bio = *req.Bio
	}
	if req.Contact != nil {
		m.Contact = *req.Contact
	}
	if req.SortOrder != nil {
		m.SortOrder = *req.SortOrder
	}
	m.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (uc *MemberUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}
