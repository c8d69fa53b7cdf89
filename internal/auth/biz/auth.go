package biz

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rwa-portal/rwa-backend/internal/auth"
	"github.com/rwa-portal/rwa-backend/internal/pkg/logger"
)

// User is a site account. Only admins can mutate content; members exist so
// the association can later open protected pages to its membership.
type User struct {
	ID           string
	Email        string
	Name         string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepo is the persistent store for accounts.
type UserRepo interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// RegisterRequest carries a new account's fields.
type RegisterRequest struct {
	Email    string
	Name     string
	Password string
	Role     string
}

// LoginResult pairs the issued token with the account it belongs to.
type LoginResult struct {
	Token string
	User  *User
}

// AuthUseCase implements account registration and credential login.
type AuthUseCase struct {
	repo   UserRepo
	tokens *auth.JWTManager
	logger *logger.Logger
}

func NewAuthUseCase(repo UserRepo, tokens *auth.JWTManager, log *logger.Logger) *AuthUseCase {
	if log == nil {
		log = logger.L()
	}
	return &AuthUseCase{repo: repo, tokens: tokens, logger: log}
}

// Register creates an account with a bcrypt-hashed password. Emails are
// unique; roles default to "member".
func (uc *AuthUseCase) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return nil, ErrWeakPassword
	}

	if _, err := uc.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = "member"
	}

	now := time.Now().UTC()
	u := &User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	uc.logger.Info("account created",
		zap.String("user_id", u.ID), zap.String("role", u.Role))
	return u, nil
}

// Login verifies credentials and issues an access token. A wrong password
// and an unknown email are indistinguishable to the caller.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		uc.logger.Warn("failed login attempt", zap.String("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}

	token, err := uc.tokens.GenerateToken(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, User: u}, nil
}

// Me returns the account behind an authenticated request.
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*User, error) {
	return uc.repo.GetByID(ctx, userID)
}
