package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodsync/internal/core"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveAccount    = errors.New("account is disabled")
)

// Denylist stores revoked token ids.
type Denylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type RegisterInput struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=8,max=100"`
	FirstName string `json:"firstName" binding:"required,min=2,max=100"`
	LastName  string `json:"lastName" binding:"required,min=2,max=100"`
}

type Service struct {
	repo     UserRepository
	tokens   *TokenManager
	denylist Denylist
	log      *zap.Logger
}

func NewService(repo UserRepository, tokens *TokenManager, denylist Denylist, log *zap.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, denylist: denylist, log: log}
}

// REGISTER
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, Token, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, Token{}, core.NewValidationError("email", "is required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword(
		[]byte(in.Password),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return nil, Token{}, err
	}

	user := &User{
		Email:     email,
		Password:  string(hashedPassword),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      RoleMember,
		IsActive:  true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, core.ErrConflict) {
			return nil, Token{}, fmt.Errorf("email already exists: %w", core.ErrConflict)
		}
		return nil, Token{}, err
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, Token{}, err
	}
	s.log.Info("user registered", zap.Int64("userID", user.ID))
	return user, token, nil
}

// LOGIN
func (s *Service) Login(ctx context.Context, email, password string) (*User, Token, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, Token{}, ErrInvalidCredentials
		}
		return nil, Token{}, err
	}

	err = bcrypt.CompareHashAndPassword(
		[]byte(user.Password),
		[]byte(password),
	)
	if err != nil {
		return nil, Token{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, Token{}, ErrInactiveAccount
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, Token{}, err
	}
	return user, token, nil
}

// Logout revokes the token behind claims for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if err := s.denylist.Revoke(ctx, claims.ID, s.tokens.Remaining(claims)); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Refresh swaps the current token for a fresh one.
func (s *Service) Refresh(ctx context.Context, claims *Claims) (Token, error) {
	user, err := s.Me(ctx, claims.UserID)
	if err != nil {
		return Token{}, err
	}
	if !user.IsActive {
		return Token{}, ErrInactiveAccount
	}
	if err := s.Logout(ctx, claims); err != nil {
		return Token{}, err
	}
	return s.tokens.GenerateToken(user)
}

func (s *Service) Me(ctx context.Context, userID int64) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
