package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mvucinic/billsight/internal/config"
	"github.com/mvucinic/billsight/internal/services/users"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// UserDirectory is the minimal account store contract the auth service needs.
type UserDirectory interface {
	Create(ctx context.Context, params users.CreateParams) (users.User, error)
	GetByEmail(ctx context.Context, email string) (users.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (users.User, error)
}

// Service handles registration, login and bearer-token authorization.
type Service struct {
	directory    UserDirectory
	tokenManager *TokenManager
}

func NewService(cfg config.AuthConfig, directory UserDirectory) (*Service, error) {
	tokenManager, err := NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, "billsight")
	if err != nil {
		return nil, err
	}
	return &Service{directory: directory, tokenManager: tokenManager}, nil
}

type RegisterParams struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (users.User, error) {
	username := strings.TrimSpace(params.Username)
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if username == "" || email == "" {
		return users.User{}, errors.New("username and email required")
	}

	hash, err := HashPassword(params.Password)
	if err != nil {
		return users.User{}, err
	}

	record, err := s.directory.Create(ctx, users.CreateParams{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(params.FirstName),
		LastName:     strings.TrimSpace(params.LastName),
	})
	if err != nil {
		return users.User{}, err
	}
	return record, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, users.User, error) {
	record, err := s.directory.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, users.User{}, ErrInvalidCredentials
		}
		return nil, users.User{}, err
	}

	ok, err := VerifyPassword(password, record.PasswordHash)
	if err != nil || !ok {
		return nil, users.User{}, ErrInvalidCredentials
	}

	pair, err := s.tokenManager.Generate(record.ID, record.Email)
	if err != nil {
		return nil, users.User{}, fmt.Errorf("issue tokens: %w", err)
	}
	return pair, record, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, users.User, error) {
	userID, err := s.tokenManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, users.User{}, ErrInvalidCredentials
	}

	record, err := s.directory.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, users.User{}, ErrInvalidCredentials
		}
		return nil, users.User{}, err
	}

	pair, err := s.tokenManager.Generate(record.ID, record.Email)
	if err != nil {
		return nil, users.User{}, fmt.Errorf("issue tokens: %w", err)
	}
	return pair, record, nil
}

// AuthorizeAccessToken resolves a bearer token to its account record.
func (s *Service) AuthorizeAccessToken(ctx context.Context, token string) (users.User, error) {
	userID, err := s.tokenManager.ValidateAccessToken(token)
	if err != nil {
		return users.User{}, err
	}
	return s.directory.GetByID(ctx, userID)
}
