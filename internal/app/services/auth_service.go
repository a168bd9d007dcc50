package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akhaled/studenthub/internal/app/models"
	"github.com/akhaled/studenthub/internal/app/repositories"
	"github.com/akhaled/studenthub/internal/pkg/apperrors"
	"github.com/akhaled/studenthub/internal/pkg/auth"
)

// AuthService defines the interface for registration and login
type AuthService interface {
	Register(ctx context.Context, username, password string) (int64, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
}

// authServiceImpl implements the AuthService interface
type authServiceImpl struct {
	userRepo *repositories.UserRepository
}

// NewAuthService creates a new auth service instance
func NewAuthService(userRepo *repositories.UserRepository) AuthService {
	return &authServiceImpl{
		userRepo: userRepo,
	}
}

// Register creates a user with a hashed password. A taken username
// returns apperrors.ErrUsernameTaken; the existing user is unaffected.
func (s *authServiceImpl) Register(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, apperrors.NewValidationError("username cannot be empty")
	}
	if password == "" {
		return 0, apperrors.NewValidationError("password cannot be empty")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("error hashing password: %w", err)
	}

	id, err := s.userRepo.Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, apperrors.ErrUsernameTaken) {
			return 0, apperrors.ErrUsernameTaken
		}
		return 0, fmt.Errorf("error registering user: %w", err)
	}

	return id, nil
}

// Login verifies credentials and returns the user. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if !auth.CheckPassword(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return user, nil
}
