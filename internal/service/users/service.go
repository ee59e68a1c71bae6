// Package users manages user registration and lookup.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/fundcircle/fundcircle/internal/models"
	"github.com/fundcircle/fundcircle/internal/repository"
	"github.com/fundcircle/fundcircle/pkg/logger"
)

// UserRepository interface for user persistence operations.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Update(user *models.User) error
	List() ([]models.User, error)
}

var (
	// ErrUsernameRequired is returned when registration omits the username.
	ErrUsernameRequired = errors.New("username is required")
	// ErrUsernameTaken is returned when the username already exists.
	ErrUsernameTaken = errors.New("username is already taken")
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Service manages user accounts.
type Service struct {
	repo UserRepository
	log  *logger.Logger
}

// NewService creates a new user service.
func NewService(repo *repository.UserRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// NewServiceWithInterfaces creates a new user service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(repo UserRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Register creates a new user account. Usernames are unique; registering an
// existing username fails with ErrUsernameTaken.
//
//nolint:revive // ctx reserved for future context-aware persistence
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}

	if _, err := s.repo.GetByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username %s: %w", username, err)
	}

	user := &models.User{
		Username:    username,
		Email:       in.Email,
		DisplayName: in.DisplayName,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.log.Info().
		Uint("user_id", user.ID).
		Str("username", user.Username).
		Msg("User registered")

	return user, nil
}

// Get returns one user by ID.
//
//nolint:revive // ctx reserved for future context-aware persistence
func (s *Service) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.repo.GetByID(id)
}

// List returns all users, oldest first.
//
//nolint:revive // ctx reserved for future context-aware persistence
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List()
}
