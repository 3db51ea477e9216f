package services

import (
	"context"
	"errors"
	"strings"

	"github.com/intervault/apiserver/types"
)

// ErrUsernameRequired is returned when a username is empty after trimming.
var ErrUsernameRequired = errors.New("username is required")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateUsername(ctx context.Context, id int, username string) error
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// SetUsername updates the user's display name. A blank name is invalid
// input, not a no-op.
func (s *UserService) SetUsername(ctx context.Context, userID int, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", ErrUsernameRequired
	}

	if err := s.repo.UpdateUsername(ctx, userID, username); err != nil {
		return "", err
	}
	return username, nil
}
