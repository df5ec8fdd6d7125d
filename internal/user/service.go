package user

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrUserNotFound = errors.New("user not found")
)

// Service handles user business logic
type Service struct {
	repo *Repository
}

// NewService creates a new user service with repository dependency injected
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Get retrieves the caller's profile
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Update creates or modifies the caller's profile
func (s *Service) Update(ctx context.Context, id string, req *UpdateUserRequest) (*User, error) {
	return s.repo.Upsert(ctx, id, req)
}

// SetFCMToken registers the caller's device token for push notifications
func (s *Service) SetFCMToken(ctx context.Context, id, token string) error {
	return s.repo.SetFCMToken(ctx, id, token)
}
