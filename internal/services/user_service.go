package services

import (
	"context"
	"strings"

	"github.com/callcleaner/backend/internal/models"
	"github.com/google/uuid"
)

// UserService backs the admin user endpoints.
type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) List(ctx context.Context, page, size int) ([]models.User, Page, error) {
	page, size = normalizePage(page, size)
	users, total, err := s.users.List(ctx, page, size)
	if err != nil {
		return nil, Page{}, err
	}
	return users, newPage(page, size, total), nil
}

func (s *UserService) Get(ctx context.Context, rawID string) (*models.User, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, validationError("invalid user id")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFoundError("user not found")
	}
	return user, nil
}

// IsAdmin reports whether the active user holds the admin role or owns a confirmed
// address from adminEmails.
func (s *UserService) IsAdmin(ctx context.Context, id uuid.UUID, adminEmails []string) bool {
	user, err := s.users.FindByID(ctx, id)
	if err != nil || user == nil || !user.IsActive {
		return false
	}
	if user.Role == models.RoleAdmin {
		return true
	}
	if !user.EmailConfirmed {
		return false
	}
	for _, e := range adminEmails {
		if strings.EqualFold(e, user.Email) {
			return true
		}
	}
	return false
}

func (s *UserService) Deactivate(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return validationError("invalid user id")
	}
	ok, err := s.users.Deactivate(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFoundError("user not found")
	}
	return nil
}
