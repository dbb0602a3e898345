package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/publicvoice/internal/model"
	"github.com/iliyamo/publicvoice/internal/repository"
)

// UserService lists accounts for the admin dashboard.
type UserService struct {
	users repository.UserStore
}

// NewUserService wires a UserService.
func NewUserService(users repository.UserStore) *UserService {
	return &UserService{users: users}
}

// List returns users newest first.  Admin accounts are left out unless
// includeAdmin is set.  Admin only.
func (s *UserService) List(ctx context.Context, user *model.User, page Page, includeAdmin bool) ([]*model.User, error) {
	if err := requireAdmin(user); err != nil {
		return nil, err
	}
	offset, limit, err := page.bounds(UserPageDefault, UserPageMax)
	if err != nil {
		return nil, err
	}
	out, err := s.users.List(ctx, repository.UserQuery{IncludeAdmin: includeAdmin, Offset: offset, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}
