package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service/ports"
)

type UserService struct {
	users ports.UserRepo
}

func NewUserService(users ports.UserRepo) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	return findUser(ctx, s.users, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, model.NewNotFound("user", username)
	}
	return u, nil
}

func findUser(ctx context.Context, users ports.UserRepo, id string) (*model.User, error) {
	u, err := users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, model.NewNotFound("user", id)
	}
	return u, nil
}
