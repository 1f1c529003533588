package application

import (
	"context"
	"fmt"

	"github.com/bnema/gosocial-cli/internal/domain"
	"github.com/bnema/gosocial-cli/internal/ports"
)

type UserService struct {
	api ports.UserAPI
}

func NewUserService(api ports.UserAPI) *UserService {
	return &UserService{api: api}
}

func (s *UserService) Get(ctx context.Context, id domain.ID) (domain.UserSummary, error) {
	if err := domain.RequireID("user", id); err != nil {
		return domain.UserSummary{}, err
	}
	user, err := s.api.GetUser(ctx, id)
	if err != nil {
		return domain.UserSummary{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return user, nil
}

func (s *UserService) Posts(ctx context.Context, id domain.ID) ([]domain.Post, error) {
	if err := domain.RequireID("user", id); err != nil {
		return nil, err
	}
	posts, err := s.api.GetUserPosts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list posts of user %s: %w", id, err)
	}
	return posts, nil
}

func (s *UserService) Follow(ctx context.Context, id domain.ID) error {
	if err := domain.RequireID("user", id); err != nil {
		return err
	}
	if err := s.api.Follow(ctx, id); err != nil {
		return fmt.Errorf("follow user %s: %w", id, err)
	}
	return nil
}

func (s *UserService) Unfollow(ctx context.Context, id domain.ID) error {
	if err := domain.RequireID("user", id); err != nil {
		return err
	}
	if err := s.api.Unfollow(ctx, id); err != nil {
		return fmt.Errorf("unfollow user %s: %w", id, err)
	}
	return nil
}

func (s *UserService) Followers(ctx context.Context, id domain.ID) ([]domain.UserSummary, error) {
	if err := domain.RequireID("user", id); err != nil {
		return nil, err
	}
	users, err := s.api.ListFollowers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list followers of user %s: %w", id, err)
	}
	return users, nil
}

func (s *UserService) Following(ctx context.Context, id domain.ID) ([]domain.UserSummary, error) {
	if err := domain.RequireID("user", id); err != nil {
		return nil, err
	}
	users, err := s.api.ListFollowing(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list users followed by %s: %w", id, err)
	}
	return users, nil
}
