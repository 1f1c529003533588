package mocks

import (
	"context"

	"github.com/bnema/gosocial-cli/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

// MockUserAPI is a testify mock of ports.UserAPI.
type MockUserAPI struct {
	mock.Mock
}

func NewMockUserAPI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUserAPI {
	m := &MockUserAPI{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *MockUserAPI) GetUser(ctx context.Context, id domain.ID) (domain.UserSummary, error) {
	ret := _m.Called(ctx, id)
	return ret.Get(0).(domain.UserSummary), ret.Error(1)
}

func (_m *MockUserAPI) GetUserPosts(ctx context.Context, id domain.ID) ([]domain.Post, error) {
	ret := _m.Called(ctx, id)
	var posts []domain.Post
	if v := ret.Get(0); v != nil {
		posts = v.([]domain.Post)
	}
	return posts, ret.Error(1)
}

func (_m *MockUserAPI) Follow(ctx context.Context, id domain.ID) error {
	return _m.Called(ctx, id).Error(0)
}

func (_m *MockUserAPI) Unfollow(ctx context.Context, id domain.ID) error {
	return _m.Called(ctx, id).Error(0)
}

func (_m *MockUserAPI) ListFollowers(ctx context.Context, id domain.ID) ([]domain.UserSummary, error) {
	ret := _m.Called(ctx, id)
	var users []domain.UserSummary
	if v := ret.Get(0); v != nil {
		users = v.([]domain.UserSummary)
	}
	return users, ret.Error(1)
}

func (_m *MockUserAPI) ListFollowing(ctx context.Context, id domain.ID) ([]domain.UserSummary, error) {
	ret := _m.Called(ctx, id)
	var users []domain.UserSummary
	if v := ret.Get(0); v != nil {
		users = v.([]domain.UserSummary)
	}
	return users, ret.Error(1)
}
