package mocks

import (
	"context"

	"github.com/bnema/gosocial-cli/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

// MockPostAPI is a testify mock of ports.PostAPI.
type MockPostAPI struct {
	mock.Mock
}

func NewMockPostAPI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPostAPI {
	m := &MockPostAPI{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *MockPostAPI) FetchFeed(ctx context.Context, query domain.FeedQuery) (domain.FeedResult, error) {
	ret := _m.Called(ctx, query)
	return ret.Get(0).(domain.FeedResult), ret.Error(1)
}

func (_m *MockPostAPI) GetPost(ctx context.Context, id domain.ID) (domain.Post, error) {
	ret := _m.Called(ctx, id)
	return ret.Get(0).(domain.Post), ret.Error(1)
}

func (_m *MockPostAPI) GetPostDetail(ctx context.Context, id domain.ID) (domain.PostDetail, error) {
	ret := _m.Called(ctx, id)
	return ret.Get(0).(domain.PostDetail), ret.Error(1)
}

func (_m *MockPostAPI) CreatePost(ctx context.Context, input domain.CreatePostInput) (domain.Post, error) {
	ret := _m.Called(ctx, input)
	return ret.Get(0).(domain.Post), ret.Error(1)
}

func (_m *MockPostAPI) UpdatePost(ctx context.Context, id domain.ID, input domain.UpdatePostInput) (domain.Post, error) {
	ret := _m.Called(ctx, id, input)
	return ret.Get(0).(domain.Post), ret.Error(1)
}

func (_m *MockPostAPI) AddComment(ctx context.Context, postID domain.ID, input domain.CreateCommentInput) (domain.Comment, error) {
	ret := _m.Called(ctx, postID, input)
	return ret.Get(0).(domain.Comment), ret.Error(1)
}
