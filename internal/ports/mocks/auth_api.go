package mocks

import (
	"context"

	"github.com/bnema/gosocial-cli/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

// MockAuthAPI is a testify mock of ports.AuthAPI.
type MockAuthAPI struct {
	mock.Mock
}

func NewMockAuthAPI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAuthAPI {
	m := &MockAuthAPI{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *MockAuthAPI) Register(ctx context.Context, input domain.RegisterInput) error {
	return _m.Called(ctx, input).Error(0)
}

func (_m *MockAuthAPI) Activate(ctx context.Context, token string) error {
	return _m.Called(ctx, token).Error(0)
}

func (_m *MockAuthAPI) IssueToken(ctx context.Context, credentials domain.Credentials) ([]byte, error) {
	ret := _m.Called(ctx, credentials)
	var body []byte
	if v := ret.Get(0); v != nil {
		body = v.([]byte)
	}
	return body, ret.Error(1)
}
