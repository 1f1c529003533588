package mocks

import (
	"context"

	"github.com/bnema/gosocial-cli/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

// MockSessionRepository is a testify mock of ports.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

func NewMockSessionRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSessionRepository {
	m := &MockSessionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *MockSessionRepository) Load(ctx context.Context) (domain.PersistedSession, error) {
	ret := _m.Called(ctx)
	return ret.Get(0).(domain.PersistedSession), ret.Error(1)
}

func (_m *MockSessionRepository) Save(ctx context.Context, session domain.PersistedSession) error {
	return _m.Called(ctx, session).Error(0)
}

func (_m *MockSessionRepository) Delete(ctx context.Context) error {
	return _m.Called(ctx).Error(0)
}
