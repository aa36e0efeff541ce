package web

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
)

// MockAuthService is a mock of ports.AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	args := m.Called(ctx, creds)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAuthService) IsOpen() bool {
	return m.Called().Bool(0)
}

// MockViewService is a mock of ports.ViewService
type MockViewService struct {
	mock.Mock
}

func (m *MockViewService) State() domain.ViewState {
	return m.Called().Get(0).(domain.ViewState)
}

func (m *MockViewService) Mounted() bool {
	return m.Called().Bool(0)
}

func (m *MockViewService) SelectTab(tab domain.Tab) error {
	return m.Called(tab).Error(0)
}

func (m *MockViewService) SelectNode(id string) {
	m.Called(id)
}

func (m *MockViewService) ClearSelection() {
	m.Called()
}

func (m *MockViewService) HandlePointer(ctx context.Context, ev domain.PointerEvent) error {
	return m.Called(ctx, ev).Error(0)
}
