package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dhabedank/strategem/internal/core"
)

// MockTransport is a mock implementation of core.Transport.
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockTransport) Complete(ctx context.Context, req core.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
