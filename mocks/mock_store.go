package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dhabedank/strategem/internal/store"
)

// MockStore is a mock implementation of store.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockStore) Save(ctx context.Context, a *store.Analysis) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockStore) Load(ctx context.Context, id string) (*store.Analysis, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Analysis), args.Error(1)
}

func (m *MockStore) List(ctx context.Context) ([]store.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Summary), args.Error(1)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
