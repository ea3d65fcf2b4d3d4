package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dhabedank/strategem/internal/core"
	"github.com/dhabedank/strategem/internal/ingest"
	"github.com/dhabedank/strategem/internal/store"
)

// MockAnalysisService is a mock implementation of web.AnalysisService.
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, pc *ingest.ProblemContext, frameworks []string, observer core.Observer) (*store.Analysis, error) {
	args := m.Called(ctx, pc, frameworks, observer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Analysis), args.Error(1)
}

func (m *MockAnalysisService) Get(ctx context.Context, id string) (*store.Analysis, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Analysis), args.Error(1)
}

func (m *MockAnalysisService) List(ctx context.Context) ([]store.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Summary), args.Error(1)
}

func (m *MockAnalysisService) Frameworks() []core.FrameworkSpec {
	args := m.Called()
	return args.Get(0).([]core.FrameworkSpec)
}
