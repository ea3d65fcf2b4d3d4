package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dhabedank/strategem/internal/core"
	"github.com/dhabedank/strategem/internal/ingest"
	"github.com/dhabedank/strategem/internal/service"
	"github.com/dhabedank/strategem/internal/store"
	"github.com/dhabedank/strategem/mocks"
)

func newRegistry(t *testing.T) *core.Registry {
	t.Helper()
	reg := core.NewRegistry()
	require.NoError(t, reg.Register(core.FrameworkSpec{
		Name:   "porter",
		Title:  "Operating Environment Structure",
		Fields: []core.FieldSpec{{Key: "rivalry", Required: true}},
	}))
	require.NoError(t, reg.Register(core.FrameworkSpec{
		Name:   "systems_dynamics",
		Title:  "Target System Dynamics",
		Fields: []core.FieldSpec{{Key: "system_overview", Required: true}},
	}))
	return reg
}

type fixture struct {
	svc       *service.AnalysisService
	transport *mocks.MockTransport
	store     *mocks.MockStore
}

func newFixture(t *testing.T, opts service.Options) fixture {
	t.Helper()
	transport := new(mocks.MockTransport)
	transport.On("Name").Return("mock").Maybe()
	st := new(mocks.MockStore)
	st.On("Name").Return("mock").Maybe()

	reg := newRegistry(t)
	runner := core.NewRunner(transport, core.RunnerConfig{CallTimeout: time.Second}, zap.NewNop())
	coordinator := core.NewCoordinator(reg, runner, zap.NewNop())

	if opts.NewID == nil {
		opts.NewID = func() string { return "fixed-id" }
	}
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC) }
	}
	return fixture{
		svc:       service.New(reg, coordinator, st, zap.NewNop(), opts),
		transport: transport,
		store:     st,
	}
}

func forFramework(name string) interface{} {
	return mock.MatchedBy(func(req core.Request) bool { return req.Framework == name })
}

func newContext(t *testing.T) *ingest.ProblemContext {
	t.Helper()
	pc, err := ingest.FromText("A grocer is losing share.", ingest.Options{Title: "Grocer"})
	require.NoError(t, err)
	return pc
}

func TestAnalyze_RunsStoresAndReports(t *testing.T) {
	f := newFixture(t, service.Options{})
	f.transport.On("Complete", mock.Anything, forFramework("porter")).Return(`{"Rivalry": "intense"}`, nil).Once()
	f.transport.On("Complete", mock.Anything, forFramework("systems_dynamics")).Return(`{"SystemOverview": "fragile"}`, nil).Once()
	f.store.On("Save", mock.Anything, mock.AnythingOfType("*store.Analysis")).Return(nil).Once()

	analysis, err := f.svc.Analyze(context.Background(), newContext(t), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "fixed-id", analysis.ID)
	assert.Equal(t, time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC), analysis.CreatedAt)
	assert.Equal(t, []string{"porter", "systems_dynamics"}, analysis.Results.Names())
	assert.Equal(t, core.StatusSucceeded, analysis.Results.Outcomes[0].Status)
	assert.Equal(t, "intense", analysis.Results.Outcomes[0].Record["rivalry"])
	assert.Contains(t, analysis.Report, "**Analysis ID:** fixed-id")
	assert.Contains(t, analysis.Report, "### Rivalry\n\nintense")

	f.transport.AssertExpectations(t)
	f.store.AssertExpectations(t)
}

func TestAnalyze_UsesDefaultFrameworks(t *testing.T) {
	f := newFixture(t, service.Options{DefaultFrameworks: []string{"systems_dynamics"}})
	f.transport.On("Complete", mock.Anything, forFramework("systems_dynamics")).Return(`{"system_overview": "x"}`, nil).Once()
	f.store.On("Save", mock.Anything, mock.Anything).Return(nil)

	analysis, err := f.svc.Analyze(context.Background(), newContext(t), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"systems_dynamics"}, analysis.Results.Names())
	f.transport.AssertNotCalled(t, "Complete", mock.Anything, forFramework("porter"))
}

func TestAnalyze_UnknownFrameworkMakesNoCalls(t *testing.T) {
	f := newFixture(t, service.Options{})

	_, err := f.svc.Analyze(context.Background(), newContext(t), []string{"porter", "swot"}, nil)

	assert.ErrorIs(t, err, core.ErrUnknownFramework)
	f.transport.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	f.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAnalyze_EmptyContext(t *testing.T) {
	f := newFixture(t, service.Options{})

	_, err := f.svc.Analyze(context.Background(), &ingest.ProblemContext{}, nil, nil)
	assert.ErrorIs(t, err, ingest.ErrEmptyContext)

	_, err = f.svc.Analyze(context.Background(), nil, nil, nil)
	assert.ErrorIs(t, err, ingest.ErrEmptyContext)
}

func TestAnalyze_SaveFailure(t *testing.T) {
	f := newFixture(t, service.Options{})
	f.transport.On("Complete", mock.Anything, mock.Anything).Return(`{"rivalry": "x", "system_overview": "y"}`, nil)
	f.store.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := f.svc.Analyze(context.Background(), newContext(t), []string{"porter"}, nil)
	assert.ErrorContains(t, err, "disk full")
}

func TestAnalyze_FailedFrameworkStillStored(t *testing.T) {
	f := newFixture(t, service.Options{})
	f.transport.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))
	f.store.On("Save", mock.Anything, mock.Anything).Return(nil)

	analysis, err := f.svc.Analyze(context.Background(), newContext(t), []string{"porter"}, nil)
	require.NoError(t, err)

	outcome := analysis.Results.Outcomes[0]
	assert.Equal(t, core.StatusFailed, outcome.Status)
	assert.Equal(t, core.ReasonInferenceUnavailable, outcome.Reason)
	assert.Contains(t, analysis.Report, "*Analysis Incomplete*")
}

func TestGetAndList(t *testing.T) {
	f := newFixture(t, service.Options{})
	want := &store.Analysis{ID: "a1"}
	f.store.On("Load", mock.Anything, "a1").Return(want, nil)
	f.store.On("Load", mock.Anything, "zz").Return(nil, store.ErrNotFound)
	f.store.On("List", mock.Anything).Return([]store.Summary{{ID: "a1"}}, nil)

	got, err := f.svc.Get(context.Background(), "a1")
	require.NoError(t, err)
	assert.Same(t, want, got)

	_, err = f.svc.Get(context.Background(), "zz")
	assert.ErrorIs(t, err, store.ErrNotFound)

	list, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.Len(t, f.svc.Frameworks(), 2)
}

func TestAnalyze_CancelledRunIsStillStored(t *testing.T) {
	transport := new(mocks.MockTransport)
	transport.On("Name").Return("mock").Maybe()
	fs, err := store.NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	reg := newRegistry(t)
	runner := core.NewRunner(transport, core.RunnerConfig{CallTimeout: time.Second}, zap.NewNop())
	svc := service.New(reg, core.NewCoordinator(reg, runner, zap.NewNop()), fs, zap.NewNop(), service.Options{
		NewID: func() string { return "cancelled-run" },
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	transport.On("Complete", mock.Anything, forFramework("porter")).Return(`{"rivalry": "intense"}`, nil).Once()
	transport.On("Complete", mock.Anything, forFramework("systems_dynamics")).
		Run(func(mock.Arguments) { cancel() }).
		Return("", context.Canceled)

	analysis, err := svc.Analyze(ctx, newContext(t), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, core.StatusSucceeded, analysis.Results.Outcomes[0].Status)
	assert.Equal(t, core.StatusFailed, analysis.Results.Outcomes[1].Status)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "cancelled-run", list[0].ID)

	stored, err := svc.Get(context.Background(), "cancelled-run")
	require.NoError(t, err)
	assert.Equal(t, "intense", stored.Results.Outcomes[0].Record["rivalry"])
}
