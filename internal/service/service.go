// Package service runs analyses end to end for the CLI and the web API.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dhabedank/strategem/internal/core"
	"github.com/dhabedank/strategem/internal/ingest"
	"github.com/dhabedank/strategem/internal/report"
	"github.com/dhabedank/strategem/internal/store"
)

// saveTimeout bounds persistence, which runs even after ctx is cancelled.
const saveTimeout = 30 * time.Second

// Options tunes an AnalysisService.
type Options struct {
	// DefaultFrameworks run when a request names none. Empty means all.
	DefaultFrameworks []string

	// Clock stamps analyses and reports. Defaults to time.Now.
	Clock func() time.Time

	// NewID generates analysis ids. Defaults to a random UUID.
	NewID func() string
}

// AnalysisService structures context, runs frameworks, renders the report
// and persists the result.
type AnalysisService struct {
	registry    *core.Registry
	coordinator *core.Coordinator
	assembler   *report.Assembler
	store       store.Store
	logger      *zap.Logger
	opts        Options
}

// New creates the service.
func New(registry *core.Registry, coordinator *core.Coordinator, st store.Store, logger *zap.Logger, opts Options) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:12] }
	}
	return &AnalysisService{
		registry:    registry,
		coordinator: coordinator,
		assembler:   report.NewAssembler(registry, report.Clock(opts.Clock)),
		store:       st,
		logger:      logger,
		opts:        opts,
	}
}

// Analyze runs the named frameworks over pc and stores the result.
// Framework names are validated before any inference call; observer may
// be nil.
func (s *AnalysisService) Analyze(ctx context.Context, pc *ingest.ProblemContext, frameworks []string, observer core.Observer) (*store.Analysis, error) {
	if pc == nil || strings.TrimSpace(pc.RawContent) == "" && strings.TrimSpace(pc.StructuredContent) == "" {
		return nil, ingest.ErrEmptyContext
	}
	if pc.StructuredContent == "" {
		ingest.Structure(pc)
	}

	names, err := s.Resolve(frameworks)
	if err != nil {
		return nil, err
	}

	coordinator := s.coordinator
	if observer != nil {
		coordinator = coordinator.WithObserver(observer)
	}

	id := s.opts.NewID()
	log := s.logger.With(zap.String("analysis_id", id))
	log.Info("analysis requested",
		zap.String("title", pc.Title),
		zap.String("source", pc.Source()),
		zap.Strings("frameworks", names),
	)

	results, err := coordinator.Run(ctx, pc.StructuredContent, names)
	if err != nil {
		return nil, err
	}

	analysis := &store.Analysis{
		ID:        id,
		CreatedAt: s.opts.Clock().UTC(),
		Context:   pc,
		Results:   results,
	}
	analysis.Report = s.assembler.Assemble(id, pc, results)

	// Outcomes gathered before a cancellation are still persisted.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	if err := s.store.Save(saveCtx, analysis); err != nil {
		return nil, fmt.Errorf("saving analysis %s: %w", id, err)
	}
	log.Info("analysis stored", zap.String("store", s.store.Name()))
	return analysis, nil
}

// Resolve applies the default framework list and validates names.
func (s *AnalysisService) Resolve(frameworks []string) ([]string, error) {
	if len(frameworks) == 0 {
		frameworks = s.opts.DefaultFrameworks
	}
	return s.coordinator.Frameworks(frameworks)
}

// Get loads a stored analysis.
func (s *AnalysisService) Get(ctx context.Context, id string) (*store.Analysis, error) {
	return s.store.Load(ctx, id)
}

// List returns stored analyses, newest first.
func (s *AnalysisService) List(ctx context.Context) ([]store.Summary, error) {
	return s.store.List(ctx)
}

// Frameworks returns every registered framework in registration order.
func (s *AnalysisService) Frameworks() []core.FrameworkSpec {
	return s.registry.List()
}
