package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Observer is notified as each framework starts and finishes.
type Observer interface {
	FrameworkStarted(index, total int, spec FrameworkSpec)
	FrameworkFinished(index, total int, outcome Outcome)
}

// Coordinator runs frameworks one after another and collects every outcome.
type Coordinator struct {
	registry *Registry
	runner   *Runner
	observer Observer
	logger   *zap.Logger
}

// NewCoordinator creates a coordinator over an explicit registry.
func NewCoordinator(registry *Registry, runner *Runner, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{registry: registry, runner: runner, logger: logger}
}

// WithObserver returns a copy of the coordinator that reports progress to o.
func (c *Coordinator) WithObserver(o Observer) *Coordinator {
	cp := *c
	cp.observer = o
	return &cp
}

// Run applies the named frameworks to contextText in the given order.
// It fails only on an empty or unknown framework list, before any
// inference call is made.
func (c *Coordinator) Run(ctx context.Context, contextText string, names []string) (*ResultSet, error) {
	if len(names) == 0 {
		return nil, ErrNoFrameworks
	}

	specs := make([]FrameworkSpec, 0, len(names))
	for _, name := range names {
		spec, err := c.registry.Get(name)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	c.logger.Info("analysis started",
		zap.Strings("frameworks", names),
		zap.String("transport", c.runner.TransportName()),
		zap.Int("context_chars", len(contextText)),
	)

	results := &ResultSet{Outcomes: make([]Outcome, 0, len(specs))}
	for i, spec := range specs {
		if c.observer != nil {
			c.observer.FrameworkStarted(i, len(specs), spec)
		}
		outcome := c.runner.Run(ctx, spec, contextText)
		results.Outcomes = append(results.Outcomes, outcome)
		if c.observer != nil {
			c.observer.FrameworkFinished(i, len(specs), outcome)
		}
	}

	succeeded, degraded, failed := results.Counts()
	c.logger.Info("analysis finished",
		zap.Int("succeeded", succeeded),
		zap.Int("degraded", degraded),
		zap.Int("failed", failed),
	)
	return results, nil
}

// Frameworks resolves names against the registry, falling back to every
// registered framework when names is empty.
func (c *Coordinator) Frameworks(names []string) ([]string, error) {
	if len(names) == 0 {
		names = c.registry.Names()
	}
	for _, name := range names {
		if _, err := c.registry.Get(name); err != nil {
			return nil, fmt.Errorf("resolve frameworks: %w", err)
		}
	}
	return names, nil
}
