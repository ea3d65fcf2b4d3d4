package core

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Request is one inference request for a framework.
type Request struct {
	Framework    string
	SystemPrompt string
	UserPrompt   string
}

// Transport is the inference backend used by the runner.
// This matches llm.Adapter but is defined here to avoid import cycles.
type Transport interface {
	// Name returns the transport identifier for logging.
	Name() string

	// Complete sends the request and returns the raw model text.
	Complete(ctx context.Context, req Request) (string, error)
}

// RunState is a framework run's position in its state machine.
type RunState string

const (
	StatePending   RunState = "pending"
	StateRequested RunState = "requested"
	StateParsing   RunState = "parsing"
	StateSucceeded RunState = "succeeded"
	StateDegraded  RunState = "degraded"
	StateFailed    RunState = "failed"
)

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// SystemPrompt is shared by every framework.
	SystemPrompt string

	// CallTimeout bounds each inference call. Zero means no extra bound.
	CallTimeout time.Duration
}

// DefaultRunnerConfig returns sensible defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		SystemPrompt: DefaultSystemPrompt,
		CallTimeout:  120 * time.Second,
	}
}

// Runner executes one framework: at most two inference calls and at most
// two parse attempts.
type Runner struct {
	transport Transport
	config    RunnerConfig
	logger    *zap.Logger
}

// NewRunner creates a runner over the given transport.
func NewRunner(transport Transport, config RunnerConfig, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.SystemPrompt == "" {
		config.SystemPrompt = DefaultSystemPrompt
	}
	return &Runner{transport: transport, config: config, logger: logger}
}

// TransportName reports which backend the runner uses.
func (r *Runner) TransportName() string {
	return r.transport.Name()
}

// Run executes spec against the structured problem context. It always
// returns an outcome; failures are captured as data.
func (r *Runner) Run(ctx context.Context, spec FrameworkSpec, contextText string) Outcome {
	start := time.Now()
	req := Request{
		Framework:    spec.Name,
		SystemPrompt: r.config.SystemPrompt,
		UserPrompt:   BuildUserPrompt(spec, contextText),
	}
	out := Outcome{
		Framework:  spec.Name,
		Title:      spec.Title,
		InputChars: len(req.SystemPrompt) + len(req.UserPrompt),
	}
	r.transition(spec.Name, StatePending)

	text, err := r.call(ctx, req, &out)
	if err != nil {
		r.logger.Warn("inference call failed, retrying",
			zap.String("framework", spec.Name),
			zap.String("transport", r.transport.Name()),
			zap.Error(err),
		)
		text, err = r.call(ctx, req, &out)
		if err != nil {
			return r.finish(out, unavailable(err), start)
		}
		return r.finish(out, r.parse(spec, text, &out), start)
	}

	first := r.parse(spec, text, &out)
	if first.result.Status == StatusSucceeded {
		return r.finish(out, first, start)
	}

	r.logger.Debug("parse not conformant, re-issuing request",
		zap.String("framework", spec.Name),
		zap.String("status", string(first.result.Status)),
		zap.Strings("missing", first.result.Missing),
	)
	text, err = r.call(ctx, req, &out)
	if err != nil {
		r.logger.Warn("retry call failed, keeping first parse",
			zap.String("framework", spec.Name),
			zap.Error(err),
		)
		return r.finish(out, first, start)
	}

	second := r.parse(spec, text, &out)
	if first.result.Status.Rank() > second.result.Status.Rank() {
		return r.finish(out, first, start)
	}
	return r.finish(out, second, start)
}

// attempt is a parse result plus the raw text that produced it.
type attempt struct {
	result ParseResult
	raw    string
	err    error
}

func unavailable(err error) attempt {
	return attempt{result: ParseResult{Status: StatusFailed}, err: err}
}

func (r *Runner) call(ctx context.Context, req Request, out *Outcome) (string, error) {
	out.Calls++
	r.transition(req.Framework, StateRequested)

	callCtx := ctx
	if r.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.config.CallTimeout)
		defer cancel()
	}

	text, err := r.transport.Complete(callCtx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			r.logger.Debug("inference call timed out",
				zap.String("framework", req.Framework),
				zap.Duration("timeout", r.config.CallTimeout),
			)
		}
		return "", err
	}
	return text, nil
}

func (r *Runner) parse(spec FrameworkSpec, text string, out *Outcome) attempt {
	out.ParseAttempts++
	r.transition(spec.Name, StateParsing)

	result := ParseResponse(RawResponse{Framework: spec.Name, Text: text}, spec)
	r.logger.Debug("parse attempt",
		zap.String("framework", spec.Name),
		zap.Int("attempt", out.ParseAttempts),
		zap.String("status", string(result.Status)),
		zap.Stringer("strategy", result.Strategy),
	)
	return attempt{result: result, raw: text}
}

func (r *Runner) finish(out Outcome, a attempt, start time.Time) Outcome {
	res := a.result
	out.Status = res.Status
	out.Record = res.Record
	out.Strategy = res.Strategy
	out.Missing = res.Missing
	out.Attempted = res.Attempted
	out.RawExcerpt = res.RawExcerpt
	out.OutputChars = len(a.raw)
	out.Duration = time.Since(start)

	switch {
	case a.err != nil:
		out.Reason = ReasonInferenceUnavailable
		out.Detail = a.err.Error()
	case res.Status == StatusFailed:
		out.Reason = ReasonUnparseable
		out.Detail = "no parsing strategy recovered any required field"
	}

	r.transition(out.Framework, RunState(out.Status))
	r.logger.Info("framework finished",
		zap.String("framework", out.Framework),
		zap.String("status", string(out.Status)),
		zap.Int("calls", out.Calls),
		zap.Int("parse_attempts", out.ParseAttempts),
		zap.Duration("duration", out.Duration),
	)
	return out
}

func (r *Runner) transition(framework string, state RunState) {
	r.logger.Debug("framework state",
		zap.String("framework", framework),
		zap.String("state", string(state)),
	)
}
