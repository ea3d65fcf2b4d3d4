// Package store persists analyses and their reports.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/dhabedank/strategem/internal/config"
	"github.com/dhabedank/strategem/internal/core"
	"github.com/dhabedank/strategem/internal/ingest"
)

var (
	// ErrNotFound is returned when no analysis has the requested id.
	ErrNotFound = errors.New("analysis not found")

	// ErrInvalidID is returned for ids that cannot name a stored analysis.
	ErrInvalidID = errors.New("invalid analysis id")
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Analysis is one persisted analysis run.
type Analysis struct {
	ID        string                 `json:"id"`
	CreatedAt time.Time              `json:"created_at"`
	Context   *ingest.ProblemContext `json:"problem_context"`
	Results   *core.ResultSet        `json:"results"`
	Report    string                 `json:"generated_report"`
}

// Summary is the listing view of an analysis.
type Summary struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"-"`
	Succeeded int       `json:"succeeded" db:"succeeded"`
	Degraded  int       `json:"degraded" db:"degraded"`
	Failed    int       `json:"failed" db:"failed"`
}

// Store is the interface all persistence backends implement.
type Store interface {
	// Name returns the backend identifier for logging.
	Name() string

	// Save writes the analysis, replacing any with the same id.
	Save(ctx context.Context, a *Analysis) error

	// Load returns the analysis with id or ErrNotFound.
	Load(ctx context.Context, id string) (*Analysis, error)

	// List returns summaries, newest first.
	List(ctx context.Context) ([]Summary, error)

	Close() error
}

// Open returns the backend selected by cfg.Driver.
func Open(cfg config.StorageConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "", "file":
		return NewFileStore(cfg.Dir, logger)
	case "sqlite":
		return NewSQLiteStore(cfg.DSN, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// ValidateID rejects ids that are unsafe as file names or keys.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Summarize builds the listing view of a.
func Summarize(a *Analysis) Summary {
	s := Summary{ID: a.ID, CreatedAt: a.CreatedAt}
	if a.Context != nil {
		s.Title = a.Context.Title
	}
	if a.Results != nil {
		s.Succeeded, s.Degraded, s.Failed = a.Results.Counts()
	}
	return s
}

// applyDefaults fills fields missing from records written by older versions.
func applyDefaults(a *Analysis) {
	if a.Context == nil {
		a.Context = &ingest.ProblemContext{}
	}
	ingest.ApplyDefaults(a.Context)
	if a.Results == nil {
		a.Results = &core.ResultSet{}
	}
	if a.Results.Outcomes == nil {
		a.Results.Outcomes = []core.Outcome{}
	}
}
