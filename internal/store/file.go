package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// FileStore keeps each analysis as analysis_<id>.json with its report
// beside it as report_<id>.md.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) Name() string {
	return "file"
}

// Dir is the storage directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// AnalysisPath returns where the analysis with id is written.
func (s *FileStore) AnalysisPath(id string) string {
	return filepath.Join(s.dir, "analysis_"+id+".json")
}

// ReportPath returns where the report of the analysis with id is written.
func (s *FileStore) ReportPath(id string) string {
	return filepath.Join(s.dir, "report_"+id+".md")
}

func (s *FileStore) Save(ctx context.Context, a *Analysis) error {
	if err := ValidateID(a.ID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	output, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(s.AnalysisPath(a.ID), output, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if a.Report != "" {
		if err := os.WriteFile(s.ReportPath(a.ID), []byte(a.Report), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	s.logger.Debug("analysis saved", zap.String("id", a.ID), zap.String("path", s.AnalysisPath(a.ID)))
	return nil
}

func (s *FileStore) Load(ctx context.Context, id string) (*Analysis, error) {
	if err := ValidateID(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.read(s.AnalysisPath(id))
}

func (s *FileStore) read(path string) (*Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var a Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	applyDefaults(&a)
	return &a, nil
}

func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "analysis_*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	summaries := make([]Summary, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a, err := s.read(path)
		if err != nil {
			s.logger.Warn("skipping unreadable analysis", zap.String("path", path), zap.Error(err))
			continue
		}
		if a.ID == "" {
			a.ID = strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "analysis_"), ".json")
		}
		summaries = append(summaries, Summarize(a))
	}
	sortNewestFirst(summaries)
	return summaries, nil
}

func (s *FileStore) Close() error {
	return nil
}

func sortNewestFirst(summaries []Summary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].ID > summaries[j].ID
		}
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
}
