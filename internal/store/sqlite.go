package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS analyses (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	succeeded INTEGER NOT NULL DEFAULT 0,
	degraded INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	payload TEXT NOT NULL,
	report TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
`

// timeLayout has a fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps analyses in a single SQLite table.
type SQLiteStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

type analysisRow struct {
	Summary
	CreatedAt string `db:"created_at"`
	Payload   string `db:"payload"`
	Report    string `db:"report"`
}

// NewSQLiteStore opens or creates the database at dsn.
func NewSQLiteStore(dsn string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sqlx.Open("sqlite", dsn+sep+"_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open analyses db: %w", err)
	}
	// One connection keeps :memory: databases shared and writes serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init analyses schema: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Name() string {
	return "sqlite"
}

func (s *SQLiteStore) Save(ctx context.Context, a *Analysis) error {
	if err := ValidateID(a.ID); err != nil {
		return err
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("sqliteStore.Save: marshal: %w", err)
	}

	sum := Summarize(a)
	query := `INSERT OR REPLACE INTO analyses
		(id, created_at, title, succeeded, degraded, failed, payload, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		a.ID, a.CreatedAt.UTC().Format(timeLayout), sum.Title,
		sum.Succeeded, sum.Degraded, sum.Failed, string(payload), a.Report)
	if err != nil {
		return fmt.Errorf("sqliteStore.Save: %w", err)
	}
	s.logger.Debug("analysis saved", zap.String("id", a.ID))
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*Analysis, error) {
	var row analysisRow
	err := s.db.GetContext(ctx, &row, "SELECT payload, report FROM analyses WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("sqliteStore.Load: %w", err)
	}

	var a Analysis
	if err := json.Unmarshal([]byte(row.Payload), &a); err != nil {
		return nil, fmt.Errorf("sqliteStore.Load: decode %s: %w", id, err)
	}
	if a.Report == "" {
		a.Report = row.Report
	}
	applyDefaults(&a)
	return &a, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	var rows []analysisRow
	query := `SELECT id, created_at, title, succeeded, degraded, failed
		FROM analyses ORDER BY created_at DESC, id DESC`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("sqliteStore.List: %w", err)
	}

	summaries := make([]Summary, 0, len(rows))
	for _, row := range rows {
		sum := row.Summary
		created, err := time.Parse(timeLayout, row.CreatedAt)
		if err != nil {
			s.logger.Warn("bad created_at in analyses", zap.String("id", row.ID), zap.Error(err))
		}
		sum.CreatedAt = created
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
