package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"dupesweep/internal/executor"
)

// Store persists resolution runs in a SQLite database so past destructive
// actions can be inspected long after the process exits.
type Store struct {
	db   *sql.DB
	path string
}

// Run is a recorded resolution run.
type Run struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  *time.Time
	TotalGroups int
	Downloaded  int
	Deleted     int
	Failed      int
	Skipped     int
}

// GroupRecord is one group's stored outcome within a run.
type GroupRecord struct {
	RunID       string
	DuplicateID string
	WinnerID    string
	Result      executor.GroupResult
	CreatedAt   time.Time
}

// Open initializes or connects to the journal database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// StartRun creates a new run row and returns its id.
func (s *Store) StartRun(ctx context.Context) (string, error) {
	runID := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		runID,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return runID, nil
}

// RecordGroup stores one group result under a run.
func (s *Store) RecordGroup(ctx context.Context, runID string, result executor.GroupResult) error {
	detail, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal group result: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO run_groups (run_id, duplicate_id, winner_id, detail_json, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		runID,
		result.DuplicateID,
		result.WinnerID,
		string(detail),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run group: %w", err)
	}
	return nil
}

// FinishRun stamps the run's end time and final counters.
func (s *Store) FinishRun(ctx context.Context, runID string, report *executor.ExecutionReport) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs
         SET finished_at = ?, total_groups = ?, downloaded = ?, deleted = ?, failed = ?, skipped = ?
         WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		report.TotalGroups,
		report.Downloaded,
		report.Deleted,
		report.Failed,
		report.Skipped,
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A non-positive limit
// returns everything.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, finished_at, total_groups, downloaded, deleted, failed, skipped
              FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run         Run
			startedRaw  string
			finishedRaw sql.NullString
		)
		if err := rows.Scan(&run.ID, &startedRaw, &finishedRaw,
			&run.TotalGroups, &run.Downloaded, &run.Deleted, &run.Failed, &run.Skipped); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if started, err := time.Parse(time.RFC3339Nano, startedRaw); err == nil {
			run.StartedAt = started
		}
		if finishedRaw.Valid {
			if finished, err := time.Parse(time.RFC3339Nano, finishedRaw.String); err == nil {
				run.FinishedAt = &finished
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches a single run by id, or nil when absent.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, total_groups, downloaded, deleted, failed, skipped
         FROM runs WHERE id = ?`, runID)

	var (
		run         Run
		startedRaw  string
		finishedRaw sql.NullString
	)
	err := row.Scan(&run.ID, &startedRaw, &finishedRaw,
		&run.TotalGroups, &run.Downloaded, &run.Deleted, &run.Failed, &run.Skipped)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if started, parseErr := time.Parse(time.RFC3339Nano, startedRaw); parseErr == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, parseErr := time.Parse(time.RFC3339Nano, finishedRaw.String); parseErr == nil {
			run.FinishedAt = &finished
		}
	}
	return &run, nil
}

// RunGroups returns every stored group result for a run in insertion order.
func (s *Store) RunGroups(ctx context.Context, runID string) ([]GroupRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, duplicate_id, winner_id, detail_json, created_at
         FROM run_groups WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run groups: %w", err)
	}
	defer rows.Close()

	var records []GroupRecord
	for rows.Next() {
		var (
			record     GroupRecord
			detail     string
			createdRaw string
		)
		if err := rows.Scan(&record.RunID, &record.DuplicateID, &record.WinnerID, &detail, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan run group: %w", err)
		}
		if err := json.Unmarshal([]byte(detail), &record.Result); err != nil {
			return nil, fmt.Errorf("decode group detail: %w", err)
		}
		if created, parseErr := time.Parse(time.RFC3339Nano, createdRaw); parseErr == nil {
			record.CreatedAt = created
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
