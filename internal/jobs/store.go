package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists jobs and their results.
type Store interface {
	Create(ctx context.Context, job *Job) error
	MarkRunning(ctx context.Context, id string) error

	// Complete and Fail publish the terminal result exactly once: a job
	// that is already terminal is not rewritten.
	Complete(ctx context.Context, id string, result json.RawMessage, attempts int) error
	Fail(ctx context.Context, id string, diagnostic string, attempts int) error

	// Get returns ErrJobNotFound for identifiers the store has not seen.
	Get(ctx context.Context, id string) (*Job, error)

	// DeleteExpired removes terminal jobs whose last update is older
	// than the cutoff, returning the number removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)

	Close() error
}

// ErrJobNotFound is returned by Get for unknown job identifiers.
var ErrJobNotFound = fmt.Errorf("job not found")

// timeLayout is RFC3339 with fixed-width fractional seconds. Timestamps
// are stored as text and compared lexicographically in SQL, which only
// matches chronological order when every value has the same width and
// zone suffix; all times are stored UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// SQLiteStore is the Store implementation on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenStore opens (and initializes) the job database at path.
// ":memory:" is supported for tests.
func OpenStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}
	// SQLite allows one writer; a single pooled connection also keeps
	// in-memory databases coherent.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			task TEXT NOT NULL,
			payload TEXT NOT NULL,
			status TEXT NOT NULL,
			result TEXT,
			error TEXT NOT NULL DEFAULT '',
			attempts INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			started_at TEXT,
			ended_at TEXT
		);
	`)
	if err != nil {
		return fmt.Errorf("init job schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Create(ctx context.Context, job *Job) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, task, payload, status, result, error, attempts, created_at, updated_at)
		VALUES (?, ?, ?, ?, NULL, '', 0, ?, ?)
	`,
		job.ID,
		job.Task,
		string(job.Payload),
		string(job.Status),
		formatTime(job.CreatedAt),
		formatTime(job.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create job %s: %w", job.ID, err)
	}
	return nil
}

func (s *SQLiteStore) MarkRunning(ctx context.Context, id string) error {
	now := formatTime(time.Now())
	_, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, started_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, string(StatusRunning), now, now, id, string(StatusQueued))
	if err != nil {
		return fmt.Errorf("mark running %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Complete(ctx context.Context, id string, result json.RawMessage, attempts int) error {
	return s.finish(ctx, id, StatusCompleted, string(result), "", attempts)
}

func (s *SQLiteStore) Fail(ctx context.Context, id string, diagnostic string, attempts int) error {
	// A failed job's result carries the diagnostic string, not a raw
	// error value, so the polling endpoint can surface it directly.
	result, _ := json.Marshal(diagnostic)
	return s.finish(ctx, id, StatusFailed, string(result), diagnostic, attempts)
}

func (s *SQLiteStore) finish(ctx context.Context, id string, status Status, result, diagnostic string, attempts int) error {
	now := formatTime(time.Now())
	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, result = ?, error = ?, attempts = ?, ended_at = ?, updated_at = ?
		WHERE id = ? AND status IN (?, ?)
	`, string(status), result, diagnostic, attempts, now, now,
		id, string(StatusQueued), string(StatusRunning))
	if err != nil {
		return fmt.Errorf("finish job %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish job %s: already terminal or missing", id)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, task, payload, status, result, error, attempts, created_at, updated_at, started_at, ended_at
		FROM jobs WHERE id = ?
	`, id)

	var job Job
	var payload, status string
	var result sql.NullString
	var createdAt, updatedAt string
	var startedAt, endedAt sql.NullString

	err := row.Scan(&job.ID, &job.Task, &payload, &status, &result,
		&job.Error, &job.Attempts, &createdAt, &updatedAt, &startedAt, &endedAt)
	if err == sql.ErrNoRows {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}

	job.Payload = json.RawMessage(payload)
	job.Status = Status(status)
	if result.Valid {
		job.Result = json.RawMessage(result.String)
	}
	job.CreatedAt = parseTime(createdAt)
	job.UpdatedAt = parseTime(updatedAt)
	job.StartedAt = parseNullTime(startedAt)
	job.EndedAt = parseNullTime(endedAt)

	return &job, nil
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM jobs WHERE status IN (?, ?) AND updated_at < ?
	`, string(StatusCompleted), string(StatusFailed),
		formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete expired jobs: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func parseTime(v string) time.Time {
	t, _ := time.Parse(timeLayout, v)
	return t
}

func parseNullTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t := parseTime(v.String)
	return &t
}
