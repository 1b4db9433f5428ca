// Package store persists study logs, the archive, and in-flight session state
// in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"studyroom/internal/config"
	"studyroom/internal/studylog"
)

// timestampLayout is fixed width so stored timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

type Repository struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Option customizes a Repository.
type Option func(*Repository)

// WithNow overrides the clock used for created_at and updated_at stamps.
func WithNow(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// Open connects to the database under the configured data directory and
// applies migrations.
func Open(cfg *config.Config, opts ...Option) (*Repository, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.DatabasePath(), opts...)
}

// OpenPath connects to the database at path and applies migrations.
func OpenPath(path string, opts ...Option) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
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

	repo := &Repository{db: db, path: path, now: time.Now}
	for _, opt := range opts {
		opt(repo)
	}
	if err := repo.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Path returns the database file location.
func (r *Repository) Path() string {
	return r.path
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) stamp() string {
	return formatTime(r.now())
}

func (r *Repository) InsertRecent(ctx context.Context, userID, date string, durationSeconds int) (studylog.Entry, error) {
	createdAt := r.now().UTC()
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO study_logs (user_id, date, duration_seconds, created_at) VALUES (?, ?, ?, ?)",
		userID, date, durationSeconds, formatTime(createdAt),
	)
	if err != nil {
		return studylog.Entry{}, fmt.Errorf("insert study log: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return studylog.Entry{}, fmt.Errorf("last insert id: %w", err)
	}
	return studylog.Entry{
		ID:              id,
		UserID:          userID,
		Date:            date,
		DurationSeconds: durationSeconds,
		CreatedAt:       parseTime(formatTime(createdAt)),
	}, nil
}

func (r *Repository) ListRecent(ctx context.Context, userID string) ([]studylog.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, date, duration_seconds, created_at FROM study_logs WHERE user_id = ? ORDER BY created_at ASC, id ASC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list study logs: %w", err)
	}
	defer rows.Close()

	var logs []studylog.Entry
	for rows.Next() {
		var e studylog.Entry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.DurationSeconds, &createdAt); err != nil {
			return nil, fmt.Errorf("scan study log: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		logs = append(logs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate study logs: %w", err)
	}
	return logs, nil
}

// ArchiveMany copies entries into study_history in one transaction. Rows
// already archived under the same source id are skipped.
func (r *Repository) ArchiveMany(ctx context.Context, rotationID string, entries []studylog.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO study_history
            (user_id, date, duration_seconds, created_at, source_id, rotation_id, archived_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare archive insert: %w", err)
	}
	defer stmt.Close()

	archivedAt := r.stamp()
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			e.UserID, e.Date, e.DurationSeconds, formatTime(e.CreatedAt), e.ID, rotationID, archivedAt,
		); err != nil {
			return fmt.Errorf("archive study log %d: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive: %w", err)
	}
	return nil
}

func (r *Repository) DeleteRecentByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM study_logs WHERE id IN ("+placeholders+")", args...); err != nil {
		return fmt.Errorf("delete study logs: %w", err)
	}
	return nil
}

func (r *Repository) ListArchive(ctx context.Context, userID string) ([]studylog.ArchiveEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, date, duration_seconds, created_at, source_id, rotation_id, archived_at
         FROM study_history
         WHERE user_id = ?
         ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list study history: %w", err)
	}
	defer rows.Close()

	var history []studylog.ArchiveEntry
	for rows.Next() {
		var a studylog.ArchiveEntry
		var createdAt, archivedAt string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Date, &a.DurationSeconds, &createdAt, &a.SourceID, &a.RotationID, &archivedAt); err != nil {
			return nil, fmt.Errorf("scan study history: %w", err)
		}
		a.CreatedAt = parseTime(createdAt)
		a.ArchivedAt = parseTime(archivedAt)
		history = append(history, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate study history: %w", err)
	}
	return history, nil
}

func (r *Repository) DeleteArchive(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM study_history WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("delete study history: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}
