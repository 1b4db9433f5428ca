package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"studyroom/internal/timer"
)

// LoadSession returns the persisted session for userID, or an idle zero
// state when none was saved.
func (r *Repository) LoadSession(ctx context.Context, userID string) (timer.State, error) {
	var (
		state     timer.State
		running   int
		startedAt sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT running, elapsed_seconds, started_at FROM session_state WHERE user_id = ?",
		userID,
	).Scan(&running, &state.ElapsedSeconds, &startedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return timer.State{}, nil
	}
	if err != nil {
		return timer.State{}, fmt.Errorf("load session: %w", err)
	}
	state.Running = running == 1
	if startedAt.Valid {
		state.StartedAt = parseTime(startedAt.String)
	}
	return state, nil
}

func (r *Repository) SaveSession(ctx context.Context, userID string, state timer.State) error {
	running := 0
	if state.Running {
		running = 1
	}
	var startedAt sql.NullString
	if !state.StartedAt.IsZero() {
		startedAt = sql.NullString{String: formatTime(state.StartedAt), Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO session_state (user_id, running, elapsed_seconds, started_at, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(user_id) DO UPDATE SET
             running = excluded.running,
             elapsed_seconds = excluded.elapsed_seconds,
             started_at = excluded.started_at,
             updated_at = excluded.updated_at`,
		userID, running, state.ElapsedSeconds, startedAt, r.stamp(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *Repository) ClearSession(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM session_state WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// RunningUsers lists users whose persisted session was left running or was
// stopped without being saved.
func (r *Repository) RunningUsers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT user_id FROM session_state WHERE running = 1 OR elapsed_seconds > 0 ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("list running sessions: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan running session: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}
