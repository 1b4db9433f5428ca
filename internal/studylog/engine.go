package studylog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"studyroom/internal/clock"
)

// Store is the persistence contract the engine needs. No transaction spans
// separate calls.
type Store interface {
	ListRecent(ctx context.Context, userID string) ([]Entry, error)
	InsertRecent(ctx context.Context, userID, date string, durationSeconds int) (Entry, error)
	ArchiveMany(ctx context.Context, rotationID string, entries []Entry) error
	DeleteRecentByIDs(ctx context.Context, ids []int64) error
	ListArchive(ctx context.Context, userID string) ([]ArchiveEntry, error)
	DeleteArchive(ctx context.Context, userID string) (int64, error)
}

// Receipt describes the outcome of RecordSession.
type Receipt struct {
	Entry      Entry
	Archived   int
	RotationID string
	// Partial is set when the entry was recorded but rotating the overflow
	// did not complete. The next rotation picks the overflow up again.
	Partial bool
}

// Summary is the recent window with its derived streak.
type Summary struct {
	Logs   []Entry `json:"logs"`
	Streak int     `json:"streak"`
}

// Engine records sessions, rotates overflow into the archive, and derives streaks.
type Engine struct {
	store      Store
	clock      clock.Clock
	window     int
	logger     *slog.Logger
	rotationID func() string
}

// Option customizes the engine.
type Option func(*Engine)

// WithClock overrides the clock used to decide "today".
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithWindow overrides the recent window size (defaults to 7).
func WithWindow(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.window = n
		}
	}
}

// WithLogger sets the logger used for rotation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRotationIDs overrides rotation id generation.
func WithRotationIDs(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.rotationID = fn
		}
	}
}

// NewEngine constructs an Engine backed by store.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		clock:      clock.System{},
		window:     DefaultRecentWindow,
		logger:     slog.Default(),
		rotationID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Window returns the configured recent window size.
func (e *Engine) Window() int {
	return e.window
}

// Today returns the current calendar day in the engine's clock.
func (e *Engine) Today() string {
	return e.clock.Now().Format(DateLayout)
}

// RecordSession inserts a log for today and rotates overflow into the archive.
//
// The insert must complete before the window is listed, and the overflow is
// archived before it is deleted, so a failure between the two leaves a
// duplicate rather than a lost entry.
func (e *Engine) RecordSession(ctx context.Context, userID string, durationSeconds int) (Receipt, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Receipt{}, ErrInvalidData
	}
	if durationSeconds < 0 {
		return Receipt{}, ErrInvalidDuration
	}

	entry, err := e.store.InsertRecent(ctx, userID, e.Today(), durationSeconds)
	if err != nil {
		return Receipt{}, storeError("insert recent log", err)
	}
	receipt := Receipt{Entry: entry}

	logs, err := e.store.ListRecent(ctx, userID)
	if err != nil {
		e.logPartial(ctx, userID, "", "list recent logs", nil, err)
		receipt.Partial = true
		return receipt, nil
	}
	SortOldestFirst(logs)
	if len(logs) <= e.window {
		return receipt, nil
	}

	overflow := logs[:len(logs)-e.window]
	receipt.RotationID = e.rotationID()
	ids := make([]int64, len(overflow))
	for i, l := range overflow {
		ids[i] = l.ID
	}

	if err := e.store.ArchiveMany(ctx, receipt.RotationID, overflow); err != nil {
		e.logPartial(ctx, userID, receipt.RotationID, "archive overflow", ids, err)
		receipt.Partial = true
		return receipt, nil
	}
	if err := e.store.DeleteRecentByIDs(ctx, ids); err != nil {
		e.logPartial(ctx, userID, receipt.RotationID, "delete rotated logs", ids, err)
		receipt.Partial = true
		return receipt, nil
	}
	receipt.Archived = len(overflow)

	e.logger.DebugContext(ctx, "rotated study logs",
		"user_id", userID,
		"rotation_id", receipt.RotationID,
		"archived", receipt.Archived,
	)
	return receipt, nil
}

func (e *Engine) logPartial(ctx context.Context, userID, rotationID, step string, ids []int64, err error) {
	e.logger.ErrorContext(ctx, "partial rotation",
		"user_id", userID,
		"rotation_id", rotationID,
		"step", step,
		"ids", ids,
		"error", err,
	)
}

// Summary returns the recent window oldest-first with the current streak.
func (e *Engine) Summary(ctx context.Context, userID string) (Summary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Summary{}, ErrInvalidData
	}
	logs, err := e.store.ListRecent(ctx, userID)
	if err != nil {
		return Summary{}, storeError("list recent logs", err)
	}
	SortOldestFirst(logs)
	if logs == nil {
		logs = []Entry{}
	}
	return Summary{Logs: logs, Streak: ComputeStreak(logs, e.Today())}, nil
}

// History returns archived entries newest first.
func (e *Engine) History(ctx context.Context, userID string) ([]ArchiveEntry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidData
	}
	history, err := e.store.ListArchive(ctx, userID)
	if err != nil {
		return nil, storeError("list archive", err)
	}
	if history == nil {
		history = []ArchiveEntry{}
	}
	return history, nil
}

// ClearHistory deletes a user's archive and reports how many rows were removed.
func (e *Engine) ClearHistory(ctx context.Context, userID string) (int64, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, ErrInvalidData
	}
	n, err := e.store.DeleteArchive(ctx, userID)
	if err != nil {
		return 0, storeError("delete archive", err)
	}
	return n, nil
}
