// Package session coordinates per-user timers with the rotation engine.
//
// A user's timer is created on first use and restored from the state store,
// so a restarted process picks up a running session where it left off. A
// session that was stopped but never saved comes back running.
// Finishing a session stops the timer, records its duration, and only then
// drops the durable timer state. If recording fails the timer resumes and
// keeps its elapsed time.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"studyroom/internal/clock"
	"studyroom/internal/studylog"
	"studyroom/internal/timer"
)

// Status is a point-in-time view of one user's timer.
type Status struct {
	UserID         string    `json:"userId"`
	Running        bool      `json:"running"`
	ElapsedSeconds int       `json:"elapsed"`
	StartedAt      time.Time `json:"startedAt,omitempty"`
	Unsaved        bool      `json:"unsaved"`
}

// RunningLister is implemented by state stores that can enumerate sessions
// left running by a previous process.
type RunningLister interface {
	RunningUsers(ctx context.Context) ([]string, error)
}

type Controller struct {
	mu     sync.Mutex
	timers map[string]*timer.Timer

	states   timer.StateStore
	engine   *studylog.Engine
	clock    clock.Clock
	logger   *slog.Logger
	interval time.Duration
}

// Option customizes a Controller.
type Option func(*Controller)

func WithClock(c clock.Clock) Option {
	return func(ctrl *Controller) {
		if c != nil {
			ctrl.clock = c
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(ctrl *Controller) {
		if logger != nil {
			ctrl.logger = logger
		}
	}
}

// WithTickInterval overrides the one-second cadence used by Run.
func WithTickInterval(d time.Duration) Option {
	return func(ctrl *Controller) {
		if d > 0 {
			ctrl.interval = d
		}
	}
}

func New(states timer.StateStore, engine *studylog.Engine, opts ...Option) *Controller {
	ctrl := &Controller{
		timers:   make(map[string]*timer.Timer),
		states:   states,
		engine:   engine,
		clock:    clock.System{},
		logger:   slog.Default(),
		interval: time.Second,
	}
	for _, opt := range opts {
		opt(ctrl)
	}
	return ctrl
}

// Engine exposes the rotation engine backing the controller.
func (c *Controller) Engine() *studylog.Engine {
	return c.engine
}

func (c *Controller) timerFor(ctx context.Context, userID string) (*timer.Timer, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, studylog.ErrInvalidData
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.timers[userID]; ok {
		return t, nil
	}
	t := timer.New(userID, c.states, timer.WithClock(c.clock))
	if err := t.Restore(ctx); err != nil {
		return nil, fmt.Errorf("%w: restore session: %w", studylog.ErrStoreUnavailable, err)
	}
	if t.Pending() {
		// Stopped but never saved: keep counting until a save succeeds.
		if err := t.Resume(ctx); err != nil {
			c.logger.WarnContext(ctx, "resumed session not persisted", "user_id", userID, "error", err)
		}
		c.logger.InfoContext(ctx, "resumed unsaved session", "user_id", userID, "elapsed_seconds", t.Snapshot().ElapsedSeconds)
	}
	c.timers[userID] = t
	return t, nil
}

// Restore reloads a user's timer from the state store, discarding the
// in-memory copy.
func (c *Controller) Restore(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return studylog.ErrInvalidData
	}
	c.mu.Lock()
	delete(c.timers, userID)
	c.mu.Unlock()

	_, err := c.timerFor(ctx, userID)
	return err
}

// RestoreAll loads every session left running by a previous process. It is a
// no-op when the state store cannot enumerate sessions.
func (c *Controller) RestoreAll(ctx context.Context) (int, error) {
	lister, ok := c.states.(RunningLister)
	if !ok {
		return 0, nil
	}
	users, err := lister.RunningUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: list running sessions: %w", studylog.ErrStoreUnavailable, err)
	}
	for _, u := range users {
		if err := c.Restore(ctx, u); err != nil {
			return 0, err
		}
		c.logger.InfoContext(ctx, "resumed session", "user_id", u)
	}
	return len(users), nil
}

// Start begins a new session for userID, abandoning any session in progress.
func (c *Controller) Start(ctx context.Context, userID string) (Status, error) {
	t, err := c.timerFor(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	if err := t.Start(ctx); err != nil {
		c.logger.WarnContext(ctx, "session start not persisted", "user_id", t.UserID(), "error", err)
	}
	c.logger.InfoContext(ctx, "session started", "user_id", t.UserID())
	return statusOf(t), nil
}

// Finish stops the user's timer and records the elapsed time.
func (c *Controller) Finish(ctx context.Context, userID string) (studylog.Receipt, error) {
	t, err := c.timerFor(ctx, userID)
	if err != nil {
		return studylog.Receipt{}, err
	}

	elapsed, err := t.Stop(ctx)
	if errors.Is(err, timer.ErrNotRunning) {
		return studylog.Receipt{}, err
	}
	if err != nil {
		c.logger.WarnContext(ctx, "stopped session not persisted", "user_id", t.UserID(), "error", err)
	}

	receipt, err := c.engine.RecordSession(ctx, t.UserID(), elapsed)
	if err != nil {
		if resumeErr := t.Resume(ctx); resumeErr != nil {
			c.logger.WarnContext(ctx, "resumed session not persisted", "user_id", t.UserID(), "error", resumeErr)
		}
		c.logger.ErrorContext(ctx, "failed to save study session",
			"user_id", t.UserID(),
			"elapsed_seconds", elapsed,
			"error", err,
		)
		return studylog.Receipt{}, err
	}

	if err := t.Consume(ctx); err != nil {
		c.logger.WarnContext(ctx, "clear session state failed", "user_id", t.UserID(), "error", err)
	}
	c.logger.InfoContext(ctx, "session recorded",
		"user_id", t.UserID(),
		"duration_seconds", elapsed,
		"archived", receipt.Archived,
		"partial", receipt.Partial,
	)
	return receipt, nil
}

// Record saves a session of the given length without touching the timer.
func (c *Controller) Record(ctx context.Context, userID string, durationSeconds int) (studylog.Receipt, error) {
	return c.engine.RecordSession(ctx, userID, durationSeconds)
}

// Snapshot returns the user's current timer status.
func (c *Controller) Snapshot(ctx context.Context, userID string) (Status, error) {
	t, err := c.timerFor(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	return statusOf(t), nil
}

func (c *Controller) Summary(ctx context.Context, userID string) (studylog.Summary, error) {
	return c.engine.Summary(ctx, userID)
}

func (c *Controller) History(ctx context.Context, userID string) ([]studylog.ArchiveEntry, error) {
	return c.engine.History(ctx, userID)
}

func (c *Controller) ClearHistory(ctx context.Context, userID string) (int64, error) {
	return c.engine.ClearHistory(ctx, userID)
}

// Tick advances one user's timer by a second.
func (c *Controller) Tick(ctx context.Context, userID string) error {
	t, err := c.timerFor(ctx, userID)
	if err != nil {
		return err
	}
	return t.Tick(ctx)
}

// TickAll advances every running timer by a second. Write failures are
// logged and never stop the other timers.
func (c *Controller) TickAll(ctx context.Context) {
	for _, t := range c.loaded() {
		if err := t.Tick(ctx); err != nil {
			c.logger.WarnContext(ctx, "session tick not persisted", "user_id", t.UserID(), "error", err)
		}
	}
}

// Run calls TickAll on a fixed cadence until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.TickAll(ctx)
		}
	}
}

func (c *Controller) loaded() []*timer.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*timer.Timer, 0, len(c.timers))
	for _, t := range c.timers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID() < out[j].UserID() })
	return out
}

func statusOf(t *timer.Timer) Status {
	s := t.Snapshot()
	return Status{
		UserID:         t.UserID(),
		Running:        s.Running,
		ElapsedSeconds: s.ElapsedSeconds,
		StartedAt:      s.StartedAt,
		Unsaved:        t.Unsaved(),
	}
}
