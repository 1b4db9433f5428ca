package timer

import (
	"context"
	"errors"
	"sync"
	"time"

	"studyroom/internal/clock"
)

// ErrNotRunning is returned by Stop when no session is active.
var ErrNotRunning = errors.New("timer not running")

// State is the durable view of the current session.
type State struct {
	StartedAt      time.Time
	ElapsedSeconds int
	Running        bool
}

// StateStore persists a user's current session between restarts.
type StateStore interface {
	LoadSession(ctx context.Context, userID string) (State, error)
	SaveSession(ctx context.Context, userID string, state State) error
	ClearSession(ctx context.Context, userID string) error
}

// Timer counts whole seconds for one user's focus session. Every transition
// and every tick is written through to the StateStore.
type Timer struct {
	mu      sync.RWMutex
	userID  string
	store   StateStore
	clock   clock.Clock
	state   State
	unsaved bool

	// stoppedAt marks an in-memory Stop that has not been consumed yet.
	stoppedAt time.Time
}

// Option customizes a Timer.
type Option func(*Timer)

// WithClock overrides the clock used for StartedAt.
func WithClock(c clock.Clock) Option {
	return func(t *Timer) {
		if c != nil {
			t.clock = c
		}
	}
}

func New(userID string, store StateStore, opts ...Option) *Timer {
	t := &Timer{
		userID: userID,
		store:  store,
		clock:  clock.System{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Restore loads the persisted session so a restarted process resumes it.
func (t *Timer) Restore(ctx context.Context) error {
	state, err := t.store.LoadSession(ctx, t.userID)
	if err != nil {
		return err
	}
	if state.ElapsedSeconds < 0 {
		state.ElapsedSeconds = 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state
	t.unsaved = false
	t.stoppedAt = time.Time{}
	return nil
}

// Start begins a fresh session. A session already running is abandoned and
// its elapsed time discarded.
func (t *Timer) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = State{
		StartedAt:      t.clock.Now(),
		ElapsedSeconds: 0,
		Running:        true,
	}
	t.stoppedAt = time.Time{}
	return t.persistLocked(ctx)
}

// Tick adds one second while running. A failed write leaves the count intact
// and marks the state unsaved; the error is returned for logging only.
func (t *Timer) Tick(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.state.Running {
		return nil
	}
	t.state.ElapsedSeconds++
	return t.persistLocked(ctx)
}

// Stop ends the session and returns its final elapsed seconds. The stopped
// state stays persisted until Consume is called.
func (t *Timer) Stop(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.state.Running {
		return t.state.ElapsedSeconds, ErrNotRunning
	}
	t.state.Running = false
	t.stoppedAt = t.clock.Now()
	elapsed := t.state.ElapsedSeconds
	return elapsed, t.persistLocked(ctx)
}

// Resume continues a stopped session without resetting elapsed time. Whole
// seconds spent stopped in this process are credited back, so ticks missed
// while a save was in flight are not lost.
func (t *Timer) Resume(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Running {
		return nil
	}
	now := t.clock.Now()
	if t.state.StartedAt.IsZero() {
		t.state.StartedAt = now
	}
	if !t.stoppedAt.IsZero() {
		if gap := int(now.Sub(t.stoppedAt) / time.Second); gap > 0 {
			t.state.ElapsedSeconds += gap
		}
		t.stoppedAt = time.Time{}
	}
	t.state.Running = true
	return t.persistLocked(ctx)
}

// Pending reports a stopped session whose duration was never consumed,
// as left behind by a process that died between Stop and Consume.
func (t *Timer) Pending() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return !t.state.Running && t.state.ElapsedSeconds > 0
}

// Consume drops the stopped session once its duration has been saved.
func (t *Timer) Consume(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Running {
		return nil
	}
	t.state = State{}
	t.stoppedAt = time.Time{}
	if err := t.store.ClearSession(ctx, t.userID); err != nil {
		t.unsaved = true
		return err
	}
	t.unsaved = false
	return nil
}

func (t *Timer) persistLocked(ctx context.Context) error {
	if err := t.store.SaveSession(ctx, t.userID, t.state); err != nil {
		t.unsaved = true
		return err
	}
	t.unsaved = false
	return nil
}

func (t *Timer) Snapshot() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

func (t *Timer) Running() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Running
}

// Unsaved reports whether the last write to the StateStore failed.
func (t *Timer) Unsaved() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.unsaved
}

func (t *Timer) UserID() string {
	return t.userID
}
