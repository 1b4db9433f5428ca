// Package presence turns a noisy per-frame face classifier into a stable
// focus state and a count of look-away episodes.
//
// Samples flow one way: a Detector (or a FileSource fed by an external
// classifier) pushes Sample values onto a channel, and Debouncer.Run consumes
// them on its own schedule. Nothing here feeds back into the session timer.
package presence

import (
	"context"
	"sync"
)

// Sample is one classifier verdict for a single frame.
type Sample struct {
	Present bool
}

// FocusState is the debounced view exposed to the UI.
type FocusState struct {
	Focused      bool `json:"focused"`
	Distractions int  `json:"distractions"`
}

// Debouncer counts transitions into "not present" exactly once per episode.
type Debouncer struct {
	mu               sync.RWMutex
	lastFaceDetected bool
	state            FocusState
}

// NewDebouncer starts focused with no distractions.
func NewDebouncer() *Debouncer {
	return &Debouncer{
		lastFaceDetected: true,
		state:            FocusState{Focused: true},
	}
}

// Observe applies one sample and reports whether the focus state changed.
func (d *Debouncer) Observe(s Sample) (FocusState, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case !s.Present && d.lastFaceDetected:
		d.lastFaceDetected = false
		d.state.Focused = false
		d.state.Distractions++
		return d.state, true
	case s.Present && !d.lastFaceDetected:
		d.lastFaceDetected = true
		d.state.Focused = true
		return d.state, true
	}
	return d.state, false
}

func (d *Debouncer) State() FocusState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Run consumes samples until ctx is done or the channel closes, calling
// onChange after every transition.
func (d *Debouncer) Run(ctx context.Context, samples <-chan Sample, onChange func(FocusState)) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-samples:
			if !ok {
				return
			}
			if state, changed := d.Observe(s); changed && onChange != nil {
				onChange(state)
			}
		}
	}
}
