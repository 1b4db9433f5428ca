package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"studyroom/internal"
	"studyroom/internal/lock"
	"studyroom/internal/presence"
)

func runTUI(ctx context.Context, cc *commandContext) error {
	a, err := cc.openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	l, err := lock.Acquire(a.cfg)
	if errors.Is(err, lock.ErrHeld) {
		return fmt.Errorf("another studyroom timer is already running (lock %s)", a.cfg.LockPath())
	}
	if err != nil {
		return err
	}
	defer l.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m, err := internal.NewModel(ctx, a.ctrl, a.cfg.UserID, a.logger)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Send(internal.MsgTick{})
			}
		}
	}()

	if path := a.cfg.Presence.SignalFile; path != "" {
		samples := make(chan presence.Sample, 8)
		source := presence.NewFileSource(path, a.logger)
		go func() {
			if err := source.Run(ctx, samples); err != nil {
				a.logger.Warn("presence signal stopped", "path", path, "error", err)
			}
		}()
		go presence.NewDebouncer().Run(ctx, samples, func(state presence.FocusState) {
			a.logger.Debug("focus changed", "focused", state.Focused, "distractions", state.Distractions)
			p.Send(internal.MsgFocus{State: state})
		})
	}

	a.logger.Info("timer started", "user_id", a.cfg.UserID)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run timer: %w", err)
	}
	return nil
}
