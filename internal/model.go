package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"studyroom/internal/presence"
	"studyroom/internal/session"
	"studyroom/internal/studylog"
	"studyroom/internal/timer"

	tea "github.com/charmbracelet/bubbletea"
)

type MsgTick struct{}

// MsgFocus carries a debounced focus transition from the presence tracker.
type MsgFocus struct {
	State presence.FocusState
}

type Model struct {
	UserID  string
	Status  session.Status
	Summary studylog.Summary
	Focus   presence.FocusState
	Err     error
	Notice  string

	// Confirmation prompt shown before a running session is saved
	ShowStopConfirm bool

	// History viewer state
	ShowHistory       bool
	ShowClearConfirm  bool
	History           []studylog.ArchiveEntry
	HistoryScroll     int
	HistoryPageHeight int

	ctx    context.Context
	ctrl   *session.Controller
	logger *slog.Logger
}

func NewModel(ctx context.Context, ctrl *session.Controller, userID string, logger *slog.Logger) (*Model, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := ctrl.Restore(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	m := &Model{
		UserID:            userID,
		Focus:             presence.NewDebouncer().State(),
		HistoryPageHeight: 10,
		ctx:               ctx,
		ctrl:              ctrl,
		logger:            logger,
	}
	if err := m.refresh(); err != nil {
		return nil, fmt.Errorf("failed to load study logs: %w", err)
	}
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MsgTick:
		// A failed write only flags the status as unsaved.
		if err := m.ctrl.Tick(m.ctx, m.UserID); err != nil {
			m.logger.Warn("session tick not persisted", "user_id", m.UserID, "error", err)
		}
		if status, err := m.ctrl.Snapshot(m.ctx, m.UserID); err == nil {
			m.Status = status
		}
		return m, nil
	case MsgFocus:
		m.Focus = msg.State
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		if msg.Height > 12 {
			m.HistoryPageHeight = msg.Height - 8
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) View() string {
	if m.ShowStopConfirm {
		return m.stopConfirmView()
	}
	if m.ShowHistory {
		return m.historyView()
	}
	return m.mainView()
}

func (m *Model) refresh() error {
	status, err := m.ctrl.Snapshot(m.ctx, m.UserID)
	if err != nil {
		return err
	}
	m.Status = status

	summary, err := m.ctrl.Summary(m.ctx, m.UserID)
	if err != nil {
		return err
	}
	m.Summary = summary
	return nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ShowStopConfirm {
		return m.handleStopConfirm(msg)
	}
	if m.ShowHistory {
		return m.handleHistoryInput(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "enter", " ":
		m.Err = nil
		m.Notice = ""
		if m.Status.Running {
			m.ShowStopConfirm = true
			return m, nil
		}
		status, err := m.ctrl.Start(m.ctx, m.UserID)
		if err != nil {
			m.Err = err
			return m, nil
		}
		m.Status = status
	case "h":
		m.openHistory()
	case "r":
		if err := m.refresh(); err != nil {
			m.Err = err
		}
	}
	return m, nil
}

func (m *Model) handleStopConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.ShowStopConfirm = false
		m.finish()
	case "n", "N", "esc", "ctrl+c":
		m.ShowStopConfirm = false
	}
	return m, nil
}

func (m *Model) finish() {
	receipt, err := m.ctrl.Finish(m.ctx, m.UserID)
	if status, snapErr := m.ctrl.Snapshot(m.ctx, m.UserID); snapErr == nil {
		m.Status = status
	}
	if err != nil {
		if errors.Is(err, timer.ErrNotRunning) {
			return
		}
		m.Err = fmt.Errorf("failed to save session, please try again: %w", err)
		return
	}
	m.Notice = "Session saved successfully!"
	if receipt.Partial {
		m.Notice = "Session saved. Older logs will move to history next time."
	}
	if err := m.refresh(); err != nil {
		m.Err = err
	}
}

func (m *Model) openHistory() {
	history, err := m.ctrl.History(m.ctx, m.UserID)
	if err != nil {
		m.Err = err
		history = nil
	}
	m.History = history
	m.ShowHistory = true
	m.ShowClearConfirm = false
	m.HistoryScroll = 0
}

func (m *Model) handleHistoryInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ShowClearConfirm {
		switch msg.String() {
		case "y", "Y":
			n, err := m.ctrl.ClearHistory(m.ctx, m.UserID)
			if err != nil {
				m.Err = fmt.Errorf("failed to delete history: %w", err)
			} else {
				m.Notice = fmt.Sprintf("Deleted %d archived sessions.", n)
				m.History = nil
				m.HistoryScroll = 0
			}
			m.ShowClearConfirm = false
		case "n", "N", "esc":
			m.ShowClearConfirm = false
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q", "esc", "h":
		m.ShowHistory = false
		m.History = nil
	case "x":
		if len(m.History) > 0 {
			m.ShowClearConfirm = true
		}
	case "up", "k":
		if m.HistoryScroll > 0 {
			m.HistoryScroll--
		}
	case "down", "j":
		maxScroll := len(m.History) - 1
		if maxScroll < 0 {
			maxScroll = 0
		}
		if m.HistoryScroll < maxScroll {
			m.HistoryScroll++
		}
	}
	return m, nil
}
