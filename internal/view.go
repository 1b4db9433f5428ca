package internal

import (
	"fmt"
	"strings"
	"time"

	"studyroom/internal/studylog"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	timerDisplayStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("69")).
				Bold(true)

	timerRunningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	streakStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	focusedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	distractedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	logHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	logTimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func (m *Model) mainView() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Width(80).Render("Study Room"))
	sb.WriteString("\n\n")

	boxes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.timerView(),
		"  ",
		m.recentLogsView(),
	)
	sb.WriteString(boxes)
	sb.WriteString("\n\n")
	sb.WriteString(m.statusLine())
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Start/Stop: Enter | History: h | Refresh: r | Quit: q"))

	return sb.String()
}

func (m *Model) timerView() string {
	elapsed := time.Duration(m.Status.ElapsedSeconds) * time.Second

	var timerStr, status string
	if m.Status.Running {
		timerStr = timerRunningStyle.Render(formatDuration(elapsed))
		status = timerRunningStyle.Render("Studying")
	} else {
		timerStr = timerDisplayStyle.Render(formatDuration(elapsed))
		status = inactiveStyle.Render("Idle")
	}
	if m.Status.Unsaved {
		status += " " + errorStyle.Render("(unsaved)")
	}

	focus := focusedStyle.Render("Focused")
	if !m.Focus.Focused {
		focus = distractedStyle.Render("Looking away")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("User: %s\n\n", m.UserID))
	sb.WriteString(timerStr)
	sb.WriteString(fmt.Sprintf("\n\n%s\n\n", status))
	sb.WriteString(streakStyle.Render(fmt.Sprintf("%d day streak", m.Summary.Streak)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s  distractions: %d\n", focus, m.Focus.Distractions))

	return boxStyle.Width(34).Height(13).Render(sb.String())
}

func (m *Model) recentLogsView() string {
	var sb strings.Builder
	sb.WriteString(logHeaderStyle.Render("Recent Sessions"))
	sb.WriteString("\n\n")

	if len(m.Summary.Logs) == 0 {
		sb.WriteString(inactiveStyle.Render("No sessions yet. Press Enter to start."))
	}
	// newest first
	for i := len(m.Summary.Logs) - 1; i >= 0; i-- {
		sb.WriteString(formatLogEntry(m.Summary.Logs[i]))
		sb.WriteString("\n")
	}

	return boxStyle.Width(40).Height(13).Render(sb.String())
}

func (m *Model) statusLine() string {
	switch {
	case m.Err != nil:
		return errorStyle.Render(m.Err.Error())
	case m.Notice != "":
		return noticeStyle.Render(m.Notice)
	}
	return ""
}

func (m *Model) stopConfirmView() string {
	elapsed := time.Duration(m.Status.ElapsedSeconds) * time.Second
	form := fmt.Sprintf(
		"%s\n\n%s\n\n%s",
		"End session and save?",
		fmt.Sprintf("Session duration: %s", timerDisplayStyle.Render(formatDuration(elapsed))),
		helpStyle.Render("y: Yes, save | n: Cancel"),
	)

	return lipgloss.Place(
		80, 24,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Width(50).Render(form),
	)
}

func (m *Model) historyView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Width(80).Render("Study History"))
	sb.WriteString("\n\n")

	if len(m.History) == 0 {
		sb.WriteString(inactiveStyle.Render("No archived sessions."))
		sb.WriteString("\n")
	}

	end := m.HistoryScroll + m.HistoryPageHeight
	if end > len(m.History) {
		end = len(m.History)
	}
	for _, a := range m.History[m.HistoryScroll:end] {
		archived := ""
		if !a.ArchivedAt.IsZero() {
			archived = logTimeStyle.Render(" archived " + humanize.Time(a.ArchivedAt))
		}
		sb.WriteString(fmt.Sprintf("  %s  %s%s\n",
			logTimeStyle.Render(a.Date),
			formatDuration(a.Duration()),
			archived,
		))
	}

	sb.WriteString("\n")
	if m.ShowClearConfirm {
		sb.WriteString(errorStyle.Render("Permanently delete all history? y/n"))
	} else {
		sb.WriteString(m.statusLine())
		sb.WriteString("\n")
		sb.WriteString(helpStyle.Render("Scroll: Up/Down | Clear: x | Back: h/Esc"))
	}
	return sb.String()
}

func formatLogEntry(l studylog.Entry) string {
	timeStr := logTimeStyle.Render(l.CreatedAt.Local().Format("Jan 02 15:04"))
	return fmt.Sprintf("  %s  %s", timeStr, formatDuration(l.Duration()))
}
