// Package ui provides internal state management and rendering utilities for ephemeral terminal notifications.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
)

// Lifetime is how long a notification stays visible unless dismissed.
const Lifetime = 5 * time.Second

// Level ranks a notification.
type Level int

const (
	Info Level = iota
	Warning
	Error
)

var levelStyles = map[Level]lipgloss.Style{
	Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
}

// Model encapsulates the state for displaying non-blocking terminal alerts.
type Model struct {
	notification string
	level        Level
	notifiedAt   time.Time
	width        int
}

// NotifyMsg replaces the current notification.
type NotifyMsg struct {
	Level Level
	Text  string
}

// ClearNotificationMsg clears the notification shown at At, if it is still the current one.
type ClearNotificationMsg struct {
	At time.Time
}

// Notify returns a tea.Cmd that shows text at level.
func Notify(level Level, text string) tea.Cmd {
	return func() tea.Msg {
		return NotifyMsg{Level: level, Text: text}
	}
}

// ClearNotification returns a delayed tea.Cmd that clears the notification shown at at.
func ClearNotification(at time.Time) tea.Cmd {
	return tea.Tick(Lifetime, func(time.Time) tea.Msg {
		return ClearNotificationMsg{At: at}
	})
}

// SetWidth sets the wrap width. Zero disables wrapping.
func (m *Model) SetWidth(width int) {
	m.width = width
}

// Current returns the visible notification text.
func (m *Model) Current() string {
	return m.notification
}

// Dismiss hides the current notification.
func (m *Model) Dismiss() {
	m.notification = ""
}

// Update processes incoming messages to modify the notification state.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NotifyMsg:
		m.notification = msg.Text
		m.level = msg.Level
		m.notifiedAt = time.Now()
		return ClearNotification(m.notifiedAt)
	case ClearNotificationMsg:
		if msg.At.Equal(m.notifiedAt) {
			m.notification = ""
		}
		return nil
	}
	return nil
}

// View appends the current notification below mainContent.
func (m *Model) View(mainContent string) string {
	if m.notification == "" {
		return mainContent
	}

	text := m.notification
	if m.width > 0 {
		text = wrap.String(text, m.width)
	}

	lines := strings.Split(mainContent, "\n")
	return strings.Join(append(lines, levelStyles[m.level].Render(text)), "\n")
}
