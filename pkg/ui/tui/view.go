package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the entire TUI
func (m *Model) View() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.width == 0 {
		return "Initializing..."
	}

	width := m.width - 2
	sections := []string{
		m.renderHeader(),
		m.renderScanPanel(width),
		m.renderMatchesPanel(width),
		m.renderLogsPanel(width),
	}

	if m.showHelp {
		sections = append(sections, m.renderHelp(width))
	} else if !m.done {
		sections = append(sections, helpStyle.Render("q quit • ? help"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	status := m.spinner.View() + " scanning"
	switch {
	case m.done && m.err != nil:
		status = errorStyle.Render("✗ failed")
	case m.done:
		status = successStyle.Render("✓ done")
	}
	title := titleStyle.Render(" RBLXLOCATE ")
	target := statsValueStyle.Render(fmt.Sprintf("place %s • user %s", m.placeID, m.userID))
	return lipgloss.JoinHorizontal(lipgloss.Center, title, " ", target, "  ", status)
}

// renderScanPanel renders page progress and counters
func (m *Model) renderScanPanel(width int) string {
	title := titleStyle.Render(" SCAN ")

	finished := m.scannedPages + m.failedPages
	ratio := 0.0
	if m.pageCount > 0 {
		ratio = float64(finished) / float64(m.pageCount)
	} else if m.done {
		ratio = 1
	}
	if ratio > 1 {
		ratio = 1
	}

	bar := m.bar
	if width > 24 {
		bar.Width = width - 20
	}

	stats := []string{
		bar.ViewAs(ratio),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Pages:"),
			statsValueStyle.Render(fmt.Sprintf("%d/%d (%d in flight)", finished, m.pageCount, m.activePages))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Instances:"),
			statsValueStyle.Render(fmt.Sprintf("%d scanned of %d", m.instances, m.total))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Players:"),
			statsValueStyle.Render(fmt.Sprintf("%d", m.players))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Elapsed:"),
			statsValueStyle.Render(formatDuration(time.Since(m.startTime)))),
	}
	if m.failedPages > 0 {
		stats = append(stats, errorStyle.Render(fmt.Sprintf("%d page(s) failed", m.failedPages)))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, stats...)),
	)
}

func (m *Model) renderMatchesPanel(width int) string {
	title := titleStyle.Render(" MATCHES ")

	if len(m.matches) == 0 {
		content := lipgloss.NewStyle().Foreground(dimWhite).Render("No matches yet")
		return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
	}

	items := make([]string, 0, len(m.matches))
	for _, match := range m.matches {
		line := fmt.Sprintf("✓ %s (page %s)", match.InstanceGUID, match.StartIndex)
		items = append(items, matchItemStyle.Render(truncate(line, width-6)))
	}
	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, items...)),
	)
}

// renderLogsPanel renders the last few log lines
func (m *Model) renderLogsPanel(width int) string {
	title := titleStyle.Render(" LOG ")

	start := len(m.logMessages) - 6
	if start < 0 {
		start = 0
	}

	var logs []string
	for _, log := range m.logMessages[start:] {
		timestamp := logTimestampStyle.Render(log.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(log.Color).Bold(true).Render(fmt.Sprintf("[%-5s]", log.Level))
		message := logMessageStyle.Render(truncate(log.Message, width-22))
		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, message))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = lipgloss.NewStyle().Foreground(dimWhite).Render("No logs yet...")
	}

	return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m *Model) renderHelp(width int) string {
	help := `
  q/Q      quit and cancel the scan
  ?        toggle this help
  ctrl+l   clear the log

  ` + successStyle.Render("Green") + `    match found
  ` + errorStyle.Render("Red") + `      page failed
`
	return panelStyle.Width(width).Render(help)
}

func truncate(s string, limit int) string {
	if limit < 4 || len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
