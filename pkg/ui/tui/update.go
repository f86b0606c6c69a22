package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"rblxlocate/pkg/locator"
)

// Message types for the TUI

// ScanStartedMsg is sent once page 0 has revealed the page count
type ScanStartedMsg struct {
	TargetURL string
	Total     int
	Pages     int
}

// PageStartedMsg is sent when a page request goes out
type PageStartedMsg struct {
	StartIndex string
}

// PageScannedMsg is sent when a page has been searched
type PageScannedMsg struct {
	StartIndex string
	Instances  int
	Players    int
}

// PageFailedMsg is sent when a page request fails
type PageFailedMsg struct {
	StartIndex string
	Error      error
}

// MatchFoundMsg is sent for every located instance
type MatchFoundMsg struct {
	Match locator.Match
}

// ScanDoneMsg ends the program
type ScanDoneMsg struct {
	Err error
}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// TickMsg is sent periodically to update the UI
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.mu.Lock()
		m.width = msg.Width
		m.height = msg.Height
		m.mu.Unlock()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		return m, tea.Batch(tickCmd(), m.spinner.Tick)

	case ScanStartedMsg:
		m.StartScan(msg.TargetURL, msg.Total, msg.Pages)
		m.AddLogMessage("INFO", fmt.Sprintf("%d instances across %d pages", msg.Total, msg.Pages))
		return m, nil

	case PageStartedMsg:
		m.StartPage(msg.StartIndex)
		return m, nil

	case PageScannedMsg:
		m.CompletePage(msg.StartIndex, msg.Instances, msg.Players)
		return m, nil

	case PageFailedMsg:
		m.FailPage(msg.StartIndex, msg.Error)
		m.AddLogMessage("ERROR", fmt.Sprintf("Page %s failed: %v", msg.StartIndex, msg.Error))
		return m, nil

	case MatchFoundMsg:
		m.AddMatch(msg.Match)
		m.AddLogMessage("MATCH", "Found in instance "+msg.Match.InstanceGUID)
		return m, nil

	case ScanDoneMsg:
		m.Finish(msg.Err)
		if msg.Err != nil {
			m.AddLogMessage("ERROR", msg.Err.Error())
		}
		return m, tea.Quit

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case "?":
		m.mu.Lock()
		m.showHelp = !m.showHelp
		m.mu.Unlock()
		return m, nil

	case "ctrl+l":
		m.mu.Lock()
		m.logMessages = nil
		m.mu.Unlock()
		return m, nil
	}

	return m, nil
}

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
