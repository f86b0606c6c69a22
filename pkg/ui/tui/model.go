package tui

import (
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"rblxlocate/pkg/locator"
)

// PageState represents where one instance page is in its lifecycle
type PageState int

const (
	PagePending PageState = iota
	PageActive
	PageScanned
	PageFailed
)

// PageItem is one instance page of the scan
type PageItem struct {
	StartIndex string
	State      PageState
	Instances  int
	Players    int
	StartTime  time.Time
	Duration   time.Duration
	Error      error
}

// Model is the bubbletea model of a running scan
type Model struct {
	spinner spinner.Model
	bar     progress.Model

	placeID   string
	userID    string
	targetURL string

	// Scan state
	pages        map[string]*PageItem
	pageOrder    []string
	total        int
	pageCount    int
	activePages  int
	scannedPages int
	failedPages  int
	instances    int
	players      int
	matches      []locator.Match
	startTime    time.Time
	done         bool
	err          error

	// UI state
	width          int
	height         int
	showHelp       bool
	logMessages    []LogMessage
	maxLogMessages int

	mu sync.RWMutex
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// NewModel creates the model for a scan of placeID looking for userID
func NewModel(placeID, userID string) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accentCyan)

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	return &Model{
		spinner:        s,
		bar:            bar,
		placeID:        placeID,
		userID:         userID,
		pages:          make(map[string]*PageItem),
		startTime:      time.Now(),
		maxLogMessages: 50,
	}
}

// Init starts the spinner
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// StartScan records the page layout learned from page 0
func (m *Model) StartScan(targetURL string, total, pages int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.targetURL = targetURL
	m.total = total
	m.pageCount = pages
}

// StartPage marks a page request as in flight
func (m *Model) StartPage(startIndex string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	page := m.page(startIndex)
	page.State = PageActive
	page.StartTime = time.Now()
	m.activePages++
}

// CompletePage marks a page as scanned
func (m *Model) CompletePage(startIndex string, instances, players int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	page := m.page(startIndex)
	if page.State == PageActive {
		m.activePages--
	}
	page.State = PageScanned
	page.Instances = instances
	page.Players = players
	if !page.StartTime.IsZero() {
		page.Duration = time.Since(page.StartTime)
	}
	m.scannedPages++
	m.instances += instances
	m.players += players
}

// FailPage marks a page as failed
func (m *Model) FailPage(startIndex string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	page := m.page(startIndex)
	if page.State == PageActive {
		m.activePages--
	}
	page.State = PageFailed
	page.Error = err
	m.failedPages++
}

// AddMatch records a located instance
func (m *Model) AddMatch(match locator.Match) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.matches = append(m.matches, match)
}

// Finish marks the scan as over
func (m *Model) Finish(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.done = true
	m.err = err
}

// page returns the entry for startIndex, creating it on first sight. Callers hold mu.
func (m *Model) page(startIndex string) *PageItem {
	page, ok := m.pages[startIndex]
	if !ok {
		page = &PageItem{StartIndex: startIndex, State: PagePending}
		m.pages[startIndex] = page
		m.pageOrder = append(m.pageOrder, startIndex)
	}
	return page
}

// AddLogMessage adds a log message
func (m *Model) AddLogMessage(level, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	color := dimWhite
	switch level {
	case "ERROR":
		color = alertRed
	case "WARN":
		color = accentOrange
	case "MATCH":
		color = accentGreen
	case "INFO":
		color = accentCyan
	}

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   color,
	})

	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// Progress returns the fraction of pages that have finished, scanned or failed
func (m *Model) Progress() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.pageCount == 0 {
		if m.done {
			return 1
		}
		return 0
	}
	p := float64(m.scannedPages+m.failedPages) / float64(m.pageCount)
	if p > 1 {
		p = 1
	}
	return p
}

// Matches returns a copy of the matches seen so far
func (m *Model) Matches() []locator.Match {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]locator.Match, len(m.matches))
	copy(out, m.matches)
	return out
}

// PagesByState returns the pages in a given state, in the order they were first seen
func (m *Model) PagesByState(state PageState) []*PageItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*PageItem
	for _, id := range m.pageOrder {
		if page := m.pages[id]; page != nil && page.State == state {
			out = append(out, page)
		}
	}
	return out
}
