package tui

import (
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"rblxlocate/pkg/locator"
)

// TUI renders a live view of one scan. It implements locator.Observer so it
// can be handed straight to locator.WithObserver.
type TUI struct {
	program *tea.Program
	model   *Model
}

var _ locator.Observer = (*TUI)(nil)

// NewTUI creates a TUI for a scan of placeID looking for userID. The view is
// drawn on stderr unless opts say otherwise, leaving stdout to match lines.
func NewTUI(placeID, userID string, opts ...tea.ProgramOption) *TUI {
	model := NewModel(placeID, userID)
	opts = append([]tea.ProgramOption{tea.WithOutput(os.Stderr)}, opts...)
	program := tea.NewProgram(model, opts...)

	return &TUI{
		program: program,
		model:   model,
	}
}

// Start runs the TUI until the scan finishes or the user quits
func (t *TUI) Start() error {
	go func() {
		time.Sleep(100 * time.Millisecond)
		t.program.Send(TickMsg(time.Now()))
	}()

	_, err := t.program.Run()
	return err
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

// Model exposes the underlying model, e.g. to read matches after Start returns
func (t *TUI) Model() *Model {
	return t.model
}

func (t *TUI) ScanStarted(targetURL string, total, pages int) {
	t.Send(ScanStartedMsg{TargetURL: targetURL, Total: total, Pages: pages})
}

func (t *TUI) PageStarted(startIndex string) {
	t.Send(PageStartedMsg{StartIndex: startIndex})
}

func (t *TUI) PageScanned(startIndex string, instances, players int) {
	t.Send(PageScannedMsg{StartIndex: startIndex, Instances: instances, Players: players})
}

func (t *TUI) PageFailed(startIndex string, err error) {
	t.Send(PageFailedMsg{StartIndex: startIndex, Error: err})
}

func (t *TUI) MatchFound(m locator.Match) {
	t.Send(MatchFoundMsg{Match: m})
}

// Done reports the end of the scan; the program exits after rendering it
func (t *TUI) Done(err error) {
	t.Send(ScanDoneMsg{Err: err})
}

// LogInfo adds an info line to the log panel
func (t *TUI) LogInfo(message string) {
	t.Send(LogMsg{Level: "INFO", Message: message})
}
