package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"rblxlocate/pkg/locator"
)

// ProgressDisplay draws a single self-overwriting progress line while a scan
// runs. It implements locator.Observer.
type ProgressDisplay struct {
	mu        sync.Mutex
	w         io.Writer
	placeID   string
	pages     int
	total     int
	scanned   int
	failed    int
	inFlight  int
	instances int
	players   int
	matches   int
	startTime time.Time
	verbose   bool
}

var _ locator.Observer = (*ProgressDisplay)(nil)

// NewProgressDisplay creates a display writing to w. In verbose mode every
// page is reported on its own line instead.
func NewProgressDisplay(w io.Writer, placeID string, verbose bool) *ProgressDisplay {
	return &ProgressDisplay{
		w:         w,
		placeID:   placeID,
		startTime: time.Now(),
		verbose:   verbose,
	}
}

func (p *ProgressDisplay) ScanStarted(targetURL string, total, pages int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.pages = pages
	if p.verbose {
		fmt.Fprintf(p.w, "%s %s across %s\n", Magenta("→"), Plural(total, "instance"), Plural(pages, "page"))
		fmt.Fprintf(p.w, "%s target %s\n", Magenta("→"), Dim(targetURL))
		return
	}
	p.printProgress()
}

func (p *ProgressDisplay) PageStarted(startIndex string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.inFlight++
	if !p.verbose {
		p.printProgress()
	}
}

func (p *ProgressDisplay) PageScanned(startIndex string, instances, players int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.inFlight--
	p.scanned++
	p.instances += instances
	p.players += players

	if p.verbose {
		fmt.Fprintf(p.w, "%s page %s • %s • %s\n",
			Green("✓"), startIndex, Plural(instances, "instance"), Plural(players, "player"))
		return
	}
	p.printProgress()
}

func (p *ProgressDisplay) PageFailed(startIndex string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.inFlight--
	p.failed++

	if p.verbose {
		fmt.Fprintf(p.w, "%s page %s - %v\n", Red("✗"), startIndex, err)
		return
	}
	p.printProgress()
}

func (p *ProgressDisplay) MatchFound(m locator.Match) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.matches++
	if p.verbose {
		fmt.Fprintf(p.w, "%s instance %s on page %s\n", Green("★"), m.InstanceGUID, m.StartIndex)
		return
	}
	p.printProgress()
}

// printProgress redraws the progress line. Callers hold mu.
func (p *ProgressDisplay) printProgress() {
	finished := p.scanned + p.failed
	line := fmt.Sprintf("%s [%s] %d/%d pages • %s • %s",
		Cyan(p.placeID),
		Bar(finished, p.pages, 20),
		finished,
		p.pages,
		Plural(p.instances, "instance"),
		FormatDuration(time.Since(p.startTime)),
	)
	if p.matches > 0 {
		line += " • " + Green(Plural(p.matches, "match"))
	}
	if p.failed > 0 {
		line += " • " + Red(fmt.Sprintf("%d failed", p.failed))
	}
	if p.inFlight > 0 {
		line += " • " + Dim(fmt.Sprintf("%d in flight", p.inFlight))
	}

	fmt.Fprintf(p.w, "\r%s\r%s", strings.Repeat(" ", 100), line)
}

// Complete finishes the line and prints the final tally
func (p *ProgressDisplay) Complete(summary *locator.Summary, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.verbose {
		fmt.Fprintln(p.w)
	}
	if summary == nil {
		return
	}

	status := Green("✓")
	if err != nil {
		status = Red("✗")
	}
	fmt.Fprintf(p.w, "%s Scanned %s, %s and %s of place %s in %s\n",
		status,
		Plural(summary.PagesScanned, "page"),
		Plural(summary.InstancesScanned, "instance"),
		Plural(summary.PlayersScanned, "player"),
		p.placeID,
		FormatDuration(summary.Elapsed),
	)
	if !summary.Found() {
		fmt.Fprintf(p.w, "  %s player not found in any instance\n", Dim("•"))
		return
	}
	fmt.Fprintf(p.w, "  %s player seen in %s\n", Green("★"), Plural(len(summary.JoinScripts()), "instance"))
}
