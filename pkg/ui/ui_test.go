package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rblxlocate/pkg/locator"
)

func TestPrintMatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintMatch(&buf, "game:GetService('TeleportService'):TeleportToPlaceInstance(1, 'abc')"))
	assert.Equal(t, "Found joinscript: game:GetService('TeleportService'):TeleportToPlaceInstance(1, 'abc')\n", buf.String())
}

func TestDecoratedOutputGoesToStderr(t *testing.T) {
	var buf bytes.Buffer
	orig := Stderr
	Stderr = &buf
	defer func() { Stderr = orig }()

	PrintError("failed", errors.New("boom"))
	PrintWarning("careful")
	PrintSuccess("ok")
	PrintInfo("Place", "1")

	out := buf.String()
	assert.Contains(t, out, "failed: boom")
	assert.Contains(t, out, "careful")
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "Place")
}

func TestPrompterAsk(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("606849621\n  1  \nsecret-cookie"), &out)

	place, err := p.Ask(PlacePrompt)
	require.NoError(t, err)
	user, err := p.Ask(UserPrompt)
	require.NoError(t, err)
	security, err := p.AskSecret(SecurityPrompt)
	require.NoError(t, err)

	assert.Equal(t, "606849621", place)
	assert.Equal(t, "1", user)
	assert.Equal(t, "secret-cookie", security)
	assert.Equal(t, PlacePrompt+UserPrompt+SecurityPrompt, out.String())
}

func TestPrompterAskEOF(t *testing.T) {
	p := NewPrompter(strings.NewReader(""), &bytes.Buffer{})
	_, err := p.Ask(PlacePrompt)
	require.Error(t, err)
}

func TestPrompterFill(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("42\n\n"), &out)

	preset := "already-set"
	require.NoError(t, p.Fill(&preset, PlacePrompt, false))
	assert.Equal(t, "already-set", preset)
	assert.Empty(t, out.String())

	var user string
	require.NoError(t, p.Fill(&user, UserPrompt, false))
	assert.Equal(t, "42", user)

	var security string
	err := p.Fill(&security, SecurityPrompt, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "roblox security is required")
}

func TestBar(t *testing.T) {
	assert.Equal(t, "━━━━━─────", Bar(1, 2, 10))
	assert.Equal(t, "──────────", Bar(0, 0, 10))
	assert.Equal(t, "━━━━━━━━━━", Bar(5, 3, 10))
	assert.Equal(t, "", Bar(1, 1, 0))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", FormatDuration(250*time.Millisecond))
	assert.Equal(t, "1.5s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "2m5s", FormatDuration(125*time.Second))
	assert.Equal(t, "1h1m", FormatDuration(61*time.Minute))
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 page", Plural(1, "page"))
	assert.Equal(t, "0 pages", Plural(0, "page"))
	assert.Equal(t, "3 matches", Plural(3, "match"))
}

func TestProgressDisplay(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplay(&buf, "606849621", false)

	p.ScanStarted("u", 23, 3)
	p.PageStarted("0")
	p.PageScanned("0", 10, 80)
	p.MatchFound(locator.Match{InstanceGUID: "abc", StartIndex: "0"})
	p.PageFailed("10", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "2/3 pages")
	assert.Contains(t, out, "10 instances")
	assert.Contains(t, out, "1 match")
	assert.Contains(t, out, "1 failed")

	buf.Reset()
	p.Complete(&locator.Summary{PagesScanned: 1, InstancesScanned: 10, PlayersScanned: 80}, errors.New("boom"))
	assert.Contains(t, buf.String(), "Scanned 1 page, 10 instances and 80 players of place 606849621")
	assert.Contains(t, buf.String(), "player not found")
}

func TestProgressDisplaySettlesInFlight(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplay(&buf, "1", false)

	p.ScanStarted("u", 25, 3)
	p.PageStarted("0")
	p.PageStarted("10")
	p.PageStarted("20")
	assert.Contains(t, lastRedraw(buf.String()), "3 in flight")

	p.PageFailed("20", errors.New("not found"))
	p.PageScanned("0", 10, 40)
	p.PageFailed("10", errors.New("scan aborted"))

	last := lastRedraw(buf.String())
	assert.NotContains(t, last, "in flight")
	assert.Contains(t, last, "3/3 pages")
	assert.Contains(t, last, "2 failed")
}

func TestProgressDisplayCompleteCountsDistinctInstances(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplay(&buf, "1", true)

	p.Complete(&locator.Summary{
		PagesScanned: 2,
		Matches: []locator.Match{
			{InstanceGUID: "a", JoinScript: "join-a"},
			{InstanceGUID: "a", JoinScript: "join-a"},
			{InstanceGUID: "b", JoinScript: "join-b"},
		},
	}, nil)

	assert.Contains(t, buf.String(), "player seen in 2 instances")
	assert.NotContains(t, buf.String(), "not found")
}

// lastRedraw returns the progress line as last drawn
func lastRedraw(out string) string {
	return out[strings.LastIndex(out, "\r")+1:]
}

func TestProgressDisplayVerbose(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplay(&buf, "1", true)

	p.ScanStarted("https://tr.rbxcdn.com/x", 5, 1)
	p.PageStarted("0")
	p.PageScanned("0", 1, 1)
	p.MatchFound(locator.Match{InstanceGUID: "abc", StartIndex: "0"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "5 instances across 1 page")
	assert.Contains(t, lines[2], "page 0")
	assert.Contains(t, lines[3], "instance abc")
}

type recordingSender struct {
	titles   []string
	messages []string
}

func (r *recordingSender) Send(title, message string) error {
	r.titles = append(r.titles, title)
	r.messages = append(r.messages, message)
	return errors.New("no notification daemon")
}

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	orig := Stderr
	Stderr = &buf
	defer func() { Stderr = orig }()

	sender := &recordingSender{}
	n := NewNotifierWithSender(sender)
	n.NotifyMatch("606849621", "abc")

	assert.Equal(t, []string{"Player located"}, sender.titles)
	assert.Equal(t, []string{"place 606849621, instance abc"}, sender.messages)
	assert.Contains(t, buf.String(), "Player located")

	NewNotifierWithSender(nil).SendNotification("t", "m")
}

func TestAppleScriptQuote(t *testing.T) {
	assert.Equal(t, `"say \"hi\""`, appleScriptQuote(`say "hi"`))
}
