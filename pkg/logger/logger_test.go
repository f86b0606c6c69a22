package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rblxlocate/pkg/config"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"warn level", &config.LoggingConfig{Level: "warn"}, false},
		{"debug level", &config.LoggingConfig{Level: "debug"}, false},
		{"invalid level", &config.LoggingConfig{Level: "chatty"}, true},
		{"file output", &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "run.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"fatal", zerolog.WarnLevel, true},
		{"", zerolog.WarnLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if level != tt.expected {
				t.Errorf("parseLogLevel() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter("warn", &buf)
	require.NoError(t, err)

	l.Debug("hidden debug")
	l.Info("hidden info")
	l.Warn("shown warn")
	l.Error("shown error")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "shown warn", lines[0]["message"])
	assert.Equal(t, "error", lines[1]["level"])
	assert.Equal(t, "rblxlocate", lines[0]["app"])
}

func TestWithFieldsDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter("debug", &buf)
	require.NoError(t, err)

	child := l.WithField("page", "20").WithFields(map[string]interface{}{"place_id": "606849621"})
	child.Info("child")
	l.Info("parent")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "20", lines[0]["page"])
	assert.Equal(t, "606849621", lines[0]["place_id"])
	assert.NotContains(t, lines[1], "page")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter("debug", &buf)
	require.NoError(t, err)

	assert.Same(t, l, l.WithError(nil))

	l.WithError(errors.New("connection reset")).Error("page failed")
	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "connection reset", lines[0]["error"])
}

func TestFieldTypes(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter("debug", &buf)
	require.NoError(t, err)

	l.InfoWithFields("typed", map[string]interface{}{
		"str":   "v",
		"int":   7,
		"bool":  true,
		"float": 1.5,
		"dur":   1500 * time.Millisecond,
		"strs":  []string{"a", "b"},
		"err":   errors.New("boom"),
	})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	m := lines[0]
	assert.Equal(t, "v", m["str"])
	assert.Equal(t, float64(7), m["int"])
	assert.Equal(t, true, m["bool"])
	assert.Equal(t, 1.5, m["float"])
	assert.Equal(t, "boom", m["err"])
	assert.Len(t, m["strs"], 2)
}

func TestHelpers(t *testing.T) {
	tl := NewTestLogger()

	LogRequest(tl, "GET", "https://www.roblox.com/games/getgameinstancesjson", 200, time.Millisecond)
	LogRequest(tl, "GET", "https://thumbnails.roblox.com/v1/users/avatar-headshot", 429, time.Millisecond)
	LogRequest(tl, "GET", "https://www.roblox.com/games/getgameinstancesjson", 503, time.Millisecond)
	LogPageScan(tl, "1", "10", 10, 42)
	LogMatch(tl, "1", "2", "guid")
	LogComponentStart(tl, "locator", map[string]interface{}{"pages": 3})
	LogComponentStop(tl, "locator", "done")

	assert.Len(t, tl.GetMessagesByLevel("DEBUG"), 2)
	assert.Len(t, tl.GetMessagesByLevel("WARN"), 1)
	assert.True(t, tl.HasError())
	assert.True(t, tl.HasMessage("Player located"))

	starts := tl.GetMessages()
	var start LogMessage
	for _, m := range starts {
		if m.Message == "Component started" {
			start = m
		}
	}
	assert.Equal(t, "locator", start.Fields["component"])
	assert.Equal(t, 3, start.Fields["pages"])
}

func TestTestLoggerConcurrent(t *testing.T) {
	tl := NewTestLogger()
	child := tl.WithField("worker", true)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			child.Debug("tick")
		}()
	}
	wg.Wait()

	assert.Len(t, tl.GetMessages(), 50)
	tl.Clear()
	assert.Empty(t, tl.GetMessages())
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.WithField("k", "v").WithError(errors.New("x")).Error("nothing")
	assert.NotNil(t, l.GetZerolog())
}
