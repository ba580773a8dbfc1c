package logging

import (
	"strings"
	"testing"
	"time"
)

func TestLoggerRespectsMinLevel(t *testing.T) {
	buffer := NewBuffer(10)
	logger := NewLoggerWithOutput(buffer, LevelWarning, nil)

	logger.Debug("quiet", nil)
	logger.Info("quiet", nil)
	logger.Warn("loud", nil)
	logger.Error("loud", nil)

	entries := buffer.List()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Level != LevelWarning || entries[1].Level != LevelError {
		t.Fatalf("levels = %v %v", entries[0].Level, entries[1].Level)
	}
}

func TestWithAddsBaseContext(t *testing.T) {
	buffer := NewBuffer(10)
	logger := NewLoggerWithOutput(buffer, LevelInfo, nil).With(map[string]string{"room": "workshop"})

	logger.Info("dispatched", map[string]string{"mode": "fallback"})

	entries := buffer.List()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	ctx := entries[0].Context
	if ctx["room"] != "workshop" || ctx["mode"] != "fallback" {
		t.Fatalf("context = %v", ctx)
	}
}

func TestSubscribeReceivesEntries(t *testing.T) {
	logger := NewLoggerWithOutput(NewBuffer(10), LevelInfo, nil)
	entries, cancel := logger.Subscribe()
	defer cancel()

	logger.Info("hello", nil)

	select {
	case entry := <-entries:
		if entry.Message != "hello" {
			t.Fatalf("entry = %+v", entry)
		}
	case <-time.After(time.Second):
		t.Fatal("no entry before deadline")
	}
}

func TestDerivedLoggerFeedsSameSubscribers(t *testing.T) {
	root := NewLoggerWithOutput(NewBuffer(10), LevelInfo, nil)
	entries, cancel := root.Subscribe()
	defer cancel()

	root.With(map[string]string{"room": "den"}).Warn("send failed", nil)

	select {
	case entry := <-entries:
		if entry.Context["room"] != "den" {
			t.Fatalf("entry = %+v", entry)
		}
	case <-time.After(time.Second):
		t.Fatal("derived logger entry never reached root subscriber")
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	logger := NewLoggerWithOutput(NewBuffer(10), LevelInfo, nil)
	entries, cancel := logger.Subscribe()

	cancel()
	cancel() // second cancel is a no-op

	if _, open := <-entries; open {
		t.Fatal("channel should close on cancel")
	}
	// Logging after cancel must not panic or deliver.
	logger.Info("late", nil)
}

func TestLevelMeets(t *testing.T) {
	if !LevelError.Meets(LevelWarning) || !LevelInfo.Meets(LevelInfo) {
		t.Fatal("higher or equal severity must meet the threshold")
	}
	if LevelDebug.Meets(LevelInfo) {
		t.Fatal("debug must not meet info")
	}
	// Unknown levels rank as info.
	if Level("shouting").Meets(LevelWarning) {
		t.Fatal("unknown level must rank as info")
	}
}

func TestFormatEntry(t *testing.T) {
	entry := Entry{
		Level:   LevelInfo,
		Message: "worker started",
		Context: map[string]string{"room": "workshop", "pid": "42"},
	}
	formatted := formatEntry(entry)
	if !strings.HasPrefix(formatted, `level=info msg="worker started"`) {
		t.Fatalf("formatted = %q", formatted)
	}
	// Context keys come out sorted.
	if !strings.Contains(formatted, `pid="42" room="workshop"`) {
		t.Fatalf("formatted = %q", formatted)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warn":    LevelWarning,
		" error ": LevelError,
	}
	for in, want := range cases {
		got, ok := ParseLevel(in)
		if !ok || got != want {
			t.Errorf("ParseLevel(%q) = (%v, %v)", in, got, ok)
		}
	}
	if _, ok := ParseLevel("shouting"); ok {
		t.Fatal("unknown level must not parse")
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Info("ignored", nil)
	logger.With(map[string]string{"a": "b"}).Error("still ignored", nil)
}
