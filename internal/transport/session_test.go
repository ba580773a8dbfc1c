package transport

import (
	"context"
	"strings"
	"testing"

	"switchboard/internal/room"
)

func TestSessionWriteScriptEscapes(t *testing.T) {
	script := sessionWriteScript("iTerm2", "claude", `say "hi"`+"\nplease")
	if !strings.Contains(script, `write text "say \"hi\"\nplease"`) {
		t.Fatalf("text not escaped in script:\n%s", script)
	}
	if !strings.Contains(script, `if name of s contains "claude"`) {
		t.Fatalf("hint missing from script:\n%s", script)
	}
}

func TestSessionSendInvokesOsascript(t *testing.T) {
	runner := &fakeRunner{handler: func(name string, args []string, input []byte) ([]byte, error) {
		return []byte("sent"), nil
	}}
	strategy := NewSessionStrategy(runner, nil)
	target := room.Room{ID: "studio", Transport: room.TransportSession, TargetApp: "iTerm2", MatchHint: "claude"}

	if err := strategy.Send(context.Background(), target, "hello"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	call := runner.call(0)
	if call.name != "osascript" || call.args[0] != "-e" {
		t.Fatalf("unexpected invocation: %s %v", call.name, call.args)
	}
	if !strings.Contains(call.args[1], `tell application "iTerm2"`) {
		t.Fatalf("script missing app:\n%s", call.args[1])
	}
}

func TestWindowScriptFallsBackToFrontWindow(t *testing.T) {
	script := windowScript("Terminal", "build", "make test")
	if !strings.Contains(script, `do script "make test" in front window`) {
		t.Fatalf("front window fallback missing:\n%s", script)
	}
	if !strings.Contains(script, `if name of w contains "build"`) {
		t.Fatalf("hint scan missing:\n%s", script)
	}
}

func TestWindowSendPropagatesError(t *testing.T) {
	runner := &fakeRunner{handler: func(name string, args []string, input []byte) ([]byte, error) {
		return []byte("Terminal got an error"), context.DeadlineExceeded
	}}
	strategy := NewWindowStrategy(runner, nil)
	target := room.Room{ID: "annex", Transport: room.TransportWindow, TargetApp: "Terminal", MatchHint: "build"}

	err := strategy.Send(context.Background(), target, "make")
	if err == nil || !strings.Contains(err.Error(), "Terminal got an error") {
		t.Fatalf("expected folded osascript error, got %v", err)
	}
}
