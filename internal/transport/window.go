package transport

import (
	"context"
	"fmt"
	"strings"

	"switchboard/internal/logging"
	"switchboard/internal/room"
)

// WindowStrategy scans the windows of a scriptable terminal (Terminal.app)
// for a title containing the room hint and executes the text as a command in
// that window; the front window is the fallback.
type WindowStrategy struct {
	runner CommandRunner
	logger *logging.Logger
}

func NewWindowStrategy(runner CommandRunner, logger *logging.Logger) *WindowStrategy {
	if runner == nil {
		runner = NewRunner()
	}
	return &WindowStrategy{runner: runner, logger: logger}
}

func (s *WindowStrategy) Kind() room.Transport {
	return room.TransportWindow
}

func (s *WindowStrategy) Send(ctx context.Context, target room.Room, text string) error {
	app := target.TargetApp
	if strings.TrimSpace(app) == "" {
		app = "Terminal"
	}
	script := windowScript(app, target.MatchHint, text)
	output, err := runCommand(s.runner, "osascript", []string{"-e", script}, nil)
	if err != nil {
		return err
	}
	if strings.Contains(string(output), "fallback") && s.logger != nil {
		s.logger.Debug("no window matched hint, used front window", map[string]string{
			"room": target.ID,
			"hint": target.MatchHint,
		})
	}
	return nil
}

func windowScript(app, hint, text string) string {
	escapedHint := EscapeAppleScript(hint)
	escapedText := EscapeAppleScript(text)
	return fmt.Sprintf(`tell application "%s"
	repeat with w in windows
		if name of w contains "%s" then
			do script "%s" in w
			return "sent"
		end if
	end repeat
	do script "%s" in front window
	return "fallback"
end tell`, EscapeAppleScript(app), escapedHint, escapedText, escapedText)
}
