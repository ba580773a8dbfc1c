package transport

import (
	"context"
	"fmt"
	"strings"

	"switchboard/internal/logging"
	"switchboard/internal/room"
)

// SessionStrategy writes text straight into a terminal session of a
// scriptable terminal (iTerm2). Sessions are scanned for a name containing
// the room hint; the current session is the fallback when nothing matches.
type SessionStrategy struct {
	runner CommandRunner
	logger *logging.Logger
}

func NewSessionStrategy(runner CommandRunner, logger *logging.Logger) *SessionStrategy {
	if runner == nil {
		runner = NewRunner()
	}
	return &SessionStrategy{runner: runner, logger: logger}
}

func (s *SessionStrategy) Kind() room.Transport {
	return room.TransportSession
}

func (s *SessionStrategy) Send(ctx context.Context, target room.Room, text string) error {
	app := target.TargetApp
	if strings.TrimSpace(app) == "" {
		app = "iTerm2"
	}
	script := sessionWriteScript(app, target.MatchHint, text)
	output, err := runCommand(s.runner, "osascript", []string{"-e", script}, nil)
	if err != nil {
		return err
	}
	if strings.Contains(string(output), "fallback") && s.logger != nil {
		s.logger.Debug("no session matched hint, wrote to current session", map[string]string{
			"room": target.ID,
			"hint": target.MatchHint,
		})
	}
	return nil
}

func sessionWriteScript(app, hint, text string) string {
	escapedHint := EscapeAppleScript(hint)
	escapedText := EscapeAppleScript(text)
	return fmt.Sprintf(`tell application "%s"
	repeat with w in windows
		repeat with t in tabs of w
			repeat with s in sessions of t
				if name of s contains "%s" then
					tell s to write text "%s"
					return "sent"
				end if
			end repeat
		end repeat
	end repeat
	tell current session of current window to write text "%s"
	return "fallback"
end tell`, EscapeAppleScript(app), escapedHint, escapedText, escapedText)
}
