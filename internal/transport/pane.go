package transport

import (
	"context"
	"strings"

	"switchboard/internal/logging"
	"switchboard/internal/room"
)

const paneListFormat = "#{pane_id}\t#{pane_title}\t#{window_name}"

// PaneStrategy sends through a terminal multiplexer CLI (tmux) to a pane
// addressed by id. Pane titles and window names are scanned for the room
// hint; when nothing matches, the send goes to the active pane unqualified.
type PaneStrategy struct {
	runner CommandRunner
	logger *logging.Logger
}

func NewPaneStrategy(runner CommandRunner, logger *logging.Logger) *PaneStrategy {
	if runner == nil {
		runner = NewRunner()
	}
	return &PaneStrategy{runner: runner, logger: logger}
}

func (s *PaneStrategy) Kind() room.Transport {
	return room.TransportPane
}

func (s *PaneStrategy) Send(ctx context.Context, target room.Room, text string) error {
	command := target.TargetApp
	if strings.TrimSpace(command) == "" {
		command = "tmux"
	}

	paneID, matched := s.findPane(command, target.MatchHint)
	if !matched && s.logger != nil {
		s.logger.Debug("no pane matched hint, sending to active pane", map[string]string{
			"room": target.ID,
			"hint": target.MatchHint,
		})
	}

	// -l sends the text literally so key-name lookup never mangles it; the
	// newline is a separate keypress.
	textArgs := []string{"send-keys"}
	enterArgs := []string{"send-keys"}
	if matched {
		textArgs = append(textArgs, "-t", paneID)
		enterArgs = append(enterArgs, "-t", paneID)
	}
	textArgs = append(textArgs, "-l", "--", text)
	enterArgs = append(enterArgs, "Enter")

	if _, err := runCommand(s.runner, command, textArgs, nil); err != nil {
		return err
	}
	_, err := runCommand(s.runner, command, enterArgs, nil)
	return err
}

func (s *PaneStrategy) findPane(command, hint string) (string, bool) {
	trimmedHint := strings.TrimSpace(hint)
	if trimmedHint == "" {
		return "", false
	}
	output, err := runCommand(s.runner, command, []string{"list-panes", "-a", "-F", paneListFormat}, nil)
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("pane listing failed", map[string]string{"error": err.Error()})
		}
		return "", false
	}

	needle := strings.ToLower(trimmedHint)
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		fields := strings.SplitN(strings.TrimRight(line, "\r"), "\t", 3)
		if len(fields) < 1 || fields[0] == "" {
			continue
		}
		haystack := strings.ToLower(strings.Join(fields[1:], "\t"))
		if strings.Contains(haystack, needle) {
			return fields[0], true
		}
	}
	return "", false
}
