package transport

import (
	"context"
	"strings"

	"switchboard/internal/logging"
	"switchboard/internal/room"
)

// SocketStrategy drives a terminal's remote-control socket (kitty). The send
// is attempted three ways: to a window matching the hint, to any window on
// the configured socket, and finally over the default connection.
type SocketStrategy struct {
	runner CommandRunner
	logger *logging.Logger
	socket string
}

func NewSocketStrategy(runner CommandRunner, logger *logging.Logger, socket string) *SocketStrategy {
	if runner == nil {
		runner = NewRunner()
	}
	return &SocketStrategy{runner: runner, logger: logger, socket: strings.TrimSpace(socket)}
}

func (s *SocketStrategy) Kind() room.Transport {
	return room.TransportSocket
}

func (s *SocketStrategy) Send(ctx context.Context, target room.Room, text string) error {
	command := target.TargetApp
	if strings.TrimSpace(command) == "" {
		command = "kitty"
	}
	payload := text
	if !strings.HasSuffix(payload, "\n") {
		payload += "\n"
	}

	base := []string{"@"}
	if s.socket != "" {
		base = []string{"@", "--to", "unix:" + s.socket}
	}

	hint := strings.TrimSpace(target.MatchHint)
	if hint != "" {
		args := append(append([]string{}, base...), "send-text", "--match", "title:"+hint, "--", payload)
		if _, err := runCommand(s.runner, command, args, nil); err == nil {
			return nil
		} else if s.logger != nil {
			s.logger.Debug("socket send with match failed, retrying unmatched", map[string]string{
				"room":  target.ID,
				"error": err.Error(),
			})
		}
	}

	args := append(append([]string{}, base...), "send-text", "--", payload)
	_, err := runCommand(s.runner, command, args, nil)
	if err == nil || s.socket == "" {
		// Without a configured socket that attempt already went over the
		// default connection.
		return err
	}
	if s.logger != nil {
		s.logger.Debug("socket send failed, retrying default connection", map[string]string{
			"room":  target.ID,
			"error": err.Error(),
		})
	}

	_, err = runCommand(s.runner, command, []string{"@", "send-text", "--", payload}, nil)
	return err
}
