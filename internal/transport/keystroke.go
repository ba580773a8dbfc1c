package transport

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"switchboard/internal/logging"
	"switchboard/internal/room"
)

const (
	// DefaultPasteThreshold is the text length in characters above which the
	// send goes through the clipboard instead of simulated typing.
	DefaultPasteThreshold = 100
	defaultFocusDelay     = 250 * time.Millisecond
)

// KeystrokeStrategy activates the target application and types or pastes the
// text, ending with a confirm keypress. It steals OS focus, so the router
// always runs it inside the serialization queue.
type KeystrokeStrategy struct {
	runner         CommandRunner
	logger         *logging.Logger
	focusDelay     time.Duration
	pasteThreshold int
	sleep          func(context.Context, time.Duration)
}

func NewKeystrokeStrategy(runner CommandRunner, logger *logging.Logger, focusDelay time.Duration, pasteThreshold int) *KeystrokeStrategy {
	if runner == nil {
		runner = NewRunner()
	}
	if focusDelay <= 0 {
		focusDelay = defaultFocusDelay
	}
	if pasteThreshold <= 0 {
		pasteThreshold = DefaultPasteThreshold
	}
	return &KeystrokeStrategy{
		runner:         runner,
		logger:         logger,
		focusDelay:     focusDelay,
		pasteThreshold: pasteThreshold,
		sleep:          sleepContext,
	}
}

func (s *KeystrokeStrategy) Kind() room.Transport {
	return room.TransportKeystroke
}

func (s *KeystrokeStrategy) Send(ctx context.Context, target room.Room, text string) error {
	activate := fmt.Sprintf(`tell application "%s" to activate`, EscapeAppleScript(target.TargetApp))
	if _, err := runCommand(s.runner, "osascript", []string{"-e", activate}, nil); err != nil {
		return err
	}
	s.sleep(ctx, s.focusDelay)

	if utf8.RuneCountInString(text) > s.pasteThreshold {
		return s.paste(text)
	}
	return s.typeText(text)
}

func (s *KeystrokeStrategy) paste(text string) error {
	if _, err := runCommand(s.runner, "pbcopy", nil, []byte(text)); err != nil {
		return err
	}
	args := []string{
		"-e", `tell application "System Events" to keystroke "v" using command down`,
		"-e", `delay 0.1`,
		"-e", `tell application "System Events" to key code 36`,
	}
	_, err := runCommand(s.runner, "osascript", args, nil)
	return err
}

func (s *KeystrokeStrategy) typeText(text string) error {
	args := []string{
		"-e", fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, EscapeKeystrokes(text)),
		"-e", `tell application "System Events" to key code 36`,
	}
	_, err := runCommand(s.runner, "osascript", args, nil)
	return err
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	if ctx == nil || ctx.Done() == nil {
		time.Sleep(d)
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
