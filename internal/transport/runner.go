// Package transport delivers raw text into running terminal applications.
// One strategy exists per transport kind; all of them shell out through a
// CommandRunner so tests can intercept the native command invocations.
package transport

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
)

// CommandRunner executes a native command with optional stdin data and
// returns its combined output.
type CommandRunner interface {
	Run(name string, args []string, input []byte) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(name string, args []string, input []byte) ([]byte, error) {
	cmd := exec.Command(name, args...)
	if len(input) > 0 {
		cmd.Stdin = bytes.NewReader(input)
	}
	return cmd.CombinedOutput()
}

// NewRunner returns the default os/exec-backed command runner.
func NewRunner() CommandRunner {
	return execRunner{}
}

func runCommand(runner CommandRunner, name string, args []string, input []byte) ([]byte, error) {
	if runner == nil {
		return nil, errors.New("command runner unavailable")
	}
	output, err := runner.Run(name, args, input)
	if err != nil {
		if len(output) > 0 {
			return output, fmt.Errorf("%s failed: %s", name, bytes.TrimSpace(output))
		}
		return output, fmt.Errorf("%s failed: %w", name, err)
	}
	return output, nil
}
