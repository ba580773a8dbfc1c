// Package orchestrator wraps the external task/agent management CLI. The
// orchestrator speaks free text; responses are parsed permissively in
// parse.go and nothing here assumes a structured protocol.
package orchestrator

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"switchboard/internal/logging"
)

// Runner executes orchestrator CLI invocations.
type Runner interface {
	Run(args []string, input []byte) ([]byte, error)
}

type execRunner struct {
	command string
}

func (r execRunner) Run(args []string, input []byte) ([]byte, error) {
	cmd := exec.Command(r.command, args...)
	if len(input) > 0 {
		cmd.Stdin = bytes.NewReader(input)
	}
	return cmd.CombinedOutput()
}

const DefaultCommand = "swarm"

// Client drives the orchestrator CLI. Availability is probed once and
// cached; an unavailable orchestrator routes every dispatch to fallback.
type Client struct {
	command   string
	runner    Runner
	logger    *logging.Logger
	probeOnce sync.Once
	available bool
}

func NewClient(command string, logger *logging.Logger) *Client {
	command = strings.TrimSpace(command)
	if command == "" {
		command = DefaultCommand
	}
	return &Client{
		command: command,
		runner:  execRunner{command: command},
		logger:  logger,
	}
}

// NewClientWithRunner returns a client using a custom runner. The probe is
// still exercised, but LookPath is skipped since no real binary is involved.
func NewClientWithRunner(runner Runner, logger *logging.Logger) *Client {
	return &Client{
		command: DefaultCommand,
		runner:  runner,
		logger:  logger,
	}
}

// Available reports whether the orchestrator responds. The first call probes
// the binary and a status invocation; the result is cached for the process
// lifetime.
func (c *Client) Available() bool {
	if c == nil {
		return false
	}
	c.probeOnce.Do(func() {
		if _, isExec := c.runner.(execRunner); isExec {
			if _, err := exec.LookPath(c.command); err != nil {
				if c.logger != nil {
					c.logger.Info("orchestrator not found, fallback dispatch only", map[string]string{
						"command": c.command,
					})
				}
				return
			}
		}
		if _, err := c.run("status"); err != nil {
			if c.logger != nil {
				c.logger.Info("orchestrator unresponsive, fallback dispatch only", map[string]string{
					"command": c.command,
					"error":   err.Error(),
				})
			}
			return
		}
		c.available = true
	})
	return c.available
}

// CreateTask registers a unit of work and returns the raw response text.
func (c *Client) CreateTask(description, priorityLabel string, tags []string) (string, error) {
	args := []string{"task", "create", "--priority", priorityLabel}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		args = append(args, "--tag", tag)
	}
	args = append(args, "--", description)
	return c.run(args...)
}

// SpawnAgent starts a worker agent and returns the raw response text.
func (c *Client) SpawnAgent(agentType, model string, tags []string) (string, error) {
	args := []string{"agent", "spawn", "--type", agentType, "--model", model}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		args = append(args, "--tag", tag)
	}
	return c.run(args...)
}

// Assign binds a task to an agent.
func (c *Client) Assign(taskID, agentID string) error {
	_, err := c.run("task", "assign", taskID, agentID)
	return err
}

// Status returns the orchestrator's status text for a task.
func (c *Client) Status(taskID string) (string, error) {
	return c.run("task", "status", taskID)
}

// Cancel requests task cancellation.
func (c *Client) Cancel(taskID string) error {
	_, err := c.run("task", "cancel", taskID)
	return err
}

// StopAgent requests agent shutdown.
func (c *Client) StopAgent(agentID string) error {
	_, err := c.run("agent", "stop", agentID)
	return err
}

// ListAgents returns the orchestrator's agent listing text.
func (c *Client) ListAgents() (string, error) {
	return c.run("agent", "list")
}

func (c *Client) run(args ...string) (string, error) {
	if c == nil || c.runner == nil {
		return "", errors.New("orchestrator runner unavailable")
	}
	output, err := c.runner.Run(args, nil)
	if err != nil {
		if len(output) > 0 {
			return "", fmt.Errorf("%s %s failed: %s", c.command, args[0], bytes.TrimSpace(output))
		}
		return "", fmt.Errorf("%s %s failed: %w", c.command, args[0], err)
	}
	return string(output), nil
}
