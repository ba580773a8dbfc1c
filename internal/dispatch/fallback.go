package dispatch

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/creack/pty"

	"switchboard/internal/event"
	"switchboard/internal/logging"
	"switchboard/internal/room"
)

const (
	DefaultWorkerCommand = "claude"
	DefaultWorkerModel   = "sonnet"
	DefaultMaxTurns      = 30
	// DefaultGraceDelay keeps Launch from returning before an instantly
	// crashing worker has had a chance to exit, so spawn failures surface in
	// the receipt rather than only in the completion hook.
	DefaultGraceDelay = 1500 * time.Millisecond

	// Captured worker output handed to the completion hook is capped; the
	// per-line output hook still sees everything.
	maxCapturedOutput = 256 << 10
)

// Worker model names are a small enum; anything unknown maps to the default.
var workerModels = map[string]string{
	"opus":   "claude-opus-4-1",
	"sonnet": "claude-sonnet-4-5",
	"haiku":  "claude-3-5-haiku",
}

// ModelID resolves a short model name to the id the worker CLI expects.
func ModelID(name string) string {
	if id, ok := workerModels[strings.ToLower(strings.TrimSpace(name))]; ok {
		return id
	}
	return workerModels[DefaultWorkerModel]
}

// WorkerLauncher spawns the worker CLI headless under a pty and streams its
// output back through hooks and the event bus. Workers outlive the dispatch
// call; Launch returns as soon as the process is up and past the grace delay.
type WorkerLauncher struct {
	command    string
	model      string
	maxTurns   int
	graceDelay time.Duration
	hooks      *Hooks
	logger     *logging.Logger
	bus        *event.Bus[event.Event]
}

type WorkerOptions struct {
	Command    string
	Model      string
	MaxTurns   int
	GraceDelay time.Duration
	Hooks      *Hooks
	Logger     *logging.Logger
	Bus        *event.Bus[event.Event]
}

func NewWorkerLauncher(opts WorkerOptions) *WorkerLauncher {
	command := strings.TrimSpace(opts.Command)
	if command == "" {
		command = DefaultWorkerCommand
	}
	maxTurns := opts.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	graceDelay := opts.GraceDelay
	if graceDelay <= 0 {
		graceDelay = DefaultGraceDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger(nil, logging.LevelInfo)
	}
	return &WorkerLauncher{
		command:    command,
		model:      opts.Model,
		maxTurns:   maxTurns,
		graceDelay: graceDelay,
		hooks:      opts.Hooks,
		logger:     logger,
		bus:        opts.Bus,
	}
}

// Launch starts one worker for the prompt and returns its pid. The spawned
// process carries the recursion-guard markers so it can never dispatch again
// through this server.
func (l *WorkerLauncher) Launch(ctx context.Context, target room.Room, text string) (int, error) {
	args := []string{
		"-p", text,
		"--model", ModelID(l.model),
		"--max-turns", strconv.Itoa(l.maxTurns),
	}
	cmd := exec.Command(l.command, args...)
	cmd.Env = append(os.Environ(),
		EnvWorkerMarker+"=1",
		EnvSpawnedBy+"="+strconv.Itoa(os.Getpid()),
	)

	output, wait, err := startWorker(cmd)
	if err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	l.logger.Info("worker started", map[string]string{
		"room":    target.ID,
		"pid":     strconv.Itoa(pid),
		"command": l.command,
	})

	go l.watch(target, output, wait)

	// Give an instantly failing worker time to die before we report success.
	sleepContext(ctx, l.graceDelay)
	return pid, nil
}

// startWorker prefers a pty so the worker CLI behaves as if interactive;
// when no pty can be allocated it degrades to a combined pipe.
func startWorker(cmd *exec.Cmd) (io.ReadCloser, func() error, error) {
	if tty, err := pty.Start(cmd); err == nil {
		return tty, cmd.Wait, nil
	}

	reader, writer := io.Pipe()
	cmd.Stdout = writer
	cmd.Stderr = writer
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		reader.Close()
		writer.Close()
		return nil, nil, err
	}
	// Wait must run before the pipe closes or the reader never sees EOF.
	done := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		writer.Close()
		done <- err
	}()
	return reader, func() error { return <-done }, nil
}

// watch streams worker output until EOF, then waits for the exit status and
// fires the completion hook exactly once.
func (l *WorkerLauncher) watch(target room.Room, output io.ReadCloser, wait func() error) {
	defer output.Close()

	var captured strings.Builder
	scanner := bufio.NewScanner(output)
	scanner.Buffer(make([]byte, 64<<10), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if captured.Len() < maxCapturedOutput {
			captured.WriteString(line)
			captured.WriteByte('\n')
		}
		l.hooks.output(target.ID, line)
		if l.bus != nil {
			l.bus.Publish(event.NewOutputEvent(target.ID, line))
		}
	}

	code := exitCode(wait())
	state := "completed"
	if code != 0 {
		state = "failed"
	}
	l.logger.Info("worker exited", map[string]string{
		"room": target.ID,
		"code": strconv.Itoa(code),
	})
	l.hooks.processCompleted(target.ID, captured.String(), code)
	if l.bus != nil {
		l.bus.Publish(event.NewCompletionEvent(target.ID, "", state, code))
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
