package dispatch

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"switchboard/internal/event"
	"switchboard/internal/logging"
	"switchboard/internal/metrics"
)

const (
	DefaultPollInterval = 5 * time.Second
	DefaultPollTimeout  = 120 * time.Second

	// Exit code reported when a tracked task times out, matching the
	// conventional timeout(1) code.
	timeoutExitCode = 124
)

// Terminal states a tracked task can reach.
const (
	StateCompleted = "completed"
	StateFailed    = "failed"
	StateTimedOut  = "timedOut"
)

var (
	completedKeywords = []string{"completed", "done", "success"}
	failedKeywords    = []string{"failed", "error", "cancelled"}
)

// Poller owns every orchestrated task from Track until a terminal state.
// One goroutine per task polls the orchestrator at a fixed interval; the
// completion hook fires exactly once per task, whichever way it ends.
type Poller struct {
	orch     Orchestrator
	hooks    *Hooks
	logger   *logging.Logger
	bus      *event.Bus[event.Event]
	metrics  *metrics.Registry
	interval time.Duration
	timeout  time.Duration

	mu    sync.Mutex
	tasks map[string]*pollState
	wg    sync.WaitGroup
}

type pollState struct {
	task   Task
	cancel context.CancelFunc
}

type PollerOptions struct {
	Orchestrator Orchestrator
	Hooks        *Hooks
	Logger       *logging.Logger
	Bus          *event.Bus[event.Event]
	Metrics      *metrics.Registry
	Interval     time.Duration
	Timeout      time.Duration
}

func NewPoller(opts PollerOptions) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger(nil, logging.LevelInfo)
	}
	reg := opts.Metrics
	if reg == nil {
		reg = metrics.Default
	}
	return &Poller{
		orch:     opts.Orchestrator,
		hooks:    opts.Hooks,
		logger:   logger,
		bus:      opts.Bus,
		metrics:  reg,
		interval: interval,
		timeout:  timeout,
		tasks:    make(map[string]*pollState),
	}
}

// Track starts polling a task. Tracking the same task id twice is a no-op;
// a task without an id has nothing to poll and is ignored.
func (p *Poller) Track(task Task) {
	if p == nil || strings.TrimSpace(task.TaskID) == "" {
		return
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}

	p.mu.Lock()
	if _, exists := p.tasks[task.TaskID]; exists {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.tasks[task.TaskID] = &pollState{task: task, cancel: cancel}
	p.wg.Add(1)
	p.mu.Unlock()

	p.metrics.PollStarted()
	go p.loop(ctx, task)
}

// Cancel stops polling a task without firing its completion hook.
func (p *Poller) Cancel(taskID string) {
	p.mu.Lock()
	state, ok := p.tasks[taskID]
	p.mu.Unlock()
	if ok {
		state.cancel()
	}
}

// Active returns the ids of tasks currently being polled, sorted.
func (p *Poller) Active() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.tasks))
	for id := range p.tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Shutdown cancels all polling and waits for the loops to drain.
func (p *Poller) Shutdown() {
	p.mu.Lock()
	for _, state := range p.tasks {
		state.cancel()
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Poller) loop(ctx context.Context, task Task) {
	defer p.wg.Done()
	defer p.forget(task.TaskID)
	defer p.metrics.PollFinished()

	timer := time.NewTimer(p.interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if time.Since(task.CreatedAt) > p.timeout {
			p.expire(task)
			return
		}

		status, err := p.orch.Status(task.TaskID)
		if err != nil {
			p.logger.Debug("status poll failed", map[string]string{
				"task":  task.TaskID,
				"error": err.Error(),
			})
			timer.Reset(p.interval)
			continue
		}
		switch classify(status) {
		case StateCompleted:
			p.finish(task, StateCompleted, status, 0)
			return
		case StateFailed:
			p.finish(task, StateFailed, status, 1)
			return
		}
		if trimmed := strings.TrimSpace(status); trimmed != "" {
			p.hooks.output(task.RoomID, trimmed)
		}
		timer.Reset(p.interval)
	}
}

// classify maps free status text onto a terminal state, or "" when the task
// is still in flight. Completion keywords win over failure keywords so a
// status like "completed with errors" counts as done.
func classify(status string) string {
	lowered := strings.ToLower(status)
	for _, keyword := range completedKeywords {
		if strings.Contains(lowered, keyword) {
			return StateCompleted
		}
	}
	for _, keyword := range failedKeywords {
		if strings.Contains(lowered, keyword) {
			return StateFailed
		}
	}
	return ""
}

func (p *Poller) finish(task Task, state, output string, code int) {
	p.logger.Info("task reached terminal state", map[string]string{
		"task":  task.TaskID,
		"state": state,
	})
	p.hooks.processCompleted(task.RoomID, output, code)
	if p.bus != nil {
		p.bus.Publish(event.NewCompletionEvent(task.RoomID, task.TaskID, state, code))
	}
}

func (p *Poller) expire(task Task) {
	p.logger.Warn("task timed out, cancelling", map[string]string{
		"task":    task.TaskID,
		"timeout": p.timeout.String(),
	})
	// Best-effort cleanup; the orchestrator may already have reaped both.
	if err := p.orch.Cancel(task.TaskID); err != nil {
		p.logger.Debug("task cancel failed", map[string]string{"task": task.TaskID, "error": err.Error()})
	}
	if task.AgentID != "" {
		if err := p.orch.StopAgent(task.AgentID); err != nil {
			p.logger.Debug("agent stop failed", map[string]string{"agent": task.AgentID, "error": err.Error()})
		}
	}
	message := "task " + task.TaskID + " timed out after " + strconv.Itoa(int(p.timeout.Seconds())) + "s"
	p.hooks.processCompleted(task.RoomID, message, timeoutExitCode)
	p.hooks.chatNotify(message)
	if p.bus != nil {
		p.bus.Publish(event.NewCompletionEvent(task.RoomID, task.TaskID, StateTimedOut, timeoutExitCode))
	}
}

func (p *Poller) forget(taskID string) {
	p.mu.Lock()
	if state, ok := p.tasks[taskID]; ok {
		state.cancel()
		delete(p.tasks, taskID)
	}
	p.mu.Unlock()
}
