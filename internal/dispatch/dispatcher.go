// Package dispatch turns a prompt for a room into running work. The primary
// path hands the prompt to the external orchestrator as a task/agent pair;
// when the orchestrator is unavailable or its response yields no task id the
// dispatcher falls back to spawning a local worker process. Either way the
// caller gets a single receipt.
package dispatch

import (
	"context"
	"strconv"
	"strings"
	"time"

	"switchboard/internal/audit"
	"switchboard/internal/event"
	"switchboard/internal/logging"
	"switchboard/internal/metrics"
	"switchboard/internal/orchestrator"
	"switchboard/internal/room"
)

// Orchestrator is the slice of the orchestrator client the dispatcher and
// poller use.
type Orchestrator interface {
	Available() bool
	CreateTask(description, priorityLabel string, tags []string) (string, error)
	SpawnAgent(agentType, model string, tags []string) (string, error)
	Assign(taskID, agentID string) error
	Status(taskID string) (string, error)
	Cancel(taskID string) error
	StopAgent(agentID string) error
}

// Launcher spawns a local fallback worker and returns its pid.
type Launcher interface {
	Launch(ctx context.Context, target room.Room, text string) (int, error)
}

// Descriptions handed to the orchestrator stay short; the full prompt lives
// in the audit log and the worker invocation.
const maxDescriptionRunes = 200

type Options struct {
	Registry     *room.Registry
	Orchestrator Orchestrator
	Launcher     Launcher
	Poller       *Poller
	Audit        *audit.Log
	Hooks        *Hooks
	Logger       *logging.Logger
	Bus          *event.Bus[event.Event]
	Metrics      *metrics.Registry
	// Model is the worker model name recorded in orchestrator tags and used
	// to spawn agents.
	Model string
}

type Dispatcher struct {
	registry *room.Registry
	orch     Orchestrator
	launcher Launcher
	poller   *Poller
	audit    *audit.Log
	hooks    *Hooks
	logger   *logging.Logger
	bus      *event.Bus[event.Event]
	metrics  *metrics.Registry
	model    string
}

func New(opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger(nil, logging.LevelInfo)
	}
	reg := opts.Metrics
	if reg == nil {
		reg = metrics.Default
	}
	return &Dispatcher{
		registry: opts.Registry,
		orch:     opts.Orchestrator,
		launcher: opts.Launcher,
		poller:   opts.Poller,
		audit:    opts.Audit,
		hooks:    opts.Hooks,
		logger:   logger,
		bus:      opts.Bus,
		metrics:  reg,
		model:    opts.Model,
	}
}

// Dispatch runs one prompt through the pipeline and returns its receipt.
// Unknown rooms are substituted with the default room rather than rejected;
// only an empty prompt or a recursion-guard hit stops the pipeline before
// any side effect.
func (d *Dispatcher) Dispatch(ctx context.Context, roomID, text string, priority int) Receipt {
	if Blocked() {
		d.logger.Warn("dispatch refused by recursion guard", map[string]string{"room": roomID})
		d.metrics.IncDispatched(string(ModeBlocked))
		return Receipt{Room: roomID, Mode: ModeBlocked, Message: BlockedMessage}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Receipt{Room: roomID, Message: "empty prompt"}
	}

	target := d.registry.Resolve(roomID)
	if extra := strings.TrimSpace(d.hooks.roomContext(target.ID)); extra != "" {
		text = extra + "\n\n" + text
	}
	// Prompts travel through shells, AppleScript and CLI flags downstream;
	// collapse all whitespace runs to single spaces up front.
	text = strings.Join(strings.Fields(text), " ")

	if err := d.audit.Append(target.ID, text); err != nil {
		d.logger.Debug("audit append failed", map[string]string{"error": err.Error()})
	}
	trackingID := d.hooks.taskRegistered(target.ID, text)
	priority = room.NormalizePriority(priority)

	var receipt Receipt
	orchestrated := false
	if d.orch != nil && d.orch.Available() {
		receipt, orchestrated = d.orchestrated(target, text, priority)
	}
	if !orchestrated {
		receipt = d.fallback(ctx, target, text)
	}
	receipt.TrackingID = trackingID

	d.metrics.IncDispatched(string(receipt.Mode))
	if d.bus != nil {
		d.bus.Publish(event.NewDispatchEvent(target.ID, string(receipt.Mode), receipt.Success, receipt.TaskID))
	}
	return receipt
}

// orchestrated attempts the primary path. A false return means the caller
// should fall back; it never means the prompt was partially dispatched, since
// the task only exists once its id parsed.
func (d *Dispatcher) orchestrated(target room.Room, text string, priority int) (Receipt, bool) {
	tags := []string{"room:" + target.ID, "model:" + d.model}

	created, err := d.orch.CreateTask(truncateRunes(text, maxDescriptionRunes), room.PriorityLabel(priority), tags)
	if err != nil {
		d.logger.Warn("task create failed, using fallback", map[string]string{
			"room":  target.ID,
			"error": err.Error(),
		})
		return Receipt{}, false
	}
	taskID, ok := orchestrator.ParseTaskID(created)
	if !ok {
		d.logger.Warn("no task id in orchestrator response, using fallback", map[string]string{
			"room":     target.ID,
			"response": truncateRunes(created, 120),
		})
		return Receipt{}, false
	}

	var agentID string
	spawned, err := d.orch.SpawnAgent(room.AgentType(target.ID), d.model, tags)
	if err != nil {
		d.logger.Warn("agent spawn failed, task stays unassigned", map[string]string{
			"task":  taskID,
			"error": err.Error(),
		})
	} else if agentID, ok = orchestrator.ParseAgentID(spawned); !ok {
		d.logger.Debug("no agent id in orchestrator response", map[string]string{"task": taskID})
	}
	if agentID != "" {
		// Assignment is best effort; the poller tracks the task either way.
		go func(taskID, agentID string) {
			if err := d.orch.Assign(taskID, agentID); err != nil {
				d.logger.Debug("task assign failed", map[string]string{
					"task":  taskID,
					"agent": agentID,
					"error": err.Error(),
				})
			}
		}(taskID, agentID)
	}

	d.hooks.processSpawned(target.ID, OrchestratedPID)
	if d.poller != nil {
		d.poller.Track(Task{
			TaskID:    taskID,
			AgentID:   agentID,
			RoomID:    target.ID,
			Model:     d.model,
			CreatedAt: time.Now(),
		})
	}
	d.logger.Info("dispatched via orchestrator", map[string]string{
		"room":  target.ID,
		"task":  taskID,
		"agent": agentID,
	})
	return Receipt{Success: true, Room: target.ID, Mode: ModeOrchestrated, TaskID: taskID, AgentID: agentID}, true
}

func (d *Dispatcher) fallback(ctx context.Context, target room.Room, text string) Receipt {
	if d.launcher == nil {
		return Receipt{Room: target.ID, Mode: ModeFallback, Message: "no worker launcher configured"}
	}
	pid, err := d.launcher.Launch(ctx, target, text)
	if err != nil {
		d.logger.Error("worker spawn failed", map[string]string{
			"room":  target.ID,
			"error": err.Error(),
		})
		return Receipt{Room: target.ID, Mode: ModeFallback, Message: "worker spawn failed: " + err.Error()}
	}
	d.hooks.processSpawned(target.ID, pid)
	d.logger.Info("dispatched via fallback worker", map[string]string{
		"room": target.ID,
		"pid":  strconv.Itoa(pid),
	})
	return Receipt{Success: true, Room: target.ID, Mode: ModeFallback, PID: pid}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
