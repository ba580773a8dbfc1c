// Package command is the single action-dispatched entry point over the
// switchboard: one Execute call covers task creation, prompting, raw terminal
// input, broadcast and listings, always answering with the same result shape.
package command

import (
	"context"
	"fmt"
	"strings"

	"switchboard/internal/dispatch"
	"switchboard/internal/logging"
	"switchboard/internal/room"
	"switchboard/internal/transport"
)

const (
	ActionCreateTask    = "create_task"
	ActionPrompt        = "prompt"
	ActionStdin         = "stdin"
	ActionBroadcast     = "broadcast"
	ActionListTerminals = "list_terminals"
	ActionListAgents    = "list_agents"
)

// Request is one command invocation. Fields are a union over the actions;
// each action reads only the fields its payload defines.
type Request struct {
	Action   string   `json:"action"`
	Source   string   `json:"source,omitempty"`
	Priority int      `json:"priority,omitempty"`
	Room     string   `json:"room,omitempty"`
	Prompt   string   `json:"prompt,omitempty"`
	Text     string   `json:"text,omitempty"`
	Rooms    []string `json:"rooms,omitempty"`
}

// Result is the uniform answer shape for every action.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// AgentLister is the slice of the orchestrator the listing action needs.
type AgentLister interface {
	ListAgents() (string, error)
}

type Service struct {
	dispatcher *dispatch.Dispatcher
	router     *transport.Router
	registry   *room.Registry
	agents     AgentLister
	logger     *logging.Logger
}

func NewService(dispatcher *dispatch.Dispatcher, router *transport.Router, registry *room.Registry, agents AgentLister, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewLogger(nil, logging.LevelInfo)
	}
	return &Service{
		dispatcher: dispatcher,
		router:     router,
		registry:   registry,
		agents:     agents,
		logger:     logger,
	}
}

// Execute runs one action. It never returns an error; failures are carried
// in the result so callers deal with exactly one shape.
func (s *Service) Execute(ctx context.Context, req Request) Result {
	switch strings.TrimSpace(req.Action) {
	case ActionCreateTask:
		return s.createTask(ctx, req)
	case ActionPrompt:
		return s.prompt(ctx, req)
	case ActionStdin:
		return s.stdin(ctx, req)
	case ActionBroadcast:
		return s.broadcast(ctx, req)
	case ActionListTerminals:
		return s.listTerminals()
	case ActionListAgents:
		return s.listAgents()
	default:
		return Result{Message: fmt.Sprintf("unknown action %q", req.Action)}
	}
}

// createTask derives the room from the source tier, then dispatches.
func (s *Service) createTask(ctx context.Context, req Request) Result {
	roomID := room.TierRoom(req.Source)
	receipt := s.dispatcher.Dispatch(ctx, roomID, req.Prompt, req.Priority)
	return receiptResult(receipt)
}

func (s *Service) prompt(ctx context.Context, req Request) Result {
	receipt := s.dispatcher.Dispatch(ctx, req.Room, req.Prompt, req.Priority)
	return receiptResult(receipt)
}

// stdin writes raw text to the room's terminal, bypassing orchestration.
func (s *Service) stdin(ctx context.Context, req Request) Result {
	if strings.TrimSpace(req.Text) == "" {
		return Result{Message: "empty input"}
	}
	target := s.registry.Resolve(req.Room)
	if err := s.router.Send(ctx, target, req.Text); err != nil {
		return Result{Message: fmt.Sprintf("send to %s failed: %v", target.ID, err)}
	}
	return Result{Success: true, Message: fmt.Sprintf("sent to %s via %s", target.ID, target.Transport)}
}

func (s *Service) broadcast(ctx context.Context, req Request) Result {
	if strings.TrimSpace(req.Prompt) == "" {
		return Result{Message: "empty prompt"}
	}
	tally := s.dispatcher.Broadcast(ctx, req.Prompt, req.Rooms, req.Priority)
	return Result{
		Success: tally.Failed == 0,
		Message: fmt.Sprintf("broadcast to %d rooms, %d succeeded, %d failed", len(tally.Targets), tally.Succeeded, tally.Failed),
		Data:    tally,
	}
}

func (s *Service) listTerminals() Result {
	rooms := s.registry.List()
	return Result{
		Success: true,
		Message: fmt.Sprintf("%d rooms registered", len(rooms)),
		Data:    rooms,
	}
}

func (s *Service) listAgents() Result {
	if s.agents == nil {
		return Result{Message: "orchestrator unavailable"}
	}
	listing, err := s.agents.ListAgents()
	if err != nil {
		return Result{Message: fmt.Sprintf("agent listing failed: %v", err)}
	}
	return Result{Success: true, Message: "agent listing", Data: strings.TrimSpace(listing)}
}

func receiptResult(receipt dispatch.Receipt) Result {
	message := receipt.Message
	if message == "" {
		message = fmt.Sprintf("dispatched to %s via %s", receipt.Room, receipt.Mode)
	}
	return Result{Success: receipt.Success, Message: message, Data: receipt}
}
