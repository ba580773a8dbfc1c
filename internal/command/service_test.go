package command

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"switchboard/internal/dispatch"
	"switchboard/internal/room"
	"switchboard/internal/transport"
)

var testRooms = []byte(`
default: workshop
rooms:
  - id: workshop
    transport: pane
    target: tmux
  - id: den
    transport: socket
    target: kitty
`)

type stubLauncher struct {
	mu       sync.Mutex
	launches []string
}

func (l *stubLauncher) Launch(ctx context.Context, target room.Room, text string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launches = append(l.launches, target.ID+":"+text)
	return 99, nil
}

type stubStrategy struct {
	kind  room.Transport
	mu    sync.Mutex
	sends []string
	err   error
}

func (s *stubStrategy) Kind() room.Transport { return s.kind }

func (s *stubStrategy) Send(ctx context.Context, target room.Room, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends = append(s.sends, target.ID+":"+text)
	return s.err
}

type stubLister struct {
	text string
	err  error
}

func (l stubLister) ListAgents() (string, error) { return l.text, l.err }

func newTestService(t *testing.T, launcher *stubLauncher, strategy *stubStrategy, agents AgentLister) *Service {
	t.Helper()
	registry, err := room.Load(testRooms, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	dispatcher := dispatch.New(dispatch.Options{
		Registry: registry,
		Launcher: launcher,
	})
	var strategies []transport.Strategy
	if strategy != nil {
		strategies = append(strategies, strategy)
	}
	router := transport.NewRouterWithStrategies(strategies, nil)
	return NewService(dispatcher, router, registry, agents, nil)
}

func TestExecuteUnknownAction(t *testing.T) {
	service := newTestService(t, &stubLauncher{}, nil, nil)
	result := service.Execute(context.Background(), Request{Action: "reticulate"})
	if result.Success || !strings.Contains(result.Message, "reticulate") {
		t.Fatalf("result = %+v", result)
	}
}

func TestCreateTaskDerivesRoomFromTier(t *testing.T) {
	launcher := &stubLauncher{}
	service := newTestService(t, launcher, nil, nil)

	result := service.Execute(context.Background(), Request{
		Action: ActionCreateTask,
		Source: "research",
		Prompt: "dig into the crash",
	})
	if !result.Success {
		t.Fatalf("result = %+v", result)
	}
	if len(launcher.launches) != 1 || !strings.HasPrefix(launcher.launches[0], "den:") {
		t.Fatalf("launches = %v", launcher.launches)
	}
}

func TestPromptReturnsReceipt(t *testing.T) {
	service := newTestService(t, &stubLauncher{}, nil, nil)

	result := service.Execute(context.Background(), Request{
		Action: ActionPrompt,
		Room:   "workshop",
		Prompt: "hello",
	})
	if !result.Success {
		t.Fatalf("result = %+v", result)
	}
	receipt, ok := result.Data.(dispatch.Receipt)
	if !ok || receipt.Mode != dispatch.ModeFallback || receipt.PID != 99 {
		t.Fatalf("data = %#v", result.Data)
	}
}

func TestStdinBypassesOrchestration(t *testing.T) {
	launcher := &stubLauncher{}
	strategy := &stubStrategy{kind: room.TransportPane}
	service := newTestService(t, launcher, strategy, nil)

	result := service.Execute(context.Background(), Request{
		Action: ActionStdin,
		Room:   "workshop",
		Text:   "y",
	})
	if !result.Success || !strings.Contains(result.Message, "pane") {
		t.Fatalf("result = %+v", result)
	}
	if len(strategy.sends) != 1 || strategy.sends[0] != "workshop:y" {
		t.Fatalf("sends = %v", strategy.sends)
	}
	if len(launcher.launches) != 0 {
		t.Fatal("stdin must not spawn workers")
	}
}

func TestStdinEmptyText(t *testing.T) {
	service := newTestService(t, &stubLauncher{}, &stubStrategy{kind: room.TransportPane}, nil)
	result := service.Execute(context.Background(), Request{Action: ActionStdin, Room: "workshop", Text: "  "})
	if result.Success {
		t.Fatalf("result = %+v", result)
	}
}

func TestStdinTransportFailure(t *testing.T) {
	strategy := &stubStrategy{kind: room.TransportPane, err: errors.New("no server")}
	service := newTestService(t, &stubLauncher{}, strategy, nil)

	result := service.Execute(context.Background(), Request{Action: ActionStdin, Room: "workshop", Text: "y"})
	if result.Success || !strings.Contains(result.Message, "no server") {
		t.Fatalf("result = %+v", result)
	}
}

func TestBroadcastAction(t *testing.T) {
	launcher := &stubLauncher{}
	service := newTestService(t, launcher, nil, nil)

	result := service.Execute(context.Background(), Request{
		Action: ActionBroadcast,
		Prompt: "standup in five",
	})
	if !result.Success {
		t.Fatalf("result = %+v", result)
	}
	tally, ok := result.Data.(dispatch.BroadcastResult)
	if !ok || tally.Succeeded != 2 || tally.Failed != 0 {
		t.Fatalf("data = %#v", result.Data)
	}
}

func TestListTerminals(t *testing.T) {
	service := newTestService(t, &stubLauncher{}, nil, nil)
	result := service.Execute(context.Background(), Request{Action: ActionListTerminals})
	rooms, ok := result.Data.([]room.Room)
	if !result.Success || !ok || len(rooms) != 2 {
		t.Fatalf("result = %+v", result)
	}
}

func TestListAgents(t *testing.T) {
	service := newTestService(t, &stubLauncher{}, nil, stubLister{text: "agent-1 builder idle\n"})
	result := service.Execute(context.Background(), Request{Action: ActionListAgents})
	if !result.Success || result.Data != "agent-1 builder idle" {
		t.Fatalf("result = %+v", result)
	}

	service = newTestService(t, &stubLauncher{}, nil, stubLister{err: errors.New("unreachable")})
	result = service.Execute(context.Background(), Request{Action: ActionListAgents})
	if result.Success || !strings.Contains(result.Message, "unreachable") {
		t.Fatalf("result = %+v", result)
	}

	service = newTestService(t, &stubLauncher{}, nil, nil)
	if result := service.Execute(context.Background(), Request{Action: ActionListAgents}); result.Success {
		t.Fatalf("nil lister must fail: %+v", result)
	}
}
