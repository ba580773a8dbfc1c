package dispatch

import (
	"errors"
	"testing"
	"time"
)

type completion struct {
	roomID string
	output string
	code   int
}

func newPollerForTest(orch Orchestrator, interval, timeout time.Duration) (*Poller, chan completion) {
	completions := make(chan completion, 8)
	hooks := &Hooks{
		ProcessCompleted: func(roomID, output string, code int) {
			completions <- completion{roomID: roomID, output: output, code: code}
		},
	}
	poller := NewPoller(PollerOptions{
		Orchestrator: orch,
		Hooks:        hooks,
		Interval:     interval,
		Timeout:      timeout,
	})
	return poller, completions
}

func waitCompletion(t *testing.T, completions chan completion) completion {
	t.Helper()
	select {
	case c := <-completions:
		return c
	case <-time.After(3 * time.Second):
		t.Fatal("no completion before deadline")
		return completion{}
	}
}

func assertNoMoreCompletions(t *testing.T, completions chan completion) {
	t.Helper()
	select {
	case c := <-completions:
		t.Fatalf("unexpected second completion: %+v", c)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPollerCompletes(t *testing.T) {
	orch := &fakeOrch{statusSteps: []statusStep{
		{resp: "status: running"},
		{resp: "task task-1 completed"},
	}}
	poller, completions := newPollerForTest(orch, 5*time.Millisecond, time.Second)
	defer poller.Shutdown()

	poller.Track(Task{TaskID: "task-1", RoomID: "workshop", CreatedAt: time.Now()})

	done := waitCompletion(t, completions)
	if done.code != 0 || done.roomID != "workshop" {
		t.Fatalf("completion = %+v", done)
	}
	assertNoMoreCompletions(t, completions)
}

func TestPollerFailureKeywords(t *testing.T) {
	orch := &fakeOrch{statusSteps: []statusStep{
		{resp: "task failed: compiler exploded"},
	}}
	poller, completions := newPollerForTest(orch, 5*time.Millisecond, time.Second)
	defer poller.Shutdown()

	poller.Track(Task{TaskID: "task-2", RoomID: "den", CreatedAt: time.Now()})

	done := waitCompletion(t, completions)
	if done.code != 1 {
		t.Fatalf("failure completion code = %d, want 1", done.code)
	}
}

func TestPollerTimeout(t *testing.T) {
	orch := &fakeOrch{statusSteps: []statusStep{{resp: "still running"}}}
	poller, completions := newPollerForTest(orch, 5*time.Millisecond, 25*time.Millisecond)
	defer poller.Shutdown()

	poller.Track(Task{TaskID: "task-3", AgentID: "agent-9", RoomID: "workshop", CreatedAt: time.Now()})

	done := waitCompletion(t, completions)
	if done.code != timeoutExitCode {
		t.Fatalf("timeout completion code = %d, want %d", done.code, timeoutExitCode)
	}
	assertNoMoreCompletions(t, completions)

	orch.mu.Lock()
	defer orch.mu.Unlock()
	if len(orch.cancels) != 1 || orch.cancels[0] != "task-3" {
		t.Fatalf("cancels = %v", orch.cancels)
	}
	if len(orch.stops) != 1 || orch.stops[0] != "agent-9" {
		t.Fatalf("stops = %v", orch.stops)
	}
}

func TestPollerSurvivesStatusErrors(t *testing.T) {
	orch := &fakeOrch{statusSteps: []statusStep{
		{err: errors.New("timeout")},
		{err: errors.New("timeout")},
		{resp: "done"},
	}}
	poller, completions := newPollerForTest(orch, 5*time.Millisecond, time.Second)
	defer poller.Shutdown()

	poller.Track(Task{TaskID: "task-4", RoomID: "workshop", CreatedAt: time.Now()})

	done := waitCompletion(t, completions)
	if done.code != 0 {
		t.Fatalf("completion = %+v", done)
	}
}

func TestPollerCancelSkipsHook(t *testing.T) {
	orch := &fakeOrch{statusSteps: []statusStep{{resp: "running"}}}
	poller, completions := newPollerForTest(orch, 5*time.Millisecond, time.Second)

	poller.Track(Task{TaskID: "task-5", RoomID: "workshop", CreatedAt: time.Now()})
	if active := poller.Active(); len(active) != 1 || active[0] != "task-5" {
		t.Fatalf("active = %v", active)
	}

	poller.Cancel("task-5")
	poller.Shutdown()

	assertNoMoreCompletions(t, completions)
	if active := poller.Active(); len(active) != 0 {
		t.Fatalf("active after cancel = %v", active)
	}
}

func TestTrackIgnoresEmptyAndDuplicateIDs(t *testing.T) {
	orch := &fakeOrch{statusSteps: []statusStep{{resp: "running"}}}
	poller, _ := newPollerForTest(orch, time.Hour, time.Hour)
	defer poller.Shutdown()

	poller.Track(Task{TaskID: "  ", RoomID: "workshop"})
	if len(poller.Active()) != 0 {
		t.Fatal("blank task id must not be tracked")
	}

	poller.Track(Task{TaskID: "task-6", RoomID: "workshop"})
	poller.Track(Task{TaskID: "task-6", RoomID: "workshop"})
	if active := poller.Active(); len(active) != 1 {
		t.Fatalf("active = %v", active)
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]string{
		"task completed":          StateCompleted,
		"all DONE here":           StateCompleted,
		"Success!":                StateCompleted,
		"completed with errors":   StateCompleted,
		"task failed":             StateFailed,
		"error: boom":             StateFailed,
		"cancelled by operator":   StateFailed,
		"running, 40% remaining":  "",
		"queued behind two tasks": "",
	}
	for status, want := range cases {
		if got := classify(status); got != want {
			t.Errorf("classify(%q) = %q, want %q", status, got, want)
		}
	}
}
