package dispatch

// Hooks are optional collaborator callbacks injected at construction time.
// Every hook is fire-and-continue: a nil hook is skipped and no hook result
// can abort a dispatch.
type Hooks struct {
	// TaskRegistered is told about a new dispatch and may return a tracking
	// id that ends up in the receipt.
	TaskRegistered func(roomID, text string) string
	// RoomContext supplies prior-output context to prepend to the prompt.
	RoomContext func(roomID string) string
	// Output receives worker and task output line by line as it arrives.
	Output func(roomID, chunk string)
	// ProcessSpawned is told about a started worker. Orchestrated work has
	// no OS pid and reports OrchestratedPID.
	ProcessSpawned func(roomID string, pid int)
	// ProcessCompleted receives the accumulated output and exit code once a
	// dispatched unit reaches a terminal state.
	ProcessCompleted func(roomID, output string, exitCode int)
	// ChatNotify posts a human-readable notice to the chat surface.
	ChatNotify func(message string)
}

func (h *Hooks) taskRegistered(roomID, text string) string {
	if h == nil || h.TaskRegistered == nil {
		return ""
	}
	return h.TaskRegistered(roomID, text)
}

func (h *Hooks) roomContext(roomID string) string {
	if h == nil || h.RoomContext == nil {
		return ""
	}
	return h.RoomContext(roomID)
}

func (h *Hooks) output(roomID, chunk string) {
	if h == nil || h.Output == nil {
		return
	}
	h.Output(roomID, chunk)
}

func (h *Hooks) processSpawned(roomID string, pid int) {
	if h == nil || h.ProcessSpawned == nil {
		return
	}
	h.ProcessSpawned(roomID, pid)
}

func (h *Hooks) processCompleted(roomID, output string, exitCode int) {
	if h == nil || h.ProcessCompleted == nil {
		return
	}
	h.ProcessCompleted(roomID, output, exitCode)
}

func (h *Hooks) chatNotify(message string) {
	if h == nil || h.ChatNotify == nil {
		return
	}
	h.ChatNotify(message)
}
