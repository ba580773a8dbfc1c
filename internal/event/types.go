package event

import "time"

const (
	TypeDispatch   = "dispatch"
	TypeTransport  = "transport_send"
	TypeOutput     = "output"
	TypeCompletion = "completion"
	TypeConfig     = "config_changed"
)

// Event represents a typed event with an occurrence timestamp.
type Event interface {
	Type() string
	Timestamp() time.Time
}

// DispatchEvent records one pass through the dispatch pipeline.
type DispatchEvent struct {
	Room       string
	Mode       string
	Success    bool
	TaskID     string
	OccurredAt time.Time
}

func NewDispatchEvent(room, mode string, success bool, taskID string) DispatchEvent {
	return DispatchEvent{
		Room:       room,
		Mode:       mode,
		Success:    success,
		TaskID:     taskID,
		OccurredAt: time.Now().UTC(),
	}
}

func (e DispatchEvent) Type() string         { return TypeDispatch }
func (e DispatchEvent) Timestamp() time.Time { return e.OccurredAt }

// TransportEvent records a raw terminal send.
type TransportEvent struct {
	Room       string
	Transport  string
	Success    bool
	Detail     string
	OccurredAt time.Time
}

func NewTransportEvent(room, transport string, success bool, detail string) TransportEvent {
	return TransportEvent{
		Room:       room,
		Transport:  transport,
		Success:    success,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	}
}

func (e TransportEvent) Type() string         { return TypeTransport }
func (e TransportEvent) Timestamp() time.Time { return e.OccurredAt }

// OutputEvent carries a chunk of worker or task output.
type OutputEvent struct {
	Room       string
	Chunk      string
	OccurredAt time.Time
}

func NewOutputEvent(room, chunk string) OutputEvent {
	return OutputEvent{
		Room:       room,
		Chunk:      chunk,
		OccurredAt: time.Now().UTC(),
	}
}

func (e OutputEvent) Type() string         { return TypeOutput }
func (e OutputEvent) Timestamp() time.Time { return e.OccurredAt }

// CompletionEvent records a dispatched unit reaching a terminal state.
type CompletionEvent struct {
	Room       string
	TaskID     string
	State      string
	ExitCode   int
	OccurredAt time.Time
}

func NewCompletionEvent(room, taskID, state string, exitCode int) CompletionEvent {
	return CompletionEvent{
		Room:       room,
		TaskID:     taskID,
		State:      state,
		ExitCode:   exitCode,
		OccurredAt: time.Now().UTC(),
	}
}

func (e CompletionEvent) Type() string         { return TypeCompletion }
func (e CompletionEvent) Timestamp() time.Time { return e.OccurredAt }

// ConfigEvent records a change to a watched configuration file.
type ConfigEvent struct {
	Path       string
	Operation  string
	OccurredAt time.Time
}

func NewConfigEvent(path, operation string) ConfigEvent {
	return ConfigEvent{
		Path:       path,
		Operation:  operation,
		OccurredAt: time.Now().UTC(),
	}
}

func (e ConfigEvent) Type() string         { return TypeConfig }
func (e ConfigEvent) Timestamp() time.Time { return e.OccurredAt }
