// Package room holds the static registry of dispatch destinations and the
// pure routing rules that map content tiers, priorities, and rooms onto
// orchestration parameters.
package room

import "strings"

// Transport identifies the IPC mechanism a room is reachable through.
type Transport string

const (
	// TransportSession writes directly into a named terminal session.
	TransportSession Transport = "session"
	// TransportWindow scans application windows and executes a script.
	TransportWindow Transport = "window"
	// TransportSocket uses a local remote-control socket.
	TransportSocket Transport = "socket"
	// TransportPane sends to an addressed multiplexer pane.
	TransportPane Transport = "pane"
	// TransportKeystroke types into the focused application.
	TransportKeystroke Transport = "keystroke"
)

// Room is an immutable dispatch destination. A room is bound to exactly one
// terminal application and one transport.
type Room struct {
	ID        string    `yaml:"id" json:"id"`
	Label     string    `yaml:"label" json:"label"`
	Transport Transport `yaml:"transport" json:"transport"`
	TargetApp string    `yaml:"target" json:"target"`
	MatchHint string    `yaml:"hint" json:"hint"`
}

// RequiresFocus reports whether sends to this room steal OS focus. True
// exactly for keystroke-automation rooms; those are the only sends that go
// through the serialization queue.
func (r Room) RequiresFocus() bool {
	return r.Transport == TransportKeystroke
}

func ParseTransport(value string) (Transport, bool) {
	switch Transport(strings.ToLower(strings.TrimSpace(value))) {
	case TransportSession:
		return TransportSession, true
	case TransportWindow:
		return TransportWindow, true
	case TransportSocket:
		return TransportSocket, true
	case TransportPane:
		return TransportPane, true
	case TransportKeystroke:
		return TransportKeystroke, true
	default:
		return "", false
	}
}
