package transport

import (
	"context"

	"switchboard/internal/room"
)

// Strategy delivers text into the terminal application backing a room. The
// target room carries the application identifier and the hint used to pick
// one of several instances.
type Strategy interface {
	Kind() room.Transport
	Send(ctx context.Context, target room.Room, text string) error
}
