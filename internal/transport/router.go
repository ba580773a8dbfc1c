package transport

import (
	"context"
	"fmt"
	"time"

	"switchboard/internal/event"
	"switchboard/internal/logging"
	"switchboard/internal/metrics"
	"switchboard/internal/room"
)

// RouterOptions configures the strategy set built by NewRouter.
type RouterOptions struct {
	Runner         CommandRunner
	Logger         *logging.Logger
	Bus            *event.Bus[event.Event]
	Registry       *metrics.Registry
	KittySocket    string
	FocusDelay     time.Duration
	PasteThreshold int
}

// Router selects the strategy for a room's transport kind and funnels
// focus-stealing sends through the serialization queue. All other transports
// run concurrently without coordination.
type Router struct {
	strategies map[room.Transport]Strategy
	queue      *Queue
	logger     *logging.Logger
	bus        *event.Bus[event.Event]
	registry   *metrics.Registry
}

func NewRouter(opts RouterOptions) *Router {
	runner := opts.Runner
	if runner == nil {
		runner = NewRunner()
	}
	registry := opts.Registry
	if registry == nil {
		registry = metrics.Default
	}
	strategies := map[room.Transport]Strategy{
		room.TransportSession:   NewSessionStrategy(runner, opts.Logger),
		room.TransportWindow:    NewWindowStrategy(runner, opts.Logger),
		room.TransportSocket:    NewSocketStrategy(runner, opts.Logger, opts.KittySocket),
		room.TransportPane:      NewPaneStrategy(runner, opts.Logger),
		room.TransportKeystroke: NewKeystrokeStrategy(runner, opts.Logger, opts.FocusDelay, opts.PasteThreshold),
	}
	return &Router{
		strategies: strategies,
		queue:      NewQueue(),
		logger:     opts.Logger,
		bus:        opts.Bus,
		registry:   registry,
	}
}

// NewRouterWithStrategies builds a router over an explicit strategy set.
func NewRouterWithStrategies(strategies []Strategy, logger *logging.Logger) *Router {
	byKind := make(map[room.Transport]Strategy, len(strategies))
	for _, strategy := range strategies {
		if strategy == nil {
			continue
		}
		byKind[strategy.Kind()] = strategy
	}
	return &Router{
		strategies: byKind,
		queue:      NewQueue(),
		logger:     logger,
		registry:   metrics.Default,
	}
}

// Send delivers text to the room's application. Keystroke sends wait their
// turn in the queue; everything else goes straight through.
func (r *Router) Send(ctx context.Context, target room.Room, text string) error {
	strategy, ok := r.strategies[target.Transport]
	if !ok {
		return fmt.Errorf("no transport strategy for %q", target.Transport)
	}

	var err error
	if target.RequiresFocus() {
		err = r.queue.Do(ctx, func() error {
			return strategy.Send(ctx, target, text)
		})
	} else {
		err = strategy.Send(ctx, target, text)
	}

	if r.registry != nil {
		r.registry.RecordSend(string(target.Transport), err)
	}
	if r.bus != nil {
		detail := ""
		if err != nil {
			detail = err.Error()
		}
		r.bus.Publish(event.NewTransportEvent(target.ID, string(target.Transport), err == nil, detail))
	}
	if err != nil && r.logger != nil {
		r.logger.Warn("transport send failed", map[string]string{
			"room":      target.ID,
			"transport": string(target.Transport),
			"error":     err.Error(),
		})
	}
	return err
}
