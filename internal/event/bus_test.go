package event

import (
	"context"
	"testing"
	"time"

	"switchboard/internal/metrics"
)

func receiveEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event before deadline")
		return nil
	}
}

func TestPublishReachesSubscribers(t *testing.T) {
	bus := NewBus[Event](context.Background(), BusOptions{Name: "test"})
	defer bus.Close()

	events, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(NewDispatchEvent("workshop", "fallback", true, ""))

	ev := receiveEvent(t, events)
	dispatched, ok := ev.(DispatchEvent)
	if !ok || dispatched.Room != "workshop" {
		t.Fatalf("event = %#v", ev)
	}
}

func TestSubscribeTypesFilters(t *testing.T) {
	bus := NewBus[Event](context.Background(), BusOptions{Name: "test"})
	defer bus.Close()

	events, cancel := bus.SubscribeTypes(TypeCompletion)
	defer cancel()

	bus.Publish(NewDispatchEvent("workshop", "fallback", true, ""))
	bus.Publish(NewCompletionEvent("workshop", "task-1", "completed", 0))

	ev := receiveEvent(t, events)
	if ev.Type() != TypeCompletion {
		t.Fatalf("event type = %q", ev.Type())
	}
	select {
	case extra := <-events:
		t.Fatalf("unexpected extra event %#v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	registry := &metrics.Registry{}
	bus := NewBus[Event](context.Background(), BusOptions{
		Name:                 "test",
		SubscriberBufferSize: 1,
		Registry:             registry,
	})
	defer bus.Close()

	_, cancel := bus.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			bus.Publish(NewOutputEvent("workshop", "line"))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}
}

func TestMaxSubscribers(t *testing.T) {
	bus := NewBus[Event](context.Background(), BusOptions{Name: "test", MaxSubscribers: 1})
	defer bus.Close()

	_, cancel := bus.Subscribe()
	defer cancel()

	overflow, cancel2 := bus.Subscribe()
	defer cancel2()
	if _, open := <-overflow; open {
		t.Fatal("overflow subscriber should get a closed channel")
	}
}

func TestDumpHistory(t *testing.T) {
	bus := NewBus[Event](context.Background(), BusOptions{Name: "test", HistorySize: 2})
	defer bus.Close()

	bus.Publish(NewOutputEvent("workshop", "one"))
	bus.Publish(NewOutputEvent("workshop", "two"))
	bus.Publish(NewOutputEvent("workshop", "three"))

	history := bus.DumpHistory()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	first, ok := history[0].(OutputEvent)
	if !ok || first.Chunk != "two" {
		t.Fatalf("history[0] = %#v", history[0])
	}
}

func TestCloseStopsDelivery(t *testing.T) {
	bus := NewBus[Event](context.Background(), BusOptions{Name: "test"})
	events, cancel := bus.Subscribe()
	defer cancel()

	bus.Close()
	bus.Publish(NewOutputEvent("workshop", "late"))

	if _, open := <-events; open {
		t.Fatal("subscriber channel should close with the bus")
	}
	if bus.SubscriberCount() != 0 {
		t.Fatalf("subscriber count = %d", bus.SubscriberCount())
	}
}

func TestContextCancelClosesBus(t *testing.T) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	bus := NewBus[Event](ctx, BusOptions{Name: "test"})
	events, cancel := bus.Subscribe()
	defer cancel()

	cancelCtx()
	select {
	case _, open := <-events:
		if open {
			t.Fatal("expected closed channel after context cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("bus did not close after context cancel")
	}
}
