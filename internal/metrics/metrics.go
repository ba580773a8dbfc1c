package metrics

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Registry tracks in-process dispatch and transport counters.
type Registry struct {
	dispatched      sync.Map // mode -> *atomic.Int64
	transportSends  sync.Map // kind -> *sendStats
	eventsPublished atomic.Int64
	eventsDropped   atomic.Int64
	pollsActive     atomic.Int64
}

type sendStats struct {
	count    atomic.Int64
	failures atomic.Int64
}

var Default = &Registry{}

func (r *Registry) IncDispatched(mode string) {
	if r == nil {
		return
	}
	if strings.TrimSpace(mode) == "" {
		mode = "unknown"
	}
	r.counter(&r.dispatched, mode).Add(1)
}

func (r *Registry) RecordSend(kind string, err error) {
	if r == nil {
		return
	}
	if strings.TrimSpace(kind) == "" {
		kind = "unknown"
	}
	value, _ := r.transportSends.LoadOrStore(kind, &sendStats{})
	stats := value.(*sendStats)
	stats.count.Add(1)
	if err != nil {
		stats.failures.Add(1)
	}
}

func (r *Registry) IncEventPublished() {
	if r == nil {
		return
	}
	r.eventsPublished.Add(1)
}

func (r *Registry) IncEventDropped() {
	if r == nil {
		return
	}
	r.eventsDropped.Add(1)
}

func (r *Registry) PollStarted() {
	if r == nil {
		return
	}
	r.pollsActive.Add(1)
}

func (r *Registry) PollFinished() {
	if r == nil {
		return
	}
	r.pollsActive.Add(-1)
}

func (r *Registry) ActivePolls() int64 {
	if r == nil {
		return 0
	}
	return r.pollsActive.Load()
}

func (r *Registry) WritePrometheus(writer io.Writer) error {
	if r == nil {
		return nil
	}

	writeHelp(writer, "switchboard_dispatches_total", "Total dispatches by mode")
	fmt.Fprintln(writer, "# TYPE switchboard_dispatches_total counter")
	for _, mode := range sortedKeys(&r.dispatched) {
		fmt.Fprintf(writer, "switchboard_dispatches_total{mode=%s} %d\n", strconv.Quote(mode), r.counter(&r.dispatched, mode).Load())
	}

	writeHelp(writer, "switchboard_transport_sends_total", "Transport sends by kind")
	fmt.Fprintln(writer, "# TYPE switchboard_transport_sends_total counter")
	writeHelp(writer, "switchboard_transport_failures_total", "Transport send failures by kind")
	fmt.Fprintln(writer, "# TYPE switchboard_transport_failures_total counter")
	for _, kind := range sortedKeys(&r.transportSends) {
		value, _ := r.transportSends.LoadOrStore(kind, &sendStats{})
		stats := value.(*sendStats)
		label := strconv.Quote(kind)
		fmt.Fprintf(writer, "switchboard_transport_sends_total{transport=%s} %d\n", label, stats.count.Load())
		fmt.Fprintf(writer, "switchboard_transport_failures_total{transport=%s} %d\n", label, stats.failures.Load())
	}

	writeCounter(writer, "switchboard_events_published_total", "Events published on the bus", r.eventsPublished.Load())
	writeCounter(writer, "switchboard_events_dropped_total", "Events dropped by slow subscribers", r.eventsDropped.Load())
	writeGauge(writer, "switchboard_polls_active", "Orchestration tasks currently polling", r.pollsActive.Load())
	return nil
}

func (r *Registry) counter(store *sync.Map, key string) *atomic.Int64 {
	value, _ := store.LoadOrStore(key, &atomic.Int64{})
	return value.(*atomic.Int64)
}

func sortedKeys(store *sync.Map) []string {
	var keys []string
	store.Range(func(key, value interface{}) bool {
		if name, ok := key.(string); ok {
			keys = append(keys, name)
		}
		return true
	})
	sort.Strings(keys)
	return keys
}

func writeHelp(writer io.Writer, name, help string) {
	fmt.Fprintf(writer, "# HELP %s %s\n", name, help)
}

func writeCounter(writer io.Writer, name, help string, value int64) {
	writeHelp(writer, name, help)
	fmt.Fprintf(writer, "# TYPE %s counter\n", name)
	fmt.Fprintf(writer, "%s %d\n", name, value)
}

func writeGauge(writer io.Writer, name, help string, value int64) {
	writeHelp(writer, name, help)
	fmt.Fprintf(writer, "# TYPE %s gauge\n", name)
	fmt.Fprintf(writer, "%s %d\n", name, value)
}
