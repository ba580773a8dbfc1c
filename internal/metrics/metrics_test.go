package metrics

import (
	"errors"
	"strings"
	"testing"
)

func TestWritePrometheus(t *testing.T) {
	registry := &Registry{}
	registry.IncDispatched("orchestrated")
	registry.IncDispatched("orchestrated")
	registry.IncDispatched("fallback")
	registry.RecordSend("pane", nil)
	registry.RecordSend("pane", errors.New("boom"))
	registry.RecordSend("socket", nil)
	registry.IncEventPublished()
	registry.IncEventDropped()
	registry.PollStarted()

	var out strings.Builder
	if err := registry.WritePrometheus(&out); err != nil {
		t.Fatal(err)
	}
	body := out.String()
	for _, want := range []string{
		`switchboard_dispatches_total{mode="orchestrated"} 2`,
		`switchboard_dispatches_total{mode="fallback"} 1`,
		`switchboard_transport_sends_total{transport="pane"} 2`,
		`switchboard_transport_failures_total{transport="pane"} 1`,
		`switchboard_transport_failures_total{transport="socket"} 0`,
		"switchboard_events_published_total 1",
		"switchboard_events_dropped_total 1",
		"switchboard_polls_active 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("output missing %q:\n%s", want, body)
		}
	}
}

func TestActivePolls(t *testing.T) {
	registry := &Registry{}
	registry.PollStarted()
	registry.PollStarted()
	registry.PollFinished()
	if got := registry.ActivePolls(); got != 1 {
		t.Fatalf("active polls = %d, want 1", got)
	}
}

func TestNilRegistryIsInert(t *testing.T) {
	var registry *Registry
	registry.IncDispatched("fallback")
	registry.RecordSend("pane", nil)
	registry.PollStarted()
	if err := registry.WritePrometheus(&strings.Builder{}); err != nil {
		t.Fatal(err)
	}
}

func TestBlankLabelsNormalized(t *testing.T) {
	registry := &Registry{}
	registry.IncDispatched("  ")
	var out strings.Builder
	_ = registry.WritePrometheus(&out)
	if !strings.Contains(out.String(), `mode="unknown"`) {
		t.Fatalf("blank mode not normalized:\n%s", out.String())
	}
}
