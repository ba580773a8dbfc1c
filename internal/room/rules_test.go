package room

import "testing"

func TestTierRoom(t *testing.T) {
	cases := map[string]string{
		"critical":  "workshop",
		"feature":   "studio",
		"chore":     "annex",
		"research":  "den",
		"review":    "parlor",
		"  Review ": "parlor",
		"":          "workshop",
		"mystery":   "workshop",
	}
	for tier, want := range cases {
		if got := TierRoom(tier); got != want {
			t.Errorf("TierRoom(%q) = %q, want %q", tier, got, want)
		}
	}
}

func TestNormalizePriority(t *testing.T) {
	cases := map[int]int{0: 3, 1: 1, 3: 3, 5: 5, 6: 3, -7: 3}
	for in, want := range cases {
		if got := NormalizePriority(in); got != want {
			t.Errorf("NormalizePriority(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestPriorityLabel(t *testing.T) {
	cases := map[int]string{
		1:  "urgent",
		2:  "high",
		3:  "normal",
		4:  "low",
		5:  "backlog",
		0:  "normal",
		99: "normal",
	}
	for in, want := range cases {
		if got := PriorityLabel(in); got != want {
			t.Errorf("PriorityLabel(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestAgentType(t *testing.T) {
	if got := AgentType("den"); got != "researcher" {
		t.Fatalf("AgentType(den) = %q", got)
	}
	if got := AgentType("elsewhere"); got != "worker" {
		t.Fatalf("AgentType(elsewhere) = %q", got)
	}
}
