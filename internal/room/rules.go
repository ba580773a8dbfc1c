package room

import "strings"

// Routing rules are total functions: every input maps to something, with an
// explicit default for anything unrecognized.

const (
	defaultTierRoom = "workshop"
	defaultPriority = 3
)

// TierRoom maps a content tier to a room id. Unrecognized tiers land in the
// default build room.
func TierRoom(tier string) string {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "critical":
		return "workshop"
	case "feature":
		return "studio"
	case "chore":
		return "annex"
	case "research":
		return "den"
	case "review":
		return "parlor"
	default:
		return defaultTierRoom
	}
}

// NormalizePriority coerces any value outside [1,5] to 3 (normal).
func NormalizePriority(priority int) int {
	if priority < 1 || priority > 5 {
		return defaultPriority
	}
	return priority
}

// PriorityLabel maps a numeric priority to the orchestrator's label set.
// The input is normalized first, so the function is total.
func PriorityLabel(priority int) string {
	switch NormalizePriority(priority) {
	case 1:
		return "urgent"
	case 2:
		return "high"
	case 4:
		return "low"
	case 5:
		return "backlog"
	default:
		return "normal"
	}
}

// AgentType maps a room id to the worker-agent type spawned for it.
func AgentType(roomID string) string {
	switch strings.TrimSpace(roomID) {
	case "workshop":
		return "builder"
	case "studio":
		return "designer"
	case "annex":
		return "maintainer"
	case "den":
		return "researcher"
	case "parlor":
		return "reviewer"
	default:
		return "worker"
	}
}
