package orchestrator

import "regexp"

// The orchestrator reports identifiers inside free text ("created task
// task-8f2c", "Task ID: 8f2c", ...). Matching is deliberately permissive and
// isolated here so a structured API can replace it in one spot.

// Identifiers must contain a digit so that prose after the keyword
// ("task created successfully") is never mistaken for an id.
var (
	taskIDPattern  = regexp.MustCompile(`(?i)task[\s_:#-]*(?:id[\s:#-]*)?([a-z0-9_-]*\d[a-z0-9_-]*)`)
	agentIDPattern = regexp.MustCompile(`(?i)agent[\s_:#-]*(?:id[\s:#-]*)?([a-z0-9_-]*\d[a-z0-9_-]*)`)
)

// ParseTaskID extracts a task identifier from orchestrator response text.
func ParseTaskID(text string) (string, bool) {
	return firstGroup(taskIDPattern, text)
}

// ParseAgentID extracts an agent identifier from orchestrator response text.
func ParseAgentID(text string) (string, bool) {
	return firstGroup(agentIDPattern, text)
}

func firstGroup(pattern *regexp.Regexp, text string) (string, bool) {
	match := pattern.FindStringSubmatch(text)
	if len(match) < 2 || match[1] == "" {
		return "", false
	}
	return match[1], true
}
