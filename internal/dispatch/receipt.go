package dispatch

import "time"

// Mode records which path carried a dispatch.
type Mode string

const (
	ModeOrchestrated Mode = "orchestrated"
	ModeFallback     Mode = "fallback"
	ModeBlocked      Mode = "blocked"
)

// OrchestratedPID is the sentinel reported to the process-spawned hook for
// orchestrated work, which has no OS process of its own.
const OrchestratedPID = -1

// Receipt is the immutable result of one dispatch.
type Receipt struct {
	Success    bool   `json:"success"`
	Room       string `json:"room"`
	Mode       Mode   `json:"mode,omitempty"`
	TaskID     string `json:"task_id,omitempty"`
	AgentID    string `json:"agent_id,omitempty"`
	PID        int    `json:"pid,omitempty"`
	TrackingID string `json:"tracking_id,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Task is one unit of work handed to the orchestrator. It is owned by the
// poller from Track until it reaches a terminal state.
type Task struct {
	TaskID    string
	AgentID   string
	RoomID    string
	Model     string
	CreatedAt time.Time
}

// BroadcastResult tallies a fan-out dispatch.
type BroadcastResult struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Targets   []string `json:"targets"`
}
