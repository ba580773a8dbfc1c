package dispatch

import (
	"os"
	"strings"
)

// A fallback worker gets these markers in its environment. Their presence
// means the current process was itself spawned by a dispatcher, and any new
// dispatch request it makes must be refused or workers would spawn without
// bound. The internal primary-to-fallback handoff within a single dispatch
// is not a new request and is never blocked.
const (
	EnvWorkerMarker = "SWITCHBOARD_WORKER"
	EnvSpawnedBy    = "SWITCHBOARD_SPAWNED_BY"
)

// BlockedMessage is the distinct result text for refused recursive dispatch.
const BlockedMessage = "blocked: recursive dispatch"

// Blocked reports whether the current process carries a recursion-guard
// marker. The environment is read-only after process start, so the answer
// never changes at runtime.
func Blocked() bool {
	if strings.TrimSpace(os.Getenv(EnvWorkerMarker)) != "" {
		return true
	}
	return strings.TrimSpace(os.Getenv(EnvSpawnedBy)) != ""
}
