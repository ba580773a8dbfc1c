package logging

import "time"

type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

var levelOrder = map[Level]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Meets reports whether l is at or above min severity. Unknown levels rank
// as info.
func (l Level) Meets(min Level) bool {
	return rankOf(l) >= rankOf(min)
}

func rankOf(l Level) int {
	if rank, ok := levelOrder[l]; ok {
		return rank
	}
	return levelOrder[LevelInfo]
}

type Entry struct {
	Timestamp time.Time         `json:"timestamp"`
	Level     Level             `json:"level"`
	Message   string            `json:"message"`
	Context   map[string]string `json:"context,omitempty"`
}
