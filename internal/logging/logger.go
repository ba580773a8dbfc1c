package logging

import (
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	DefaultBufferSize = 1000

	subscriberChannelBuffer = 100
)

// core is the shared sink behind a Logger and everything derived from it
// via With: the ring buffer, the console writer and the live subscribers.
type core struct {
	mu       sync.Mutex
	buffer   *Buffer
	out      *log.Logger
	minLevel Level
	subs     map[uint64]chan Entry
	nextSub  uint64
}

// Logger is a leveled logger carrying a base context of string fields.
// Loggers derived with With share the root's buffer and subscribers.
type Logger struct {
	core    *core
	context map[string]string
}

func NewLogger(buffer *Buffer, minLevel Level) *Logger {
	return NewLoggerWithOutput(buffer, minLevel, os.Stdout)
}

func NewLoggerWithOutput(buffer *Buffer, minLevel Level, output io.Writer) *Logger {
	if buffer == nil {
		buffer = NewBuffer(DefaultBufferSize)
	}
	if output == nil {
		output = io.Discard
	}
	if _, ok := levelOrder[minLevel]; !ok {
		minLevel = LevelInfo
	}
	return &Logger{core: &core{
		buffer:   buffer,
		out:      log.New(output, "", log.LstdFlags),
		minLevel: minLevel,
		subs:     make(map[uint64]chan Entry),
	}}
}

func (l *Logger) Buffer() *Buffer {
	if l == nil || l.core == nil {
		return nil
	}
	return l.core.buffer
}

// Subscribe returns a channel of entries logged after the call. Slow
// consumers lose entries rather than blocking the logger.
func (l *Logger) Subscribe() (<-chan Entry, func()) {
	if l == nil || l.core == nil {
		return nil, func() {}
	}
	c := l.core
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSub++
	id := c.nextSub
	ch := make(chan Entry, subscriberChannelBuffer)
	c.subs[id] = ch
	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

func (l *Logger) With(fields map[string]string) *Logger {
	if l == nil {
		return l
	}
	return &Logger{core: l.core, context: mergeFields(l.context, fields)}
}

func (l *Logger) Debug(message string, fields map[string]string) {
	l.emit(LevelDebug, message, fields)
}

func (l *Logger) Info(message string, fields map[string]string) {
	l.emit(LevelInfo, message, fields)
}

func (l *Logger) Warn(message string, fields map[string]string) {
	l.emit(LevelWarning, message, fields)
}

func (l *Logger) Error(message string, fields map[string]string) {
	l.emit(LevelError, message, fields)
}

func (l *Logger) Enabled(level Level) bool {
	if l == nil || l.core == nil {
		return false
	}
	return level.Meets(l.core.minLevel)
}

func (l *Logger) emit(level Level, message string, fields map[string]string) {
	if !l.Enabled(level) {
		return
	}
	entry := Entry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Message:   message,
		Context:   mergeFields(l.context, fields),
	}

	c := l.core
	c.buffer.Add(entry)
	c.out.Print(formatEntry(entry))

	c.mu.Lock()
	subs := make([]chan Entry, 0, len(c.subs))
	for _, sub := range c.subs {
		subs = append(subs, sub)
	}
	c.mu.Unlock()
	for _, sub := range subs {
		select {
		case sub <- entry:
		default:
		}
	}
}

func ParseLevel(value string) (Level, bool) {
	name := strings.ToLower(strings.TrimSpace(value))
	if name == "warn" {
		name = "warning"
	}
	if _, ok := levelOrder[Level(name)]; ok {
		return Level(name), true
	}
	return "", false
}

func mergeFields(base, extra map[string]string) map[string]string {
	if len(base)+len(extra) == 0 {
		return nil
	}
	merged := make(map[string]string, len(base)+len(extra))
	for _, fields := range []map[string]string{base, extra} {
		for key, value := range fields {
			merged[key] = value
		}
	}
	return merged
}

// formatEntry renders one logfmt line, context keys sorted.
func formatEntry(entry Entry) string {
	parts := make([]string, 0, 2+len(entry.Context))
	parts = append(parts, "level="+string(entry.Level), "msg="+strconv.Quote(entry.Message))

	keys := make([]string, 0, len(entry.Context))
	for key := range entry.Context {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		parts = append(parts, key+"="+strconv.Quote(entry.Context[key]))
	}
	return strings.Join(parts, " ")
}
