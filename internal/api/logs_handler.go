package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"switchboard/internal/logging"
)

// LogsHandler streams log entries over a websocket as they are written. An
// optional ?level= query narrows the stream to that severity and above; the
// default streams everything.
type LogsHandler struct {
	Logger    *logging.Logger
	AuthToken string
}

func (h *LogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !validateToken(r, h.AuthToken) {
		writeJSONError(w, &apiError{Status: http.StatusUnauthorized, Message: "unauthorized"})
		return
	}
	if h.Logger == nil {
		writeJSONError(w, &apiError{Status: http.StatusInternalServerError, Message: "logger unavailable"})
		return
	}

	minLevel := logging.LevelDebug
	if raw := strings.TrimSpace(r.URL.Query().Get("level")); raw != "" {
		parsed, ok := logging.ParseLevel(raw)
		if !ok {
			writeJSONError(w, &apiError{Status: http.StatusBadRequest, Message: "unknown level"})
			return
		}
		minLevel = parsed
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  wsReadBufferSize,
		WriteBufferSize: wsWriteBufferSize,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", map[string]string{"error": err.Error()})
		return
	}
	defer conn.Close()

	entries, cancel := h.Logger.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for entry := range entries {
			if !entry.Level.Meets(minLevel) {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(entry); err != nil {
				return
			}
		}
	}()

	// Read loop doubles as connection liveness; any read error ends the
	// stream.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			cancel()
			<-done
			return
		}
	}
}
