package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"switchboard/internal/logging"
)

func TestLogsStreamFiltersByLevel(t *testing.T) {
	logger := logging.NewLoggerWithOutput(logging.NewBuffer(10), logging.LevelDebug, nil)
	server := httptest.NewServer(&LogsHandler{Logger: logger})
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?level=warning"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// The handler subscribes after the handshake, so keep logging until the
	// stream delivers. Info entries are below the requested level and must
	// never come through.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(25 * time.Millisecond)
		defer ticker.Stop()
		for {
			logger.Info("below threshold", nil)
			logger.Warn("pane send failed", map[string]string{"room": "workshop"})
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var entry logging.Entry
	if err := conn.ReadJSON(&entry); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if entry.Level != logging.LevelWarning || entry.Message != "pane send failed" {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.Context["room"] != "workshop" {
		t.Fatalf("context = %v", entry.Context)
	}
}

func TestLogsStreamRejectsBadToken(t *testing.T) {
	handler := &LogsHandler{
		Logger:    logging.NewLoggerWithOutput(nil, logging.LevelInfo, nil),
		AuthToken: "sekrit",
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ws/logs", nil))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
}

func TestLogsStreamRejectsUnknownLevel(t *testing.T) {
	handler := &LogsHandler{Logger: logging.NewLoggerWithOutput(nil, logging.LevelInfo, nil)}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ws/logs?level=shouting", nil))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}
