package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"switchboard/internal/event"
	"switchboard/internal/logging"
)

const (
	wsReadBufferSize  = 1024
	wsWriteBufferSize = 1024
	wsWriteTimeout    = 10 * time.Second
)

// EventsHandler streams bus events over a websocket. Clients may narrow the
// stream at any time by sending {"subscribe": ["dispatch", ...]}; with no
// subscription message every event type is delivered.
type EventsHandler struct {
	Bus       *event.Bus[event.Event]
	Logger    *logging.Logger
	AuthToken string
}

type eventSubscribeMessage struct {
	Subscribe []string `json:"subscribe"`
}

type eventEnvelope struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Event     any       `json:"event"`
}

type eventFilter struct {
	mutex sync.RWMutex
	types map[string]struct{}
}

func (filter *eventFilter) Allows(eventType string) bool {
	filter.mutex.RLock()
	defer filter.mutex.RUnlock()
	if filter.types == nil {
		return true
	}
	_, ok := filter.types[eventType]
	return ok
}

func (filter *eventFilter) Set(subscriptions []string) {
	types := make(map[string]struct{}, len(subscriptions))
	for _, eventType := range subscriptions {
		types[eventType] = struct{}{}
	}
	filter.mutex.Lock()
	filter.types = types
	filter.mutex.Unlock()
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !validateToken(r, h.AuthToken) {
		writeJSONError(w, &apiError{Status: http.StatusUnauthorized, Message: "unauthorized"})
		return
	}
	if h.Bus == nil {
		writeJSONError(w, &apiError{Status: http.StatusInternalServerError, Message: "event bus unavailable"})
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  wsReadBufferSize,
		WriteBufferSize: wsWriteBufferSize,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("websocket upgrade failed", map[string]string{"error": err.Error()})
		}
		return
	}
	defer conn.Close()

	events, cancel := h.Bus.Subscribe()
	defer cancel()

	filter := &eventFilter{}
	done := make(chan struct{})

	go func() {
		defer close(done)
		for ev := range events {
			if !filter.Allows(ev.Type()) {
				continue
			}
			envelope := eventEnvelope{
				Type:      ev.Type(),
				Timestamp: ev.Timestamp(),
				Event:     ev,
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(envelope); err != nil {
				return
			}
		}
	}()

	// Read loop doubles as connection liveness; any read error ends the
	// stream.
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			cancel()
			<-done
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		var payload eventSubscribeMessage
		if err := json.Unmarshal(msg, &payload); err != nil {
			continue
		}
		filter.Set(payload.Subscribe)
	}
}
