package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"switchboard/internal/command"
	"switchboard/internal/dispatch"
	"switchboard/internal/logging"
	"switchboard/internal/metrics"
	"switchboard/internal/room"
)

// Request bodies are small JSON documents; anything past this is a client
// bug or an attack.
const maxRequestBody = 1 << 20

type RestHandler struct {
	Commands     *command.Service
	Dispatcher   *dispatch.Dispatcher
	Registry     *room.Registry
	Poller       *dispatch.Poller
	Metrics      *metrics.Registry
	Logger       *logging.Logger
	Orchestrated bool
	Version      string
}

type dispatchRequest struct {
	Room     string `json:"room"`
	Prompt   string `json:"prompt"`
	Priority int    `json:"priority"`
}

type statusResponse struct {
	Version      string    `json:"version"`
	RoomCount    int       `json:"room_count"`
	DefaultRoom  string    `json:"default_room"`
	Orchestrated bool      `json:"orchestrated"`
	ActivePolls  []string  `json:"active_polls"`
	ServerTime   time.Time `json:"server_time"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleCommand is the single action-dispatched entry point; the body is a
// command.Request and the answer always has the uniform result shape.
func (h *RestHandler) handleCommand(w http.ResponseWriter, r *http.Request) *apiError {
	if r.Method != http.MethodPost {
		return methodNotAllowed(w, http.MethodPost)
	}
	var req command.Request
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	result := h.Commands.Execute(r.Context(), req)
	writeJSON(w, http.StatusOK, result)
	return nil
}

func (h *RestHandler) handleDispatch(w http.ResponseWriter, r *http.Request) *apiError {
	if r.Method != http.MethodPost {
		return methodNotAllowed(w, http.MethodPost)
	}
	var req dispatchRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	receipt := h.Dispatcher.Dispatch(r.Context(), req.Room, req.Prompt, req.Priority)
	writeJSON(w, http.StatusOK, receipt)
	return nil
}

func (h *RestHandler) handleRooms(w http.ResponseWriter, r *http.Request) *apiError {
	if r.Method != http.MethodGet {
		return methodNotAllowed(w, http.MethodGet)
	}
	writeJSON(w, http.StatusOK, h.Registry.List())
	return nil
}

func (h *RestHandler) handleAgents(w http.ResponseWriter, r *http.Request) *apiError {
	if r.Method != http.MethodGet {
		return methodNotAllowed(w, http.MethodGet)
	}
	result := h.Commands.Execute(r.Context(), command.Request{Action: command.ActionListAgents})
	writeJSON(w, http.StatusOK, result)
	return nil
}

func (h *RestHandler) handleStatus(w http.ResponseWriter, r *http.Request) *apiError {
	if r.Method != http.MethodGet {
		return methodNotAllowed(w, http.MethodGet)
	}
	response := statusResponse{
		Version:      h.Version,
		RoomCount:    len(h.Registry.List()),
		DefaultRoom:  h.Registry.DefaultID(),
		Orchestrated: h.Orchestrated,
		ActivePolls:  h.Poller.Active(),
		ServerTime:   time.Now().UTC(),
	}
	writeJSON(w, http.StatusOK, response)
	return nil
}

func (h *RestHandler) handleLogs(w http.ResponseWriter, r *http.Request) *apiError {
	if r.Method != http.MethodGet {
		return methodNotAllowed(w, http.MethodGet)
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return &apiError{Status: http.StatusBadRequest, Message: "invalid limit"}
		}
		limit = parsed
	}
	var entries []logging.Entry
	if h.Logger != nil && h.Logger.Buffer() != nil {
		entries = h.Logger.Buffer().Last(limit)
	}
	writeJSON(w, http.StatusOK, entries)
	return nil
}

func (h *RestHandler) handleMetrics(w http.ResponseWriter, r *http.Request) *apiError {
	if r.Method != http.MethodGet {
		return methodNotAllowed(w, http.MethodGet)
	}
	reg := h.Metrics
	if reg == nil {
		reg = metrics.Default
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	_ = reg.WritePrometheus(w)
	return nil
}

func decodeBody(r *http.Request, target any) *apiError {
	defer r.Body.Close()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return &apiError{Status: http.StatusBadRequest, Message: "empty request body"}
		}
		return &apiError{Status: http.StatusBadRequest, Message: "invalid JSON body"}
	}
	return nil
}
