// Package api exposes the switchboard over HTTP: a REST surface mirroring
// the command entry point plus a websocket event stream.
package api

import (
	"net/http"

	"switchboard/internal/command"
	"switchboard/internal/dispatch"
	"switchboard/internal/event"
	"switchboard/internal/logging"
	"switchboard/internal/metrics"
	"switchboard/internal/room"
)

type RouteConfig struct {
	Commands     *command.Service
	Dispatcher   *dispatch.Dispatcher
	Registry     *room.Registry
	Poller       *dispatch.Poller
	Bus          *event.Bus[event.Event]
	Metrics      *metrics.Registry
	Logger       *logging.Logger
	AuthToken    string
	Orchestrated bool
	Version      string
}

func RegisterRoutes(mux *http.ServeMux, cfg RouteConfig) {
	rest := &RestHandler{
		Commands:     cfg.Commands,
		Dispatcher:   cfg.Dispatcher,
		Registry:     cfg.Registry,
		Poller:       cfg.Poller,
		Metrics:      cfg.Metrics,
		Logger:       cfg.Logger,
		Orchestrated: cfg.Orchestrated,
		Version:      cfg.Version,
	}

	handle := func(route string, handler apiHandler) {
		mux.Handle(route, loggingMiddleware(cfg.Logger, restHandler(cfg.AuthToken, handler)))
	}
	handle("/api/command", rest.handleCommand)
	handle("/api/dispatch", rest.handleDispatch)
	handle("/api/rooms", rest.handleRooms)
	handle("/api/agents", rest.handleAgents)
	handle("/api/status", rest.handleStatus)
	handle("/api/logs", rest.handleLogs)
	handle("/api/metrics", rest.handleMetrics)

	mux.Handle("/ws/events", securityHeadersMiddleware(cacheControlNoStore, &EventsHandler{
		Bus:       cfg.Bus,
		Logger:    cfg.Logger,
		AuthToken: cfg.AuthToken,
	}))
	mux.Handle("/ws/logs", securityHeadersMiddleware(cacheControlNoStore, &LogsHandler{
		Logger:    cfg.Logger,
		AuthToken: cfg.AuthToken,
	}))
}
