package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"switchboard"
	"switchboard/internal/api"
	"switchboard/internal/audit"
	"switchboard/internal/command"
	"switchboard/internal/config"
	"switchboard/internal/dispatch"
	"switchboard/internal/event"
	"switchboard/internal/logging"
	"switchboard/internal/metrics"
	"switchboard/internal/orchestrator"
	"switchboard/internal/room"
	"switchboard/internal/transport"
	"switchboard/internal/version"
	"switchboard/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

func main() {
	settingsPath := flag.String("config", "", "settings YAML path (embedded defaults when empty)")
	roomsPath := flag.String("rooms", "", "room registry YAML path (embedded defaults when empty)")
	addr := flag.String("addr", "", "listen address override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warning, error)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("switchboard " + version.Version)
		return
	}

	defaultSettings, err := switchboard.EmbeddedConfigFS.ReadFile("config/settings.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "embedded settings missing: %v\n", err)
		os.Exit(1)
	}
	defaultRooms, err := switchboard.EmbeddedConfigFS.ReadFile("config/rooms.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "embedded rooms missing: %v\n", err)
		os.Exit(1)
	}

	settings, err := config.LoadSettings(defaultSettings, *settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load settings: %v\n", err)
		os.Exit(1)
	}

	level, ok := logging.ParseLevel(settings.Logging.Level)
	if !ok {
		level = logging.LevelInfo
	}
	if *logLevel != "" {
		if parsed, ok := logging.ParseLevel(*logLevel); ok {
			level = parsed
		}
	}
	logBuffer := logging.NewBuffer(logging.DefaultBufferSize)
	logger := logging.NewLogger(logBuffer, level)

	registry, err := room.Load(defaultRooms, *roomsPath, logger)
	if err != nil {
		logger.Error("load rooms failed", map[string]string{"error": err.Error()})
		os.Exit(1)
	}
	logger.Info("rooms loaded", map[string]string{
		"count":   strconv.Itoa(len(registry.List())),
		"default": registry.DefaultID(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := event.NewBus[event.Event](ctx, event.BusOptions{
		Name:     "switchboard",
		Registry: metrics.Default,
	})

	orch := orchestrator.NewClient(settings.Orchestrator.Command, logger)
	orchestrated := orch.Available()

	hooks := &dispatch.Hooks{
		ChatNotify: func(message string) {
			logger.Info("notify", map[string]string{"message": message})
		},
	}

	launcher := dispatch.NewWorkerLauncher(dispatch.WorkerOptions{
		Command:    settings.Worker.Command,
		Model:      settings.Worker.Model,
		MaxTurns:   settings.Worker.MaxTurns,
		GraceDelay: settings.Worker.GraceDelay(),
		Hooks:      hooks,
		Logger:     logger,
		Bus:        bus,
	})
	poller := dispatch.NewPoller(dispatch.PollerOptions{
		Orchestrator: orch,
		Hooks:        hooks,
		Logger:       logger,
		Bus:          bus,
		Interval:     settings.Poll.Interval(),
		Timeout:      settings.Poll.Timeout(),
	})
	dispatcher := dispatch.New(dispatch.Options{
		Registry:     registry,
		Orchestrator: orch,
		Launcher:     launcher,
		Poller:       poller,
		Audit:        audit.NewLog(settings.Audit.Path),
		Hooks:        hooks,
		Logger:       logger,
		Bus:          bus,
		Model:        settings.Orchestrator.Model,
	})
	router := transport.NewRouter(transport.RouterOptions{
		Logger:         logger,
		Bus:            bus,
		KittySocket:    settings.Transport.KittySocket,
		FocusDelay:     settings.Transport.FocusDelay(),
		PasteThreshold: settings.Transport.PasteThreshold,
	})
	commands := command.NewService(dispatcher, router, registry, orch, logger)

	watchPaths := []string{}
	if *settingsPath != "" {
		watchPaths = append(watchPaths, *settingsPath)
	}
	if *roomsPath != "" {
		watchPaths = append(watchPaths, *roomsPath)
	}
	var configWatcher *watcher.Watcher
	if len(watchPaths) > 0 {
		configWatcher, err = watcher.New(watchPaths, bus, logger)
		if err != nil {
			logger.Warn("config watcher unavailable", map[string]string{"error": err.Error()})
		}
	}

	token := settings.Server.Token
	if token == "" {
		token = os.Getenv("SWITCHBOARD_TOKEN")
	}
	listenAddr := settings.Server.Addr
	if *addr != "" {
		listenAddr = *addr
	}

	mux := http.NewServeMux()
	api.RegisterRoutes(mux, api.RouteConfig{
		Commands:     commands,
		Dispatcher:   dispatcher,
		Registry:     registry,
		Poller:       poller,
		Bus:          bus,
		Metrics:      metrics.Default,
		Logger:       logger,
		AuthToken:    token,
		Orchestrated: orchestrated,
		Version:      version.Version,
	})

	server := &http.Server{
		Addr:              listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", map[string]string{"error": err.Error()})
		}
	}()

	logger.Info("switchboard listening", map[string]string{
		"addr":         listenAddr,
		"orchestrated": strconv.FormatBool(orchestrated),
	})
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server stopped", map[string]string{"error": err.Error()})
	}

	poller.Shutdown()
	if configWatcher != nil {
		_ = configWatcher.Close()
	}
	bus.Close()
}
