package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	server "pipeworks/server"
	servernet "pipeworks/server/internal/net"
	"pipeworks/server/internal/telemetry"
	"pipeworks/server/internal/world"
	"pipeworks/server/logging"
	loggingSinks "pipeworks/server/logging/sinks"
)

type Config struct {
	Logger telemetry.Logger
	Addr   string
}

// Run wires the logging router, world, hub, and HTTP transport together and
// serves until the listener fails or the process exits.
func Run(ctx context.Context, cfg Config) error {
	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}

	logConfig := logging.DefaultConfig()
	if raw := os.Getenv("PIPEWORKS_LOG_SINKS"); raw != "" {
		enabled := make([]string, 0, 2)
		for _, name := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				enabled = append(enabled, trimmed)
			}
		}
		if len(enabled) > 0 {
			logConfig.EnabledSinks = enabled
		}
	}
	if raw := os.Getenv("PIPEWORKS_LOG_LEVEL"); raw != "" {
		if severity, ok := logging.ParseSeverity(raw); ok {
			logConfig.MinimumSeverity = severity
		} else {
			telemetryLogger.Printf("invalid PIPEWORKS_LOG_LEVEL=%q", raw)
		}
	}
	if path := os.Getenv("PIPEWORKS_LOG_JSON_PATH"); path != "" {
		logConfig.JSON.FilePath = path
	}

	namedSinks := []logging.NamedSink{
		{Name: "console", Sink: loggingSinks.NewConsole(os.Stdout, logConfig.Console)},
	}
	if logConfig.HasSink("json") && logConfig.JSON.FilePath != "" {
		file, err := os.OpenFile(logConfig.JSON.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open json log file: %w", err)
		}
		defer file.Close()
		namedSinks = append(namedSinks, logging.NamedSink{
			Name: "json",
			Sink: loggingSinks.NewJSON(file, logConfig.JSON.FlushInterval),
		})
	}

	router, err := logging.NewRouter(logging.SystemClock{}, logConfig, namedSinks)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		if cerr := router.Close(ctx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	worldCfg := world.DefaultConfig()
	if seed := os.Getenv("PIPEWORKS_SEED"); seed != "" {
		worldCfg.Seed = seed
	}
	worldCfg = worldCfg.Normalized()

	metrics := logging.NewMetrics()
	publisher := logging.WithFields(router, map[string]any{"seed": worldCfg.Seed})
	w := world.New(worldCfg, world.Deps{
		Publisher:        publisher,
		JournalTelemetry: telemetry.JournalTelemetry(telemetry.WrapMetrics(metrics)),
	})

	hubCfg := server.DefaultHubConfig()
	hubCfg.World = w
	if raw := os.Getenv("KEYFRAME_INTERVAL_TICKS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			hubCfg.KeyframeInterval = value
		} else {
			telemetryLogger.Printf("invalid KEYFRAME_INTERVAL_TICKS=%q: %v", raw, err)
		}
	}

	hub := server.NewHubWithConfig(hubCfg, publisher)
	stop := make(chan struct{})
	go hub.RunSimulation(stop)
	defer close(stop)

	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{})

	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{Addr: addr, Handler: handler}
	telemetryLogger.Printf("server listening on %s", srv.Addr)

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
