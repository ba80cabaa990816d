package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-startpage/components/startpage"
	"github.com/goliatone/go-startpage/components/startpage/commands"
	"github.com/goliatone/go-startpage/components/startpage/gorouter"
	"github.com/goliatone/go-startpage/components/startpage/httpapi"
	"github.com/goliatone/go-startpage/components/startpage/poller"
	"github.com/goliatone/go-startpage/pkg/activity"
	"github.com/goliatone/go-startpage/pkg/sandbox"
	"github.com/goliatone/go-startpage/pkg/weather"
)

type serveCmd struct {
	Addr          string        `default:":8080" env:"STARTPAGE_ADDR" help:"Listen address."`
	BasePath      string        `name:"base-path" default:"/startpage" help:"Route prefix."`
	Transport     string        `enum:"fiber,http" default:"fiber" help:"HTTP transport (fiber router adapter or net/http)."`
	Retention     time.Duration `default:"168h" env:"STARTPAGE_LOG_RETENTION" help:"Age after which api_logs rows are pruned."`
	PruneSchedule string        `name:"prune-schedule" default:"@every 1h" help:"Cron schedule for api_logs pruning."`
	Watch         bool          `default:"true" negatable:"" help:"Reload the config when the file changes on disk."`
	ChartTTL      time.Duration `name:"chart-ttl" default:"30s" help:"How long rendered history charts are cached."`
	Activity      bool          `default:"true" negatable:"" help:"Log an activity entry for every config change."`
	WeatherURL    string        `name:"weather-url" env:"STARTPAGE_WEATHER_URL" help:"REST weather service; simulated readings are used when empty or failing."`
	WeatherAPIKey string        `name:"weather-api-key" env:"STARTPAGE_WEATHER_API_KEY" help:"Bearer token for the weather service."`
}

func (cmd *serveCmd) Run(ctx context.Context, g *Globals) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var hooks startpage.EventHooks
	e, err := g.open(ctx, startpage.EventHookFunc(func(ctx context.Context, event startpage.Event) error {
		return hooks.Notify(ctx, event)
	}))
	if err != nil {
		return err
	}
	defer e.close()
	logger := e.logger

	if err := e.db.Init(ctx); err != nil {
		return err
	}
	logs := sandbox.NewLogSink(e.db)
	broadcast := startpage.NewBroadcastHook()
	manager := poller.NewManager(poller.ManagerOptions{
		Source: e.store,
		Sink:   logs,
		Hook:   broadcast,
		Logger: logger,
	})
	cache := startpage.NewChartCache(cmd.ChartTTL)
	emitter := activity.NewEmitter(activity.Hooks{activity.LogHook{Logger: logger}}, activity.Config{Enabled: cmd.Activity})

	hooks = startpage.EventHooks{
		broadcast,
		manager,
		startpage.ActivityHook{Emitter: emitter},
		startpage.EventHookFunc(func(_ context.Context, event startpage.Event) error {
			if event.Entity == startpage.EntityService && event.Action == "delete" {
				for _, id := range event.IDs {
					cache.Invalidate(id + ":")
				}
			}
			return nil
		}),
	}

	manager.Start(ctx)
	defer manager.Close()

	retention := sandbox.NewRetention(e.db, sandbox.RetentionOptions{MaxAge: cmd.Retention, Schedule: cmd.PruneSchedule})
	if err := retention.Start(ctx); err != nil {
		return err
	}
	defer retention.Stop()

	if cmd.Watch && e.files != nil {
		watcher := startpage.NewConfigWatcher(e.files.Path(startpage.StorageKey), e.store, logger)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Warn("startpage: config watcher stopped", "error", err)
			}
		}()
	}

	weatherProvider, err := cmd.weather(logger)
	if err != nil {
		return err
	}
	controller := startpage.NewController(startpage.ControllerOptions{
		Source:  e.store,
		Live:    manager,
		Weather: weatherProvider,
		History: startpage.NewHistoryChart(logs, startpage.WithHistoryCache(cache)),
	})

	telemetry := logTelemetry{logger: logger}
	executor := httpapi.NewCommandExecutor(e.store, startpage.NewJSONSchemaValidator(), telemetry)
	executor.RefreshCommander = commands.NewRefreshServiceCommand(manager, telemetry)
	executor.SandboxQueryCommander = commands.NewSandboxQueryCommand(e.db, telemetry)
	executor.SandboxRunCommander = commands.NewSandboxRunCommand(e.db, telemetry)

	switch cmd.Transport {
	case "http":
		handlers := &httpapi.Handlers{API: executor, Controller: controller, Events: broadcast}
		return cmd.serveHTTP(ctx, logger, handlers.Mux(cmd.BasePath))
	default:
		return cmd.serveFiber(ctx, logger, gorouter.Config[*fiber.App]{
			Controller: controller,
			API:        executor,
			Broadcast:  broadcast,
			Sandbox:    e.db,
			BasePath:   cmd.BasePath,
		})
	}
}

func (cmd *serveCmd) weather(logger *slog.Logger) (startpage.WeatherProvider, error) {
	simulated := startpage.NewSimulatedWeather(nil)
	if cmd.WeatherURL == "" {
		return simulated, nil
	}
	client, err := weather.NewHTTPClient(weather.HTTPConfig{BaseURL: cmd.WeatherURL, APIKey: cmd.WeatherAPIKey})
	if err != nil {
		return nil, err
	}
	return weather.NewFallbackProvider(client, simulated, logger), nil
}

func (cmd *serveCmd) serveFiber(ctx context.Context, logger *slog.Logger, cfg gorouter.Config[*fiber.App]) error {
	server := router.NewFiberAdapter()
	cfg.Router = server.Router()
	if err := gorouter.Register(cfg); err != nil {
		return fmt.Errorf("startpage: register routes: %w", err)
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("startpage: listening", "addr", cmd.Addr, "base_path", cmd.BasePath, "transport", "fiber")
		errCh <- server.Serve(cmd.Addr)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (cmd *serveCmd) serveHTTP(ctx context.Context, logger *slog.Logger, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cmd.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("startpage: listening", "addr", cmd.Addr, "base_path", cmd.BasePath, "transport", "http")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// logTelemetry records command telemetry as debug log lines.
type logTelemetry struct {
	logger *slog.Logger
}

func (t logTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	if !t.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	attrs := make([]any, 0, len(payload)*2+2)
	attrs = append(attrs, "event", event)
	for k, v := range payload {
		attrs = append(attrs, k, v)
	}
	t.logger.DebugContext(ctx, "telemetry", attrs...)
}
