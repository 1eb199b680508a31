package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/mcoot/arenactl/internal/api"
	"github.com/mcoot/arenactl/internal/audit"
	auditredis "github.com/mcoot/arenactl/internal/audit/redis"
	"github.com/mcoot/arenactl/internal/command"
	"github.com/mcoot/arenactl/internal/commands"
	"github.com/mcoot/arenactl/internal/config"
	"github.com/mcoot/arenactl/internal/dependencies/clock"
	"github.com/mcoot/arenactl/internal/dependencies/random"
	"github.com/mcoot/arenactl/internal/services/auth"
	"github.com/mcoot/arenactl/internal/session"
	"github.com/mcoot/arenactl/internal/settings"
	"github.com/mcoot/arenactl/internal/transport"
	"github.com/mcoot/arenactl/internal/world/memory"
)

// App contains all wired application components
type App struct {
	Config config.Config

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Settings    *settings.Store
	Sessions    *session.Registry
	World       *memory.World
	Audit       audit.Sink
	AuthService *auth.Service
	Registry    *command.Registry
	Dispatcher  *command.Dispatcher

	// Transports
	Multiplexer *transport.Multiplexer
	Websocket   *transport.WebsocketHandler
	Console     *transport.Console // nil when the console is disabled
	Router      http.Handler
	Server      *api.Server

	logger  *slog.Logger
	closers []func() error

	shutdownOnce sync.Once
	shutdownReq  chan struct{}
}

// Options holds process-level inputs that do not come from config.Config
type Options struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// ConsoleIn and ConsoleOut back the operator console (default stdin/stdout)
	ConsoleIn  io.Reader
	ConsoleOut io.Writer
}

// New creates a new application with all dependencies wired
func New(cfg config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	sinks := []audit.Sink{audit.NewLogSink(logger)}
	var closers []func() error
	if cfg.Audit.Sink == config.AuditSinkRedis {
		redisCfg := auditredis.DefaultConfig()
		redisCfg.URL = cfg.Audit.RedisURL
		redisCfg.Stream = cfg.Audit.Stream
		redisCfg.BatchSize = cfg.Audit.BatchSize
		redisSink, err := auditredis.New(redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connect audit redis: %w", err)
		}
		sinks = append(sinks, redisSink)
		closers = append(closers, redisSink.Close)
	}

	app, err := newWithDependencies(cfg, opts, clock.New(), random.New(), audit.Multi(sinks...), logger)
	if err != nil {
		for _, c := range closers {
			_ = c()
		}
		return nil, err
	}
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(cfg config.Config, opts Options, clk clock.Clock, rnd random.Random, sink audit.Sink, logger *slog.Logger) (*App, error) {
	store := settings.NewStore(settings.Defaults())
	if err := cfg.ApplySettings(store); err != nil {
		return nil, err
	}

	worldCfg := memory.DefaultConfig()
	worldCfg.TickRate = cfg.Server.TickRate

	app := &App{
		Config:      cfg,
		Clock:       clk,
		Random:      rnd,
		Settings:    store,
		Audit:       sink,
		logger:      logger,
		shutdownReq: make(chan struct{}),
	}

	app.Sessions = session.NewRegistry(clk, logger)
	app.World = memory.New(worldCfg, store, app.Sessions.DeliverChat, clk, rnd, logger)
	app.AuthService = auth.New(cfg.Accounts, sink, clk, logger)

	started := clk.Now()
	app.Registry = command.NewRegistry()
	commands.Register(app.Registry, commands.Deps{
		Auth:    app.AuthService,
		Audit:   sink,
		Clock:   clk,
		Started: started,
		Logger:  logger,
		Options: commands.Options{
			KillAllIncludesBots:       cfg.Commands.KillAllIncludesBots,
			StatusCountsMinionsAsBots: cfg.Commands.StatusCountsMinionsAsBots,
		},
		RequestShutdown: app.RequestShutdown,
	})
	app.Dispatcher = command.NewDispatcher(app.Registry, app.World, logger)

	app.Multiplexer = transport.NewMultiplexer(app.Dispatcher, app.World, cfg.Server.QueueSize, logger)
	app.Websocket = transport.NewWebsocketHandler(app.Multiplexer, app.Sessions, app.World,
		transport.DefaultWebsocketConfig(), logger)

	if cfg.Console.Enabled {
		in, out := opts.ConsoleIn, opts.ConsoleOut
		if in == nil {
			in = os.Stdin
		}
		if out == nil {
			out = os.Stdout
		}
		app.Console = transport.NewConsole(app.Multiplexer, app.Sessions, in, out, cfg.Console.Role, logger)
	}

	app.Router = api.NewRouter(api.RouterConfig{
		Logger:      logger,
		World:       app.World,
		Sessions:    app.Sessions,
		AuthService: app.AuthService,
		Clock:       clk,
		Started:     started,
		Websocket:   app.Websocket,
	})

	serverCfg := api.DefaultServerConfig()
	serverCfg.Host = cfg.Server.Host
	serverCfg.Port = cfg.Server.Port
	app.Server = api.NewServer(app.Router, serverCfg, logger)

	return app, nil
}

// RequestShutdown asks Run to stop. It never blocks and may be called
// any number of times.
func (a *App) RequestShutdown() {
	a.shutdownOnce.Do(func() { close(a.shutdownReq) })
}

// ShutdownRequested is closed once RequestShutdown has been called
func (a *App) ShutdownRequested() <-chan struct{} {
	return a.shutdownReq
}

// Run serves until ctx is cancelled, the shutdown command runs or the HTTP
// server fails, then shuts everything down in order
func (a *App) Run(ctx context.Context) error {
	if err := a.Server.Listen(); err != nil {
		return err
	}

	// The executor gets its own context so Shutdown can drain it after
	// ctx is gone.
	execCtx, cancelExec := context.WithCancel(context.Background())
	defer cancelExec()
	go a.Multiplexer.Run(execCtx)

	worldCtx, cancelWorld := context.WithCancel(context.Background())
	defer cancelWorld()
	go a.World.Run(worldCtx)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Server.Start()
	}()

	consoleCtx, cancelConsole := context.WithCancel(ctx)
	defer cancelConsole()
	if a.Console != nil {
		go func() {
			if err := a.Console.Run(consoleCtx); err != nil {
				a.logger.Warn("console stopped", slog.Any("error", err))
			}
		}()
	}

	a.logger.Info("server started", slog.String("addr", a.Server.Addr()))

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case <-a.shutdownReq:
		a.logger.Info("shutdown requested by command")
	case err := <-serverErr:
		runErr = err
	}

	cancelConsole()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, err)
	}
	cancelWorld()
	return runErr
}

// Shutdown stops accepting connections, disconnects websocket clients,
// drains queued commands and flushes the audit sinks
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	a.Websocket.CloseAll()
	if err := a.Multiplexer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("drain command queue: %w", err))
	}
	if err := a.Audit.Flush(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flush audit: %w", err))
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	a.logger.Info("server stopped")
	return errors.Join(errs...)
}
