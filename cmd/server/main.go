// Package main is the entry point of the application
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/tecu23/sideduel-server/internal/auth"
	"github.com/tecu23/sideduel-server/internal/rules"
	"github.com/tecu23/sideduel-server/internal/telemetry"
	"github.com/tecu23/sideduel-server/pkg/config"
	"github.com/tecu23/sideduel-server/pkg/events"
	"github.com/tecu23/sideduel-server/pkg/manager"
	"github.com/tecu23/sideduel-server/pkg/repository"
	"github.com/tecu23/sideduel-server/pkg/server"
)

const serviceName = "sideduel-server"

// App encapsulates global dependencies
type application struct {
	Auth      *auth.APIKeyAuth
	Logger    *zap.Logger
	Config    *config.Config
	Publisher *events.Publisher
	Manager   *manager.Manager
	Hub       *server.Hub
	Server    *http.Server

	StartTime time.Time
}

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	port := flag.String("port", "", "server port (overrides PORT)")
	flag.Parse()

	// A missing .env is fine; the environment alone may configure the server.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}
	if *debug {
		cfg.Debug = true
	}
	if *port != "" {
		cfg.Port = *port
	}

	// Initialize logger
	logger := initLogger(cfg.Debug)
	defer func() { _ = logger.Sync() }()

	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn("loading .env failed", zap.Error(envErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint, cfg.OTelEnabled)
	if err != nil {
		logger.Fatal("telemetry setup error", zap.Error(err))
	}

	// Initialize event publisher
	publisher := events.NewPublisher()

	// Initialize repository
	repo := repository.NewInMemoryRepository(logger)

	// Initialize session manager
	gm := manager.NewManager(repo, rules.NewStandard(), publisher, logger,
		manager.WithTimeControl(manager.TimeControl{
			MainInitial:   cfg.MainInitialTime,
			MainIncrement: cfg.MainIncrement,
			SideAttacker:  cfg.SideAttackerTime,
			SideDefender:  cfg.SideDefenderTime,
		}),
	)

	app := &application{
		Auth:      auth.NewAPIKeyAuth(cfg.APIKeys),
		Logger:    logger,
		Config:    cfg,
		Publisher: publisher,
		Manager:   gm,
		Hub:       server.NewHub(gm, publisher, logger),
		StartTime: time.Now(),
	}

	if err := app.run(ctx); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Warn("telemetry shutdown error", zap.Error(err))
	}
}

// run starts the hub, the flag sweeper and the http server, and stops all three
// when ctx is cancelled or any of them fails
func (app *application) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return app.Hub.Run(ctx) })
	g.Go(func() error { return app.Manager.Run(ctx, app.Config.TickInterval) })
	g.Go(func() error { return app.serve(ctx) })

	return g.Wait()
}

func initLogger(debug bool) *zap.Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	return logger
}
