// Package server wires the onboarding server together: it opens the store,
// builds the services, and runs the HTTP API and the gRPC health endpoint
// until a signal or a fatal error stops them.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/onboarding/internal/logging"
	"github.com/dmitrijs2005/onboarding/internal/server/config"
	"github.com/dmitrijs2005/onboarding/internal/server/httpapi"
	"github.com/dmitrijs2005/onboarding/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/onboarding/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/onboarding/internal/server/grpc"
)

// openStore is a seam for tests.
var openStore = repomanager.New

type App struct {
	config       *config.Config
	logger       logging.Logger
	store        repomanager.RepositoryManager
	userService  *services.UserService
	formService  *services.FormService
	imageService *services.ImageService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogBackend, os.Stdout, c.LogDebug)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	store, err := openStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := store.RunMigrations(ctx); err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	return &App{
		config:       c,
		logger:       logger,
		store:        store,
		userService:  services.NewUserService(store, c, logger.With("module", "users")),
		formService:  services.NewFormService(store, logger.With("module", "forms")),
		imageService: services.NewImageService(store, c),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until ctx is cancelled, a signal arrives or one of the servers
// fails. The store is closed before returning.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageDriver)

	app.initSignalHandler(cancelFunc)

	httpServer := httpapi.NewHTTPServer(app.config, app.logger, httpapi.Deps{
		Auth:   app.userService,
		Forms:  app.formService,
		Images: app.imageService,
		Store:  app.store,
	})
	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.store, app.config.HealthProbeInterval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpServer.Run(gctx) })
	g.Go(func() error { return grpcServer.Run(gctx) })

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped with error", "error", err.Error())
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	if cerr := app.store.Close(closeCtx); cerr != nil {
		app.logger.Error(ctx, "store close error", "error", cerr.Error())
	}

	app.logger.Info(ctx, "App stopped")
	if s, ok := app.logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
	return err
}
