package client

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/MKhiriev/tally-sync/internal/logger"
	"github.com/MKhiriev/tally-sync/internal/server"
)

const closeTimeout = 10 * time.Second

type App struct {
	session Session
	server  server.Server
	logger  *logger.Logger
}

var _ Client = (*App)(nil)

// NewApp creates the runtime. srv may be nil when the debug listener is
// disabled.
func NewApp(session Session, srv server.Server, logger *logger.Logger) (*App, error) {
	if session == nil {
		return nil, errors.New("app needs a session")
	}
	return &App{session: session, server: srv, logger: logger}, nil
}

// Run restores the persisted caches, refreshes whatever is stale, starts
// the background jobs and blocks until shutdown. Offline start-up is not an
// error: the session keeps serving the persisted state.
func (a *App) Run(ctx context.Context) error {
	log := a.logger.With().Str("func", "*App.Run").Logger()

	if err := a.session.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("starting with partially loaded caches")
	}

	if _, err := a.session.Refresh(ctx, false); err != nil {
		log.Warn().Err(err).Msg("initial refresh failed, serving cached state")
	}

	if err := a.session.Start(ctx); err != nil {
		return err
	}

	runErr := a.wait(ctx)

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()

	return errors.Join(runErr, a.session.Close(closeCtx))
}

func (a *App) wait(ctx context.Context) error {
	if a.server != nil {
		return a.server.RunServer(ctx)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	<-ctx.Done()
	a.logger.Info().Msg("stop requested")
	return nil
}
