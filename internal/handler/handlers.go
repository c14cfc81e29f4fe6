package handler

import (
	"net/http"

	"github.com/MKhiriev/tally-sync/internal/config"
	myHTTP "github.com/MKhiriev/tally-sync/internal/handler/http"
	"github.com/MKhiriev/tally-sync/internal/logger"
	"github.com/MKhiriev/tally-sync/models"
)

type Handlers struct {
	HTTP *myHTTP.Handler
}

// NewHandlers builds the debug handlers. It fails with
// errNoHandlersAreCreated when the debug listener is disabled, so callers
// can skip the server entirely.
func NewHandlers(sync myHTTP.SyncService, buildInfo models.AppBuildInfo, metrics http.Handler, cfg config.Debug, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	return &Handlers{
		HTTP: myHTTP.NewHandler(sync, buildInfo, metrics, logger),
	}, nil
}
