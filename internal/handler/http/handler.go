package http

import (
	"net/http"

	"github.com/MKhiriev/tally-sync/internal/logger"
	"github.com/MKhiriev/tally-sync/models"
)

type Handler struct {
	sync      SyncService
	buildInfo models.AppBuildInfo
	metrics   http.Handler

	logger *logger.Logger
}

// NewHandler creates the debug handler. metrics serves GET /metrics; a nil
// metrics handler leaves the route out.
func NewHandler(sync SyncService, buildInfo models.AppBuildInfo, metrics http.Handler, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		sync:      sync,
		buildInfo: buildInfo,
		metrics:   metrics,
		logger:    logger,
	}
}
