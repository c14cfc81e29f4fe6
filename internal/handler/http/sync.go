package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/tally-sync/internal/app"
	"github.com/MKhiriev/tally-sync/internal/cache"
	"github.com/MKhiriev/tally-sync/internal/logger"
	"github.com/MKhiriev/tally-sync/internal/service"
)

type cacheStatusResponse struct {
	State     service.State  `json:"state"`
	LastError string         `json:"last_error,omitempty"`
	LastSync  *time.Time     `json:"last_sync,omitempty"`
	Domains   []cache.Status `json:"domains"`
}

type refreshResponse struct {
	Fetched bool          `json:"fetched"`
	State   service.State `json:"state"`
}

func (h *Handler) getCacheStatus(w http.ResponseWriter, r *http.Request) {
	resp := cacheStatusResponse{
		State:   h.sync.State(),
		Domains: h.sync.Statuses(),
	}
	if err := h.sync.LastError(); err != nil {
		resp.LastError = err.Error()
	}
	if last := h.sync.LastSync(); !last.IsZero() {
		resp.LastSync = &last
	}

	writeJSON(w, r, resp, http.StatusOK)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	force, ok := forceParam(w, r)
	if !ok {
		return
	}

	fetched, err := h.sync.Refresh(r.Context(), force)
	if err != nil {
		log.Err(err).Str("func", "*Handler.refresh").Msg("manual refresh failed")
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, refreshResponse{Fetched: fetched, State: h.sync.State()}, http.StatusOK)
}

func (h *Handler) refreshDomain(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	domain := chi.URLParam(r, "domain")

	force, ok := forceParam(w, r)
	if !ok {
		return
	}

	fetched, err := h.sync.ScheduleRefresh(r.Context(), domain, force)
	if err != nil {
		log.Err(err).Str("func", "*Handler.refreshDomain").Str("domain", domain).Msg("manual refresh failed")
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, refreshResponse{Fetched: fetched, State: h.sync.State()}, http.StatusOK)
}

// forceParam reads ?force=; a missing value means false.
func forceParam(w http.ResponseWriter, r *http.Request) (bool, bool) {
	raw := r.URL.Query().Get("force")
	if raw == "" {
		return false, true
	}
	force, err := strconv.ParseBool(raw)
	if err != nil {
		writeJSON(w, r, map[string]string{"error": app.MsgInvalidForceParam}, http.StatusBadRequest)
		return false, false
	}
	return force, true
}
