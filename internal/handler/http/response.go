package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/tally-sync/internal/logger"
)

func writeJSON(w http.ResponseWriter, r *http.Request, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "writeJSON").Msg("error writing response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := responseFromError(err)
	writeJSON(w, r, map[string]string{"error": resp.message}, resp.status)
}
