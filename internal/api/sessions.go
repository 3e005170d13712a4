package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"altimeter/pkg/sensor"
	"altimeter/pkg/store"
)

// SessionsHandler exposes recorded sample sessions.
type SessionsHandler struct {
	store store.SampleStore
}

// NewSessionsHandler creates a new SessionsHandler.
func NewSessionsHandler(st store.SampleStore) *SessionsHandler {
	return &SessionsHandler{store: st}
}

// HandleList returns every session with its sample count.
func (h *SessionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions(r.Context())
	if err != nil {
		slog.Error("Failed to list sessions", "error", err)
		http.Error(w, "failed to list sessions", http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []store.SessionInfo{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// HandleCSV exports one session in the replay CSV format. An optional
// limit query parameter caps the number of samples.
func (h *SessionsHandler) HandleCSV(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	samples, err := h.store.Samples(r.Context(), name, limit)
	if err != nil {
		slog.Error("Failed to load samples", "session", name, "error", err)
		http.Error(w, "failed to load samples", http.StatusInternalServerError)
		return
	}
	if len(samples) == 0 {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName(name)+".csv"))
	if err := sensor.WriteCSV(w, samples); err != nil {
		slog.Error("Failed to write samples", "session", name, "error", err)
	}
}

func fileName(session string) string {
	return strings.NewReplacer(":", "-", "/", "-", `\`, "-").Replace(session)
}
