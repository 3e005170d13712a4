package api

import (
	"log/slog"
	"net/http"
	"time"

	"altimeter/pkg/version"
)

// Handlers groups everything NewServer routes. Sessions may be nil when
// nothing is recorded.
type Handlers struct {
	Instrument *InstrumentHandler
	Stream     *StreamHandler
	Wheel      *WheelHandler
	Sessions   *SessionsHandler
	Metrics    *Metrics
}

// NewServer creates and configures the HTTP server.
// shutdown is called when a client asks the process to stop.
func NewServer(addr string, h Handlers, shutdown func()) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      NewMux(h, shutdown),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewMux registers all routes.
func NewMux(h Handlers, shutdown func()) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)

	// Instrument
	mux.HandleFunc("GET /api/reading", h.Instrument.HandleReading)
	mux.HandleFunc("POST /api/kollsman", h.Instrument.HandleKollsman)
	mux.HandleFunc("POST /api/units", h.Instrument.HandleUnits)
	mux.HandleFunc("GET /api/instrument.png", h.Instrument.HandleInstrumentImage)
	mux.HandleFunc("GET /api/wheel.png", h.Instrument.HandleWheelImage)

	// Websockets
	mux.Handle("GET /api/stream", h.Stream)
	mux.Handle("GET /api/wheel", h.Wheel)

	// Recordings
	if h.Sessions != nil {
		mux.HandleFunc("GET /api/sessions", h.Sessions.HandleList)
		mux.HandleFunc("GET /api/sessions/{name}/samples.csv", h.Sessions.HandleCSV)
	}

	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics.Handler())
	}

	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Let the response flush first.
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	return mux
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": version.Version,
		"commit":  version.Commit(),
	})
}
