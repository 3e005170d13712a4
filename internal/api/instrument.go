package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"altimeter/pkg/baro"
	"altimeter/pkg/config"
)

// maxImageSide bounds requested image sizes.
const maxImageSide = 4096

// InstrumentHandler serves the altimeter state, its settings and its images.
type InstrumentHandler struct {
	display *Display
	render  config.RenderConfig
	wheel   config.WheelConfig
}

// NewInstrumentHandler creates a new InstrumentHandler.
func NewInstrumentHandler(d *Display, cfg *config.Config) *InstrumentHandler {
	return &InstrumentHandler{display: d, render: cfg.Render, wheel: cfg.Wheel}
}

// KollsmanRequest sets the reference pressure, either in millibars or as a
// string with units such as "29.92inHg".
type KollsmanRequest struct {
	Millibars *float64 `json:"mb,omitempty"`
	Value     string   `json:"value,omitempty"`
}

// UnitsRequest switches display units. Empty fields are left alone.
type UnitsRequest struct {
	AltitudeUnits string `json:"altitude_units,omitempty"`
	PressureUnits string `json:"pressure_units,omitempty"`
}

// HandleReading returns the current reading.
func (h *InstrumentHandler) HandleReading(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.display.Reading())
}

// HandleKollsman changes the reference pressure.
func (h *InstrumentHandler) HandleKollsman(w http.ResponseWriter, r *http.Request) {
	var req KollsmanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var mb float64
	switch {
	case req.Millibars != nil:
		mb = *req.Millibars
	case req.Value != "":
		v, err := config.ParsePressure(req.Value)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mb = v
	default:
		http.Error(w, "mb or value required", http.StatusBadRequest)
		return
	}

	if err := h.display.SetKollsman(r.Context(), mb); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.display.Reading())
}

// HandleUnits changes the display units.
func (h *InstrumentHandler) HandleUnits(w http.ResponseWriter, r *http.Request) {
	var req UnitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	err := h.display.SetUnits(r.Context(), baro.AltitudeUnit(req.AltitudeUnits), baro.PressureUnit(req.PressureUnits))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.display.Reading())
}

// HandleInstrumentImage renders the face as PNG. Size defaults to the
// configured one and may be overridden with w and h query parameters.
func (h *InstrumentHandler) HandleInstrumentImage(w http.ResponseWriter, r *http.Request) {
	width, height, err := imageSize(r, h.render.Width, h.render.Height)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.display.RenderInstrument(w, width, height); err != nil {
		slog.Error("Failed to render instrument", "error", err)
	}
}

// HandleWheelImage renders a wheel resting on the current setting as PNG.
func (h *InstrumentHandler) HandleWheelImage(w http.ResponseWriter, r *http.Request) {
	width, height, err := imageSize(r, h.wheel.Width, h.wheel.Height)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.display.RenderWheel(r.Context(), w, width, height); err != nil {
		slog.Error("Failed to render wheel", "error", err)
	}
}

func imageSize(r *http.Request, defW, defH int) (width, height int, err error) {
	width, height = defW, defH
	q := r.URL.Query()
	if s := q.Get("w"); s != "" {
		if width, err = strconv.Atoi(s); err != nil {
			return 0, 0, fmt.Errorf("invalid width %q", s)
		}
	}
	if s := q.Get("h"); s != "" {
		if height, err = strconv.Atoi(s); err != nil {
			return 0, 0, fmt.Errorf("invalid height %q", s)
		}
	}
	if width <= 0 || height <= 0 || width > maxImageSide || height > maxImageSide {
		return 0, 0, fmt.Errorf("image size %dx%d out of range", width, height)
	}
	return width, height, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
