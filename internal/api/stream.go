package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

func newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		HandshakeTimeout: 5 * time.Second,
		// The instrument is served to local panels only.
		CheckOrigin: func(r *http.Request) bool { return true },
	}
}

// StreamHandler pushes readings to websocket clients at a fixed rate.
type StreamHandler struct {
	display  *Display
	interval time.Duration
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a handler sending one reading per interval.
func NewStreamHandler(d *Display, interval time.Duration) *StreamHandler {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &StreamHandler{display: d, interval: interval, upgrader: newUpgrader()}
}

type streamMessage struct {
	Type string  `json:"type"`
	Data Reading `json:"data"`
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Stream upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.display.metrics.StreamClients.Inc()
	defer h.display.metrics.StreamClients.Dec()

	// Reads only serve to notice the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func() bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(streamMessage{Type: "reading", Data: h.display.Reading()}); err != nil {
			slog.Debug("Stream write failed", "error", err)
			return false
		}
		return true
	}
	if !send() {
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if !send() {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
