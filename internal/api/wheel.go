package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"altimeter/pkg/apisession"
	"altimeter/pkg/config"
	"altimeter/pkg/wheel"
)

// WheelSessionTTL is how long an idle wheel can be resumed.
const WheelSessionTTL = 5 * time.Minute

// WheelHandler runs interactive Kollsman wheel sessions over websockets.
// Each session owns a wheel driven by one goroutine that handles pointer
// messages and animation frames in turn. A client that drops can reconnect
// with ?session=<id> and pick up the same wheel until it commits.
type WheelHandler struct {
	display  *Display
	frame    time.Duration
	upgrader websocket.Upgrader
	sessions *apisession.Store[wheelSession]
}

type wheelSession struct {
	mu       sync.Mutex // held by the connection driving the wheel
	scroller *wheel.Scroller
}

// NewWheelHandler creates a handler ticking animations every frame.
func NewWheelHandler(d *Display, frame time.Duration) *WheelHandler {
	if frame <= 0 {
		frame = wheel.FrameInterval
	}
	return &WheelHandler{
		display:  d,
		frame:    frame,
		upgrader: newUpgrader(),
		sessions: apisession.New[wheelSession](WheelSessionTTL),
	}
}

// WheelCommand is a message from the client.
type WheelCommand struct {
	Type    string  `json:"type"` // down, move, up, stop, fling, commit
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	T       int64   `json:"t"` // milliseconds
	Enabled bool    `json:"enabled"`
}

// WheelEvent is a message to the client.
type WheelEvent struct {
	Type    string       `json:"type"` // hello, status, committed, error
	Session string       `json:"session,omitempty"`
	Resumed bool         `json:"resumed,omitempty"`
	Status  wheel.Status `json:"status"`
	Reading *Reading     `json:"reading,omitempty"`
	Error   string       `json:"error,omitempty"`
}

func (h *WheelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	var sess *wheelSession
	resumed := false
	if id != "" {
		sess, resumed = h.sessions.Get(id)
	}
	if !resumed {
		s, err := h.display.NewWheel(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		id = uuid.NewString()
		sess = &wheelSession{scroller: s}
		h.sessions.Put(id, sess)
	}
	if !sess.mu.TryLock() {
		http.Error(w, "wheel session in use", http.StatusConflict)
		return
	}
	defer sess.mu.Unlock()
	defer h.sessions.Touch(id)
	s := sess.scroller

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Wheel upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.display.metrics.WheelSessions.Inc()
	defer h.display.metrics.WheelSessions.Dec()
	slog.Info("Wheel session opened", "session", id, "resumed", resumed, "selected", s.Selected())
	defer slog.Info("Wheel session closed", "session", id)

	cmds := make(chan WheelCommand)
	go func() {
		defer close(cmds)
		conn.SetReadLimit(1024)
		for {
			var c WheelCommand
			if err := conn.ReadJSON(&c); err != nil {
				var closeErr *websocket.CloseError
				if !errors.As(err, &closeErr) {
					slog.Debug("Wheel read failed", "session", id, "error", err)
				}
				return
			}
			select {
			case cmds <- c:
			case <-r.Context().Done():
				return
			}
		}
	}()

	send := func(ev WheelEvent) bool {
		ev.Status = s.Status()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(ev) == nil
	}
	if !send(WheelEvent{Type: "hello", Session: id, Resumed: resumed}) {
		return
	}

	ticker := time.NewTicker(h.frame)
	defer ticker.Stop()

	for {
		select {
		case c, ok := <-cmds:
			if !ok {
				return
			}
			h.sessions.Touch(id)
			ev := h.apply(r.Context(), s, c)
			if ev.Type == "committed" {
				h.sessions.Delete(id)
			}
			if !send(ev) {
				return
			}
		case <-ticker.C:
			if !s.Animating() {
				continue
			}
			s.Tick(h.frame)
			h.display.metrics.WheelFrames.Inc()
			if !send(WheelEvent{Type: "status"}) {
				return
			}
		}
	}
}

func (h *WheelHandler) apply(ctx context.Context, s *wheel.Scroller, c WheelCommand) WheelEvent {
	switch c.Type {
	case "down":
		s.Down(c.X, c.Y, c.T)
	case "move":
		s.Move(c.X, c.Y, c.T)
	case "up":
		s.Up(c.X, c.Y, c.T)
	case "stop":
		s.Stop()
	case "fling":
		s.SetFlingEnabled(c.Enabled)
		if err := h.display.settings.SetFlingEnabled(ctx, c.Enabled); err != nil && !errors.Is(err, config.ErrNoStore) {
			return WheelEvent{Type: "error", Error: err.Error()}
		}
	case "commit":
		if s.Animating() {
			s.Stop()
		}
		if err := h.display.ApplyWheel(ctx, s.Selected()); err != nil {
			return WheelEvent{Type: "error", Error: err.Error()}
		}
		rd := h.display.Reading()
		return WheelEvent{Type: "committed", Reading: &rd}
	default:
		return WheelEvent{Type: "error", Error: "unknown command " + c.Type}
	}
	return WheelEvent{Type: "status"}
}
