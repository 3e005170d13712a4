package logging

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// EventKind groups instrument events in the event log.
type EventKind string

const (
	EventInop     EventKind = "inop"
	EventKollsman EventKind = "kollsman"
)

// Event is a notable instrument state change.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      EventKind `json:"kind"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
}

// InopEvent records the INOP flag being raised or cleared.
func InopEvent(at time.Time, inop bool) Event {
	if inop {
		return Event{Timestamp: at, Kind: EventInop, Title: "INOP", Summary: "no recent pressure samples"}
	}
	return Event{Timestamp: at, Kind: EventInop, Title: "Operative"}
}

// KollsmanEvent records a new Kollsman window label.
func KollsmanEvent(at time.Time, label, previous string) Event {
	return Event{Timestamp: at, Kind: EventKollsman, Title: "Set " + label, Summary: "from " + previous}
}

// String formats e as "[2006-01-02 15:04:05] [kind] Title - Summary".
func (e Event) String() string {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	line := fmt.Sprintf("[%s] [%s] %s", ts.Format(time.DateTime), e.Kind, e.Title)
	if e.Summary != "" {
		line += " - " + e.Summary
	}
	return line
}

var events struct {
	mu   sync.Mutex
	path string
}

// SetEventLogPath sets the event log file. An empty path disables it.
func SetEventLogPath(path string) {
	events.mu.Lock()
	defer events.mu.Unlock()
	events.path = path
}

// LogEvent appends e to the event log and keeps it for /api/log/latest.
func LogEvent(e Event) {
	events.mu.Lock()
	defer events.mu.Unlock()

	if events.path == "" {
		return
	}
	line := e.String()

	f, err := openLog(events.path)
	if err != nil {
		slog.Error("failed to open event log", "error", err)
		return
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		slog.Error("failed to write event log", "error", err)
	}
	_, _ = GlobalEventCapture.Write([]byte(line))
}
