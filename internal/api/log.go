package api

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"altimeter/pkg/logging"
)

// Regex to capture key=value or key="value with spaces"
var logRegex = regexp.MustCompile(`([a-zA-Z0-9_\-.]+)=(?:"([^"]*)"|([^ ]+))`)

// handleLatestLog returns the last server log line and the last instrument
// event.
func handleLatestLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"log":   formatLogLine(logging.GlobalLogCapture.GetLastLine()),
		"event": strings.TrimSpace(logging.GlobalEventCapture.GetLastLine()),
	})
}

// formatLogLine shortens a text handler line to "HH:MM:SS msg (k=v, ...)".
// Level is dropped and values longer than 20 characters are left out.
func formatLogLine(raw string) string {
	matches := logRegex.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return strings.TrimSpace(raw)
	}

	var msg, clock string
	var params []string

	for _, m := range matches {
		key, val := m[1], m[2]
		if val == "" {
			val = m[3]
		}
		val = strings.TrimSpace(val)

		switch key {
		case "time":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				clock = t.Format("15:04:05")
			}
		case "level":
		case "msg":
			msg = val
		default:
			if len(val) <= 20 {
				params = append(params, key+"="+val)
			}
		}
	}

	if msg == "" {
		return strings.TrimSpace(raw)
	}

	sort.Strings(params)

	out := msg
	if clock != "" {
		out = clock + " " + msg
	}
	if len(params) > 0 {
		return fmt.Sprintf("%s (%s)", out, strings.Join(params, ", "))
	}
	return out
}
