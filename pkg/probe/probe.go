// Package probe runs startup checks and decides whether the altimeter can
// start.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Timeout bounds each check.
const Timeout = 5 * time.Second

// CheckFunc returns nil when the check passes.
type CheckFunc func(ctx context.Context) error

// Probe is a single startup check.
type Probe struct {
	Name     string
	Check    CheckFunc
	Critical bool // a failure prevents startup
}

// Result is the outcome of one probe.
type Result struct {
	Probe    Probe
	Error    error
	Duration time.Duration
}

// Run executes probes in order, each under Timeout.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))
	for i, p := range probes {
		start := time.Now()
		checkCtx, cancel := context.WithTimeout(ctx, Timeout)
		err := p.Check(checkCtx)
		cancel()
		results[i] = Result{Probe: p, Error: err, Duration: time.Since(start)}
	}
	return results
}

// AnalyzeResults logs every result and joins the errors of failed critical
// probes.
func AnalyzeResults(results []Result) error {
	var critical []error

	slog.Info("Startup Checks Summary")
	for _, r := range results {
		status := "PASS"
		if r.Error != nil {
			status = "FAIL"
		}
		msg := fmt.Sprintf("[%s] %-20s (%v)", status, r.Probe.Name, r.Duration.Round(time.Millisecond))

		if r.Error == nil {
			slog.Info(msg)
			continue
		}
		slog.Error(msg, "error", r.Error)
		if r.Probe.Critical {
			critical = append(critical, fmt.Errorf("%s: %w", r.Probe.Name, r.Error))
		}
	}
	return errors.Join(critical...)
}

// FileReadable checks that path exists and can be opened.
func FileReadable(path string) CheckFunc {
	return func(ctx context.Context) error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		return f.Close()
	}
}
