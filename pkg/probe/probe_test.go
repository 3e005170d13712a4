package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRun(t *testing.T) {
	var deadlineSet bool
	probes := []Probe{
		{
			Name: "Database",
			Check: func(ctx context.Context) error {
				_, deadlineSet = ctx.Deadline()
				return nil
			},
			Critical: true,
		},
		{
			Name:  "Recording",
			Check: func(ctx context.Context) error { return errors.New("missing") },
		},
	}

	results := Run(context.Background(), probes)

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Error != nil {
		t.Errorf("Expected first probe to pass, got %v", results[0].Error)
	}
	if results[1].Error == nil {
		t.Error("Expected second probe to fail")
	}
	if !deadlineSet {
		t.Error("Expected checks to run with a deadline")
	}
}

func TestAnalyzeResults(t *testing.T) {
	fail := errors.New("fail")
	tests := []struct {
		name    string
		results []Result
		wantErr bool
	}{
		{"All Pass", []Result{{Probe: Probe{Name: "P1", Critical: true}}}, false},
		{"Critical Failure", []Result{{Probe: Probe{Name: "P1", Critical: true}, Error: fail}}, true},
		{"Non-Critical Failure", []Result{{Probe: Probe{Name: "P1"}, Error: fail}}, false},
		{"Mixed Failure", []Result{
			{Probe: Probe{Name: "P1"}, Error: fail},
			{Probe: Probe{Name: "P2", Critical: true}, Error: fail},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AnalyzeResults(tt.results)
			if (err != nil) != tt.wantErr {
				t.Errorf("AnalyzeResults() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, fail) {
				t.Errorf("Expected wrapped failure, got %v", err)
			}
		})
	}
}

func TestFileReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flight.csv")
	if err := os.WriteFile(path, []byte("timestamp_ns,pressure_mb\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := FileReadable(path)(context.Background()); err != nil {
		t.Errorf("Expected readable file, got %v", err)
	}
	if err := FileReadable(path + ".missing")(context.Background()); err == nil {
		t.Error("Expected error for missing file")
	}
}
