package store

import (
	"context"

	"altimeter/pkg/sensor"
)

// StateStore handles persistent application state.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
}

// SampleStore keeps recorded pressure samples, grouped by session.
type SampleStore interface {
	AppendSamples(ctx context.Context, session string, samples []sensor.Sample) error
	// Samples returns up to limit samples of a session in timestamp order.
	// A limit of 0 returns all of them.
	Samples(ctx context.Context, session string, limit int) ([]sensor.Sample, error)
	Sessions(ctx context.Context) ([]SessionInfo, error)
	ClearSamples(ctx context.Context, session string) error
}

// SessionInfo summarizes one recorded session.
type SessionInfo struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	FirstNS int64  `json:"first_ns"`
	LastNS  int64  `json:"last_ns"`
}
