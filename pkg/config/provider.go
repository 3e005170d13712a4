package config

import (
	"context"
	"errors"
	"strconv"

	"altimeter/pkg/baro"
	"altimeter/pkg/store"
)

// ErrNoStore is returned by setters on a provider without a state store.
var ErrNoStore = errors.New("no state store")

// Provider gives access to settings that the user can change at runtime.
// Persisted values win over the static configuration.
type Provider interface {
	Kollsman(ctx context.Context) float64
	LastPressure(ctx context.Context) (float64, bool)
	AltitudeUnits(ctx context.Context) baro.AltitudeUnit
	PressureUnits(ctx context.Context) baro.PressureUnit
	FlingEnabled(ctx context.Context) bool

	SetKollsman(ctx context.Context, mb float64) error
	SetLastPressure(ctx context.Context, mb float64) error
	SetAltitudeUnits(ctx context.Context, u baro.AltitudeUnit) error
	SetPressureUnits(ctx context.Context, u baro.PressureUnit) error
	SetFlingEnabled(ctx context.Context, on bool) error

	// Raw access
	AppConfig() *Config
}

// UnifiedProvider implements Provider by bridging static Config and persistent Store.
type UnifiedProvider struct {
	base  *Config
	store store.StateStore
}

// NewProvider creates a new UnifiedProvider. st may be nil.
func NewProvider(base *Config, st store.StateStore) *UnifiedProvider {
	return &UnifiedProvider{
		base:  base,
		store: st,
	}
}

func (p *UnifiedProvider) AppConfig() *Config { return p.base }

func (p *UnifiedProvider) Kollsman(ctx context.Context) float64 {
	mb := p.getFloat64(ctx, KeyKollsman, float64(p.base.Altimeter.Kollsman))
	if !baro.ValidPressure(mb) {
		return baro.StandardPressure
	}
	return mb
}

func (p *UnifiedProvider) LastPressure(ctx context.Context) (float64, bool) {
	mb := p.getFloat64(ctx, KeyLastPressure, 0)
	return mb, baro.ValidPressure(mb)
}

func (p *UnifiedProvider) AltitudeUnits(ctx context.Context) baro.AltitudeUnit {
	u := baro.AltitudeUnit(p.getString(ctx, KeyAltitudeUnits, p.base.Altimeter.AltitudeUnits))
	if !u.Valid() {
		return baro.Feet
	}
	return u
}

func (p *UnifiedProvider) PressureUnits(ctx context.Context) baro.PressureUnit {
	u := baro.PressureUnit(p.getString(ctx, KeyPressureUnits, p.base.Altimeter.PressureUnits))
	if !u.Valid() {
		return baro.InHg
	}
	return u
}

func (p *UnifiedProvider) FlingEnabled(ctx context.Context) bool {
	return p.getBool(ctx, KeyFlingEnabled, p.base.Wheel.FlingEnabled)
}

func (p *UnifiedProvider) SetKollsman(ctx context.Context, mb float64) error {
	return p.set(ctx, KeyKollsman, strconv.FormatFloat(mb, 'f', -1, 64))
}

func (p *UnifiedProvider) SetLastPressure(ctx context.Context, mb float64) error {
	return p.set(ctx, KeyLastPressure, strconv.FormatFloat(mb, 'f', -1, 64))
}

func (p *UnifiedProvider) SetAltitudeUnits(ctx context.Context, u baro.AltitudeUnit) error {
	return p.set(ctx, KeyAltitudeUnits, string(u))
}

func (p *UnifiedProvider) SetPressureUnits(ctx context.Context, u baro.PressureUnit) error {
	return p.set(ctx, KeyPressureUnits, string(u))
}

func (p *UnifiedProvider) SetFlingEnabled(ctx context.Context, on bool) error {
	return p.set(ctx, KeyFlingEnabled, strconv.FormatBool(on))
}

// --- Helpers ---

func (p *UnifiedProvider) set(ctx context.Context, key, val string) error {
	if p.store == nil {
		return ErrNoStore
	}
	return p.store.SetState(ctx, key, val)
}

func (p *UnifiedProvider) getString(ctx context.Context, key, fallback string) string {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			return val
		}
	}
	return fallback
}

func (p *UnifiedProvider) getFloat64(ctx context.Context, key string, fallback float64) float64 {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				return f
			}
		}
	}
	return fallback
}

func (p *UnifiedProvider) getBool(ctx context.Context, key string, fallback bool) bool {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			return val == "true"
		}
	}
	return fallback
}
