package config

import (
	"context"
	"errors"
	"testing"

	"altimeter/pkg/baro"
)

// MockStateStore implements store.StateStore for testing.
type MockStateStore struct {
	data map[string]string
}

func NewMockStateStore() *MockStateStore {
	return &MockStateStore{data: make(map[string]string)}
}

func (m *MockStateStore) GetState(ctx context.Context, key string) (string, bool) {
	val, ok := m.data[key]
	return val, ok
}

func (m *MockStateStore) SetState(ctx context.Context, key, val string) error {
	m.data[key] = val
	return nil
}

func (m *MockStateStore) DeleteState(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestUnifiedProvider(t *testing.T) {
	ctx := context.Background()
	baseCfg := DefaultConfig()
	baseCfg.Altimeter.AltitudeUnits = "meters"
	baseCfg.Altimeter.Kollsman = 1005

	st := NewMockStateStore()
	p := NewProvider(baseCfg, st)

	t.Run("Fallbacks", func(t *testing.T) {
		if got := p.Kollsman(ctx); got != 1005 {
			t.Errorf("Kollsman: expected 1005, got %v", got)
		}
		if got := p.AltitudeUnits(ctx); got != baro.Meters {
			t.Errorf("AltitudeUnits: expected meters, got %v", got)
		}
		if got := p.PressureUnits(ctx); got != baro.InHg {
			t.Errorf("PressureUnits: expected inhg, got %v", got)
		}
		if !p.FlingEnabled(ctx) {
			t.Error("FlingEnabled: expected config default true")
		}
		if _, ok := p.LastPressure(ctx); ok {
			t.Error("LastPressure: expected none")
		}
		if p.AppConfig() != baseCfg {
			t.Error("AppConfig should return the base config")
		}
	})

	t.Run("StoreOverrides", func(t *testing.T) {
		if err := p.SetKollsman(ctx, 998.5); err != nil {
			t.Fatal(err)
		}
		if err := p.SetAltitudeUnits(ctx, baro.Feet); err != nil {
			t.Fatal(err)
		}
		if err := p.SetPressureUnits(ctx, baro.Millibars); err != nil {
			t.Fatal(err)
		}
		if err := p.SetFlingEnabled(ctx, false); err != nil {
			t.Fatal(err)
		}
		if err := p.SetLastPressure(ctx, 1001.25); err != nil {
			t.Fatal(err)
		}

		if got := p.Kollsman(ctx); got != 998.5 {
			t.Errorf("Kollsman: expected 998.5, got %v", got)
		}
		if got := p.AltitudeUnits(ctx); got != baro.Feet {
			t.Errorf("AltitudeUnits: expected feet, got %v", got)
		}
		if got := p.PressureUnits(ctx); got != baro.Millibars {
			t.Errorf("PressureUnits: expected mb, got %v", got)
		}
		if p.FlingEnabled(ctx) {
			t.Error("FlingEnabled: expected stored false")
		}
		if mb, ok := p.LastPressure(ctx); !ok || mb != 1001.25 {
			t.Errorf("LastPressure: expected 1001.25, got %v %v", mb, ok)
		}
	})

	t.Run("GarbageFallsBack", func(t *testing.T) {
		st.data[KeyKollsman] = "abc"
		st.data[KeyAltitudeUnits] = "cubits"
		if got := p.Kollsman(ctx); got != 1005 {
			t.Errorf("Kollsman: expected fallback 1005, got %v", got)
		}
		if got := p.AltitudeUnits(ctx); got != baro.Feet {
			t.Errorf("AltitudeUnits: expected feet for unknown unit, got %v", got)
		}
	})
}

func TestUnifiedProvider_CorruptPressure(t *testing.T) {
	ctx := context.Background()
	for _, bad := range []string{"NaN", "+Inf", "-Inf", "0", "-12"} {
		st := NewMockStateStore()
		st.data[KeyKollsman] = bad
		st.data[KeyLastPressure] = bad
		p := NewProvider(DefaultConfig(), st)

		if got := p.Kollsman(ctx); got != baro.StandardPressure {
			t.Errorf("Kollsman with stored %q: expected standard pressure, got %v", bad, got)
		}
		if _, ok := p.LastPressure(ctx); ok {
			t.Errorf("LastPressure with stored %q: expected none", bad)
		}
	}
}

func TestUnifiedProvider_NoStore(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(DefaultConfig(), nil)

	if got := p.Kollsman(ctx); got != baro.StandardPressure {
		t.Errorf("expected standard pressure, got %v", got)
	}
	if err := p.SetKollsman(ctx, 1000); !errors.Is(err, ErrNoStore) {
		t.Errorf("expected ErrNoStore, got %v", err)
	}
}
