package config

// Persistent state keys (Registry)
const (
	KeyKollsman      = "kollsman_mb"
	KeyLastPressure  = "last_pressure_mb"
	KeyAltitudeUnits = "altitude_units"
	KeyPressureUnits = "pressure_units"
	KeyFlingEnabled  = "wheel_fling_enabled"
)
