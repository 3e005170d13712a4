package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"altimeter/pkg/baro"
)

// Duration wraps time.Duration to support extended units (d, w) in YAML.
type Duration time.Duration

// Common durations.
const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// ParseDuration parses a duration string, supporting d and w on top of the
// time.ParseDuration units.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if strings.ContainsAny(s, "dw") {
		return parseExtendedDuration(s)
	}
	return time.ParseDuration(s)
}

var unitMap = map[string]time.Duration{
	"ns": time.Nanosecond,
	"us": time.Microsecond,
	"µs": time.Microsecond,
	"ms": time.Millisecond,
	"s":  time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
	"d":  Day,
	"w":  Week,
}

var durationPart = regexp.MustCompile(`([0-9.]+)([a-zµ]+)`)

func parseExtendedDuration(s string) (time.Duration, error) {
	matches := durationPart.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	var total time.Duration
	for _, match := range matches {
		val, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number in duration: %s", match[1])
		}
		base, ok := unitMap[match[2]]
		if !ok {
			return 0, fmt.Errorf("unknown unit: %s", match[2])
		}
		total += time.Duration(val * float64(base))
	}
	return total, nil
}

// Distance represents a distance in meters.
type Distance float64

// UnmarshalYAML implements yaml.Unmarshaler. Bare numbers are meters.
func (d *Distance) UnmarshalYAML(value *yaml.Node) error {
	var f float64
	if err := value.Decode(&f); err == nil {
		*d = Distance(f)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dist, err := ParseDistance(s)
	if err != nil {
		return err
	}
	*d = Distance(dist)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Distance) MarshalYAML() (interface{}, error) {
	return fmt.Sprintf("%.2fm", float64(d)), nil
}

// ParseDistance parses a distance in m, km, nm or ft into meters. Unitless
// values are meters.
func ParseDistance(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	mult := 1.0
	numStr := s
	switch {
	case strings.HasSuffix(s, "km"):
		mult, numStr = 1000, strings.TrimSuffix(s, "km")
	case strings.HasSuffix(s, "nm"):
		mult, numStr = 1852, strings.TrimSuffix(s, "nm")
	case strings.HasSuffix(s, "ft"):
		mult, numStr = 1/baro.MetersToFeet, strings.TrimSuffix(s, "ft")
	case strings.HasSuffix(s, "m"):
		numStr = strings.TrimSuffix(s, "m")
	}

	val, err := strconv.ParseFloat(strings.TrimSpace(numStr), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid distance number: %w", err)
	}
	return val * mult, nil
}

// Pressure is a pressure in millibars.
type Pressure float64

// UnmarshalYAML implements yaml.Unmarshaler. Bare numbers are millibars.
func (p *Pressure) UnmarshalYAML(value *yaml.Node) error {
	var f float64
	if err := value.Decode(&f); err == nil {
		*p = Pressure(f)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	mb, err := ParsePressure(s)
	if err != nil {
		return err
	}
	*p = Pressure(mb)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (p Pressure) MarshalYAML() (interface{}, error) {
	return fmt.Sprintf("%.2fmb", float64(p)), nil
}

// ParsePressure parses a pressure in mb, hpa or inhg into millibars.
// Unitless values are millibars.
func ParsePressure(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty pressure")
	}

	mult := 1.0
	numStr := s
	switch {
	case strings.HasSuffix(s, "inhg"):
		mult, numStr = 1/baro.MillibarsToInHg, strings.TrimSuffix(s, "inhg")
	case strings.HasSuffix(s, "hpa"):
		numStr = strings.TrimSuffix(s, "hpa")
	case strings.HasSuffix(s, "mb"):
		numStr = strings.TrimSuffix(s, "mb")
	}

	val, err := strconv.ParseFloat(strings.TrimSpace(numStr), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid pressure number: %w", err)
	}
	if !baro.ValidPressure(val) {
		return 0, fmt.Errorf("pressure must be finite and positive: %s", s)
	}
	return val * mult, nil
}
