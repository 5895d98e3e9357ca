package fact

import (
	"fmt"
	"strings"
)

type DistanceUnit string

const (
	Meters     DistanceUnit = "m"
	Kilometers DistanceUnit = "km"
	Yards      DistanceUnit = "yd"
)

type SpeedUnit string

const (
	KilometersPerHour SpeedUnit = "kmh"
	MetersPerSecond   SpeedUnit = "ms"
	MilesPerHour      SpeedUnit = "mph"
)

func ParseDistanceUnit(v string) (DistanceUnit, error) {
	switch DistanceUnit(strings.ToLower(strings.TrimSpace(v))) {
	case "", Meters:
		return Meters, nil
	case Kilometers:
		return Kilometers, nil
	case Yards:
		return Yards, nil
	default:
		return "", fmt.Errorf("unknown distance unit %q: valid values are m, km, yd", v)
	}
}

func ParseSpeedUnit(v string) (SpeedUnit, error) {
	switch SpeedUnit(strings.ToLower(strings.TrimSpace(v))) {
	case "", KilometersPerHour:
		return KilometersPerHour, nil
	case MetersPerSecond:
		return MetersPerSecond, nil
	case MilesPerHour:
		return MilesPerHour, nil
	default:
		return "", fmt.Errorf("unknown speed unit %q: valid values are kmh, ms, mph", v)
	}
}

// ToMeters converts a distance. Null stays null.
func (u DistanceUnit) ToMeters(v *float64) *float64 {
	if v == nil {
		return nil
	}
	switch u {
	case Kilometers:
		return Float(*v * 1000)
	case Yards:
		return Float(*v * 0.9144)
	default:
		return Float(*v)
	}
}

// ToKmh converts a speed. Null stays null.
func (u SpeedUnit) ToKmh(v *float64) *float64 {
	if v == nil {
		return nil
	}
	switch u {
	case MetersPerSecond:
		return Float(*v * 3.6)
	case MilesPerHour:
		return Float(*v * 1.609344)
	default:
		return Float(*v)
	}
}

func Float(v float64) *float64 {
	return &v
}

// Ratio returns num/den, or null when either side is null or den is not positive.
func Ratio(num, den *float64) *float64 {
	if num == nil || den == nil || *den <= 0 {
		return nil
	}
	return Float(*num / *den)
}

// Difference returns a-b, or null when either side is null.
func Difference(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return Float(*a - *b)
}
