// Package units converts magnitudes between weight units and between distance units.
package units

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Unit names a weight or distance unit as stored on max-weight records.
type Unit string

const (
	Pounds     Unit = "pounds"
	Kilos      Unit = "kilos"
	DistanceM  Unit = "distance-m"
	DistanceFt Unit = "distance-ft"
	DistanceYd Unit = "distance-yd"
	DistanceMi Unit = "distance-mi"
)

const kilosPerPound = 0.453592

// metersPer holds the size of each distance unit in meters, the pivot unit.
var metersPer = map[Unit]float64{
	DistanceM:  1,
	DistanceFt: 0.3048,
	DistanceYd: 0.9144,
	DistanceMi: 1609.34,
}

var suffixes = map[Unit]string{
	Pounds:     "lbs",
	Kilos:      "kg",
	DistanceM:  "m",
	DistanceFt: "ft",
	DistanceYd: "yd",
	DistanceMi: "mi",
}

// nonNumericRe matches everything that cannot be part of a plain decimal.
var nonNumericRe = regexp.MustCompile(`[^0-9.]`)

// Parse validates a unit name.
func Parse(s string) (Unit, error) {
	u := Unit(s)
	if _, ok := suffixes[u]; !ok {
		return "", fmt.Errorf("unknown unit %q", s)
	}
	return u, nil
}

// IsWeight reports whether u is pounds or kilos.
func (u Unit) IsWeight() bool {
	return u == Pounds || u == Kilos
}

// IsDistance reports whether u is one of the distance units.
func (u Unit) IsDistance() bool {
	_, ok := metersPer[u]
	return ok
}

// Suffix returns the short display label, e.g. "lbs" or "kg".
func (u Unit) Suffix() string {
	return suffixes[u]
}

// ExtractNumericWeight pulls a number out of free-form text such as "135 lbs" or "75%".
// Every character except digits and '.' is dropped; unparseable input yields 0.
func ExtractNumericWeight(text string) float64 {
	cleaned := nonNumericRe.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ConvertWeight converts value from one unit to another within the same family.
// Converting between the weight and distance families, or to or from an unknown
// unit, returns 0 to signal incompatible units.
func ConvertWeight(value float64, from, to Unit) float64 {
	switch {
	case from.IsWeight() && to.IsWeight():
		if from == to {
			return value
		}
		if from == Pounds {
			return value * kilosPerPound
		}
		return value / kilosPerPound
	case from.IsDistance() && to.IsDistance():
		if from == to {
			return value
		}
		return value * metersPer[from] / metersPer[to]
	default:
		return 0
	}
}

// RoundToIncrement rounds value to the nearest multiple of increment.
func RoundToIncrement(value, increment float64) float64 {
	if increment <= 0 {
		return value
	}
	return math.Round(value/increment) * increment
}
