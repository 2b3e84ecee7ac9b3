// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package fsr

// Reading is one force-sensitive-resistor sample: the raw ADC counts plus
// the normalized pressure percentage for that channel.
type Reading struct {
	Channel int     `json:"channel"`
	Name    string  `json:"name,omitempty"`
	Raw     int     `json:"raw"`
	Percent float64 `json:"percent"`
}

// Percent converts a raw ADC reading into a 0-100% pressure value given the
// calibration bounds. A degenerate calibration (max <= min) yields 0. The raw
// value is clamped into [min, max] before rescaling, and the result is clamped
// once more against floating-point drift.
func Percent(raw, min, max float64) float64 {
	if max <= min {
		return 0
	}
	if raw < min {
		raw = min
	}
	if raw > max {
		raw = max
	}
	percent := (raw - min) / (max - min) * 100
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// MaxPercent returns the highest pressure percentage among the readings, the
// worst-case edge pressure used for accuracy classification. Zero for an
// empty slice.
func MaxPercent(readings []Reading) float64 {
	var max float64
	for _, r := range readings {
		if r.Percent > max {
			max = r.Percent
		}
	}
	return max
}
