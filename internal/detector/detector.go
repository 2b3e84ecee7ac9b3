// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package detector

import (
	"time"

	"github.com/relabs-tech/kick_computer/internal/kick"
)

// historySize is how many recent samples the rising-edge check can see.
const historySize = 3

// Config tunes the impact detection policy.
//
// With RequireRisingEdge set, a sample only fires when it is strictly above
// its predecessor, so sustained static pressure (a foot resting on the pad)
// never triggers; only a dynamic impact does. Without it the detector is a
// plain threshold crossing gated by the cooldown.
type Config struct {
	// ThresholdKg is the minimum weight to register a kick. Default 4.0.
	ThresholdKg float64
	// Cooldown is the minimum time between two accepted detections.
	// Default 2s.
	Cooldown time.Duration
	// RequireRisingEdge enables the peak-comparison policy. NOTE: the zero
	// value disables it; use DefaultConfig for the recommended policy.
	RequireRisingEdge bool
}

// DefaultConfig is the recommended detection policy.
func DefaultConfig() Config {
	return Config{
		ThresholdKg:       4.0,
		Cooldown:          2 * time.Second,
		RequireRisingEdge: true,
	}
}

// Detector turns a stream of weight samples into discrete impact events.
// It owns all detection state (sample history, cooldown clock); there are
// no package-level globals. Not safe for concurrent use; the polling loop
// is the single caller.
type Detector struct {
	cfg      Config
	history  [historySize]float64
	count    int
	lastFire time.Time
}

func New(cfg Config) *Detector {
	if cfg.ThresholdKg <= 0 {
		cfg.ThresholdKg = 4.0
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 2 * time.Second
	}
	return &Detector{cfg: cfg}
}

// Offer feeds one sample into the detector. When the sample fires, the
// returned event carries that sample's weight and force verbatim, so the
// classified value is exactly the reading that triggered detection.
//
// Time is taken from the sample's own timestamp, which keeps the cooldown
// deterministic under replayed sequences.
func (d *Detector) Offer(s kick.ForceSample) (kick.ImpactEvent, bool) {
	// Slide the history window.
	copy(d.history[:], d.history[1:])
	d.history[historySize-1] = s.WeightKg
	if d.count < historySize {
		d.count++
	}

	if d.count < 2 {
		return kick.ImpactEvent{}, false
	}

	if !d.lastFire.IsZero() && s.Timestamp.Sub(d.lastFire) < d.cfg.Cooldown {
		return kick.ImpactEvent{}, false
	}

	if s.WeightKg < d.cfg.ThresholdKg {
		return kick.ImpactEvent{}, false
	}

	if d.cfg.RequireRisingEdge && s.WeightKg <= d.history[historySize-2] {
		return kick.ImpactEvent{}, false
	}

	d.lastFire = s.Timestamp
	return kick.ImpactEvent{
		PeakWeightKg:     s.WeightKg,
		PeakForceNewtons: s.ForceNewtons,
		DetectedAt:       s.Timestamp,
	}, true
}

// LastFire reports when the detector last fired (zero if never). Upload and
// enrichment outcomes never feed back into this clock.
func (d *Detector) LastFire() time.Time {
	return d.lastFire
}
