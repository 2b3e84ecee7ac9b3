// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// Sample counts for the two calibration phases. More samples under the
	// known weight because that mean sets the scale for every later reading.
	zeroSampleCount   = 50
	loadedSampleCount = 100
)

// Params maps raw load-cell counts to physical weight:
//
//	grams = (raw - Offset) / ScaleRatio
type Params struct {
	Offset     float64 `json:"offset"`
	ScaleRatio float64 `json:"scale_ratio"`
}

// WeightGrams applies the calibration to a raw reading.
func (p Params) WeightGrams(raw float64) float64 {
	return (raw - p.Offset) / p.ScaleRatio
}

// Valid reports whether the parameters are usable. A zero scale ratio would
// divide every reading into infinity.
func (p Params) Valid() bool {
	return p.ScaleRatio != 0
}

// ReadingProvider produces n raw load-cell readings on demand. Injected so
// the calibration math is testable without hardware or operator prompts.
type ReadingProvider func(n int) ([]float64, error)

// Calibrate runs the two-point procedure: the zero provider samples the
// unloaded cell for the offset, the weighed provider samples it under a known
// weight for the scale ratio.
func Calibrate(zero, weighed ReadingProvider, knownWeightGrams float64) (Params, error) {
	if knownWeightGrams <= 0 {
		return Params{}, fmt.Errorf("known weight must be positive, got %g g", knownWeightGrams)
	}

	zeroReadings, err := zero(zeroSampleCount)
	if err != nil {
		return Params{}, fmt.Errorf("zero-load readings: %w", err)
	}
	offset, err := mean(zeroReadings)
	if err != nil {
		return Params{}, fmt.Errorf("zero-load readings: %w", err)
	}

	loadedReadings, err := weighed(loadedSampleCount)
	if err != nil {
		return Params{}, fmt.Errorf("known-weight readings: %w", err)
	}
	loadedMean, err := mean(loadedReadings)
	if err != nil {
		return Params{}, fmt.Errorf("known-weight readings: %w", err)
	}

	p := Params{
		Offset:     offset,
		ScaleRatio: (loadedMean - offset) / knownWeightGrams,
	}
	if !p.Valid() {
		return Params{}, fmt.Errorf("known-weight reading equals offset (%.1f); is the weight on the cell?", offset)
	}
	return p, nil
}

func mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("no readings")
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// Store persists calibration parameters as a single JSON record on disk.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted parameters. A missing, unreadable, or corrupt
// file is reported as absent, not as an error: the caller's remedy is the
// same either way, run a fresh calibration.
func (s *Store) Load() (Params, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Params{}, false
	}
	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return Params{}, false
	}
	if !p.Valid() {
		return Params{}, false
	}
	return p, true
}

// Save rewrites the whole record atomically: write a sibling temp file, then
// rename over the old one.
func (s *Store) Save(p Params) error {
	if !p.Valid() {
		return fmt.Errorf("refusing to save calibration with zero scale ratio")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal calibration: %w", err)
	}
	tmp := s.path + ".tmp"
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create calibration dir: %w", err)
		}
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write calibration: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace calibration file: %w", err)
	}
	return nil
}
