// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/hx711"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/kick_computer/internal/calibration"
	"github.com/relabs-tech/kick_computer/internal/kick"
)

// conversionTimeout bounds a single HX711 conversion. The chip runs at 10 or
// 80 samples per second; half a second means several missed conversions.
const conversionTimeout = 500 * time.Millisecond

// LoadCell reads weight from an HX711 amplifier bit-banged over two GPIO
// lines. Raw counts are turned into grams by the stored calibration.
type LoadCell struct {
	dev      *hx711.Dev
	params   calibration.Params
	readings int
}

// NewLoadCell claims the HX711 data and clock pins. readings is how many raw
// conversions are averaged per Read call; the detector uses a small count to
// keep the sample cadence fast at the cost of a little noise.
func NewLoadCell(doutPin, sckPin string, readings int) (*LoadCell, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("load cell: periph host init: %w", err)
	}

	dout := gpioreg.ByName(doutPin)
	if dout == nil {
		return nil, fmt.Errorf("load cell: data pin %q not found", doutPin)
	}
	sck := gpioreg.ByName(sckPin)
	if sck == nil {
		return nil, fmt.Errorf("load cell: clock pin %q not found", sckPin)
	}

	dev, err := hx711.New(sck, dout)
	if err != nil {
		return nil, fmt.Errorf("load cell: hx711 init: %w", err)
	}

	if readings < 1 {
		readings = 1
	}
	log.Printf("load cell: HX711 on dout=%s sck=%s (%d readings per sample)", doutPin, sckPin, readings)
	return &LoadCell{dev: dev, readings: readings}, nil
}

// SetCalibration installs the offset/scale pair. Must be called before Read;
// the calibration binary uses the cell uncalibrated via ReadRaw only.
func (l *LoadCell) SetCalibration(p calibration.Params) {
	l.params = p
}

// ReadRaw returns n raw conversions. Satisfies calibration.ReadingProvider.
func (l *LoadCell) ReadRaw(n int) ([]float64, error) {
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		raw, err := l.dev.ReadTimeout(conversionTimeout)
		if err != nil {
			return nil, fmt.Errorf("load cell: raw read %d/%d: %w", i+1, n, err)
		}
		out = append(out, float64(raw))
	}
	return out, nil
}

// Read averages the configured number of raw conversions and returns one
// calibrated sample stamped with the current time.
func (l *LoadCell) Read() (kick.ForceSample, error) {
	if !l.params.Valid() {
		return kick.ForceSample{}, fmt.Errorf("load cell: no calibration set")
	}

	var sum float64
	for i := 0; i < l.readings; i++ {
		raw, err := l.dev.ReadTimeout(conversionTimeout)
		if err != nil {
			return kick.ForceSample{}, fmt.Errorf("load cell: read: %w", err)
		}
		sum += float64(raw)
	}
	grams := l.params.WeightGrams(sum / float64(l.readings))
	weightKg := grams / 1000.0

	return kick.ForceSample{
		WeightKg:     weightKg,
		ForceNewtons: kick.Newtons(weightKg),
		Timestamp:    time.Now(),
	}, nil
}

// Close powers the HX711 down and releases the clock line.
func (l *LoadCell) Close() error {
	return l.dev.Halt()
}
