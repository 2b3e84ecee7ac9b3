// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package assembler

import (
	"context"
	"log"
	"time"

	"github.com/relabs-tech/kick_computer/internal/classify"
	"github.com/relabs-tech/kick_computer/internal/fsr"
	"github.com/relabs-tech/kick_computer/internal/kick"
)

// Timestamp layouts for the datastore: microsecond ISO-8601, the local one
// without a UTC offset.
const (
	layoutUTC   = "2006-01-02T15:04:05.000000-07:00"
	layoutLocal = "2006-01-02T15:04:05.000000"
)

// SpeedReader is the slice of speed.Source the assembler needs.
type SpeedReader interface {
	Read(ctx context.Context) (float64, error)
}

// EdgeReader reads the FSR channel array once.
type EdgeReader interface {
	Read() ([]fsr.Reading, error)
}

// Assembler enriches a detected impact into a complete kick record: speed
// from the wireless peripheral, worst-case edge pressure from the FSRs, and
// assembly-time timestamps. Auxiliary-sensor failures degrade to defaults;
// the record is always produced.
type Assembler struct {
	speed        SpeedReader
	edges        EdgeReader
	speedTimeout time.Duration
	// edge pressure at or above this percentage classifies as lower accuracy
	edgeThreshold float64

	now func() time.Time // test hook
}

func New(speed SpeedReader, edges EdgeReader, speedTimeout time.Duration, edgeThreshold float64) *Assembler {
	if speedTimeout <= 0 {
		speedTimeout = 1500 * time.Millisecond
	}
	if edgeThreshold <= 0 {
		edgeThreshold = 50.0
	}
	return &Assembler{
		speed:         speed,
		edges:         edges,
		speedTimeout:  speedTimeout,
		edgeThreshold: edgeThreshold,
		now:           time.Now,
	}
}

// Assemble builds the record for one impact. The peak force is taken from
// the event (the exact sample that fired), never re-read.
func (a *Assembler) Assemble(ctx context.Context, ev kick.ImpactEvent) kick.Record {
	speed := 0.0
	if a.speed != nil {
		readCtx, cancel := context.WithTimeout(ctx, a.speedTimeout)
		v, err := a.speed.Read(readCtx)
		cancel()
		if err != nil {
			log.Printf("assembler: speed read failed, using 0.0: %v", err)
		} else {
			speed = v
		}
	}

	maxPercent := 0.0
	if a.edges != nil {
		readings, err := a.edges.Read()
		if err != nil {
			log.Printf("assembler: FSR read failed, using 0%%: %v", err)
		} else {
			maxPercent = fsr.MaxPercent(readings)
		}
	}

	now := a.now()
	return kick.Record{
		ForceNewtons:         ev.PeakForceNewtons,
		EdgePressurePercent:  maxPercent,
		Accuracy:             classify.AccuracyOf(maxPercent, a.edgeThreshold).String(),
		SpeedMetersPerSecond: speed,
		TimestampUTC:         now.UTC().Format(layoutUTC),
		TimestampLocal:       now.Format(layoutLocal),
		State:                kick.StateDetected,
	}
}
