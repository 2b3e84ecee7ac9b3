// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/kick_computer/internal/assembler"
	"github.com/relabs-tech/kick_computer/internal/calibration"
	"github.com/relabs-tech/kick_computer/internal/classify"
	"github.com/relabs-tech/kick_computer/internal/config"
	"github.com/relabs-tech/kick_computer/internal/detector"
	"github.com/relabs-tech/kick_computer/internal/kick"
	"github.com/relabs-tech/kick_computer/internal/report"
	"github.com/relabs-tech/kick_computer/internal/sensors"
	"github.com/relabs-tech/kick_computer/internal/speed"
)

// pipeline wires one weight source into detection, enrichment, fan-out and
// upload. The detector and bench entrypoints both run it; only the sensor
// construction differs.
type pipeline struct {
	weights  sensors.WeightSource
	det      *detector.Detector
	asm      *assembler.Assembler
	pub      *report.Publisher
	uploader *report.Uploader
	interval time.Duration

	// alive is polled every cycle; returning false ends this run so the
	// outer loop can re-establish the wireless link. Nil means always-on.
	alive func() bool
}

// run drives the polling loop until the context is cancelled or the alive
// check fails. Transient load-cell errors degrade to a zero sample for that
// cycle; nothing in here terminates the process.
func (p *pipeline) run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if p.alive != nil && !p.alive() {
			return fmt.Errorf("speed link lost")
		}

		sample, err := p.weights.Read()
		if err != nil {
			log.Printf("detector: load cell read error: %v", err)
			sample = kick.ForceSample{Timestamp: time.Now()}
		}
		p.pub.PublishWeight(sample)

		ev, fired := p.det.Offer(sample)
		if !fired {
			continue
		}

		log.Printf("detector: kick detected (weight %.2f kg, %s)",
			ev.PeakWeightKg, classify.StrengthOf(ev.PeakWeightKg))

		// Enrichment runs inline: the cooldown is far longer than a speed
		// read plus an FSR sweep, so two events never interleave here.
		rec := p.asm.Assemble(ctx, ev)
		log.Printf("detector:   force=%.2fN edge=%.1f%% accuracy=%q speed=%.2fm/s",
			rec.ForceNewtons, rec.EdgePressurePercent, rec.Accuracy, rec.SpeedMetersPerSecond)

		p.pub.PublishKick(rec)

		// Upload off the polling loop; the outcome is logged and dropped.
		go func(rec kick.Record) {
			res := p.uploader.Send(ctx, rec)
			if res.OK() {
				log.Printf("detector: record uploaded")
			} else {
				log.Printf("detector: upload failed: %s", res)
			}
		}(rec)
	}
}

// RunDetector is the main sensor-fusion loop: load cell and FSRs polled on a
// fixed cadence, speed pulled from the KickMeter peripheral per event, one
// record per kick shipped to the datastore and fanned out over MQTT.
func RunDetector() error {
	cfg := config.Get()

	store := calibration.NewStore(cfg.CalibrationFile)
	params, ok := store.Load()
	if !ok {
		return fmt.Errorf("no usable calibration at %s; run ./calibration first", cfg.CalibrationFile)
	}
	log.Printf("detector: calibration loaded (offset=%.1f scale=%.4f)", params.Offset, params.ScaleRatio)

	loadCell, err := sensors.NewLoadCell(cfg.HX711DoutPin, cfg.HX711SckPin, cfg.LoadCellReadings)
	if err != nil {
		return err
	}
	defer loadCell.Close()
	loadCell.SetCalibration(params)

	fsrArray, err := sensors.NewFSRArray(cfg.ADCI2CBus, cfg.ADCI2CAddr, cfg.FSRChannels, cfg.FSRNames, cfg.FSRMin, cfg.FSRMax)
	if err != nil {
		return err
	}
	defer fsrArray.Close()

	// MQTT fan-out is optional; detection works without a broker.
	pub, err := report.NewPublisher(cfg.MQTTBroker, cfg.MQTTClientIDDetector, cfg.TopicKickEvents, cfg.TopicWeight)
	if err != nil {
		log.Printf("detector: MQTT unavailable, continuing without fan-out: %v", err)
		pub = nil
	}
	defer pub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	uploader := report.NewUploader(cfg.UploadURL, time.Duration(cfg.UploadTimeoutSec)*time.Second)
	det := detector.New(detector.Config{
		ThresholdKg:       cfg.KickThresholdKg,
		Cooldown:          time.Duration(cfg.KickCooldownSec * float64(time.Second)),
		RequireRisingEdge: cfg.RequireRisingEdge,
	})
	log.Printf("detector: monitoring for kicks (threshold %.1f kg, cooldown %.1fs, rising edge %v)",
		cfg.KickThresholdKg, cfg.KickCooldownSec, cfg.RequireRisingEdge)

	newPipeline := func(src speed.Source, alive func() bool) *pipeline {
		var speedReader assembler.SpeedReader
		if src != nil {
			speedReader = src
		}
		return &pipeline{
			weights:  loadCell,
			det:      det,
			asm:      assembler.New(speedReader, fsrArray, time.Duration(cfg.SpeedReadTimeout)*time.Millisecond, cfg.WarningThreshold),
			pub:      pub,
			uploader: uploader,
			interval: time.Duration(cfg.SampleIntervalMS) * time.Millisecond,
			alive:    alive,
		}
	}

	backoff := time.Duration(cfg.ReconnectDelaySec) * time.Second

	switch cfg.SpeedSource {
	case "ble":
		return runWithBLE(ctx, cfg, newPipeline, backoff)

	case "serial":
		// Serial link: reopen on failure with the same backoff as BLE.
		for ctx.Err() == nil {
			src, err := speed.NewSerial(cfg.SerialPort, uint(cfg.SerialBaudRate))
			if err != nil {
				log.Printf("detector: serial speed source: %v; retrying in %s", err, backoff)
				sleep(ctx, backoff)
				continue
			}
			if err := newPipeline(src, src.Alive).run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("detector: polling loop ended: %v; reconnecting in %s", err, backoff)
			}
			src.Close()
			sleep(ctx, backoff)
		}
		return nil

	default: // "none"
		err := newPipeline(nil, nil).run(ctx)
		if ctx.Err() != nil {
			log.Println("detector: shutting down")
			return nil
		}
		return err
	}
}

// runWithBLE is the outer reconnect loop: discover the peripheral, run the
// polling loop on the live link, and on any loss start over with a full
// rediscovery. Retries forever until interrupted.
func runWithBLE(ctx context.Context, cfg *config.Config, newPipeline func(speed.Source, func() bool) *pipeline, backoff time.Duration) error {
	ble, err := speed.NewBLE(cfg.BLEDeviceName, cfg.BLECharUUID)
	if err != nil {
		return err
	}

	for ctx.Err() == nil {
		log.Printf("detector: scanning for %q...", cfg.BLEDeviceName)
		scanCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := ble.Connect(scanCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("detector: %v; retrying in %s", err, backoff)
			sleep(ctx, backoff)
			continue
		}

		if err := newPipeline(ble, ble.Alive).run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("detector: polling loop ended: %v; reconnecting in %s", err, backoff)
		}
		ble.Close()
		sleep(ctx, backoff)
	}

	log.Println("detector: shutting down")
	ble.Close()
	return nil
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
