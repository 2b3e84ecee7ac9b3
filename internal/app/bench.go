package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/kick_computer/internal/assembler"
	"github.com/relabs-tech/kick_computer/internal/config"
	"github.com/relabs-tech/kick_computer/internal/detector"
	"github.com/relabs-tech/kick_computer/internal/report"
	"github.com/relabs-tech/kick_computer/internal/sensors"
	"github.com/relabs-tech/kick_computer/internal/speed"
)

// RunBench drives the real pipeline with scripted mock sensors: no GPIO, no
// ADC, no BLE. Useful for soak-testing detection tuning and the fan-out path
// on a workstation.
func RunBench() error {
	cfg := config.Get()

	loadCell := sensors.NewMockLoadCell(nil)
	fsrArray := &sensors.MockFSRArray{Percents: []float64{12.5, 61.0, 4.2}}

	pub, err := report.NewPublisher(cfg.MQTTBroker, cfg.MQTTClientIDDetector, cfg.TopicKickEvents, cfg.TopicWeight)
	if err != nil {
		log.Printf("bench: MQTT unavailable, continuing without fan-out: %v", err)
		pub = nil
	}
	defer pub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := &pipeline{
		weights: loadCell,
		det: detector.New(detector.Config{
			ThresholdKg:       cfg.KickThresholdKg,
			Cooldown:          time.Duration(cfg.KickCooldownSec * float64(time.Second)),
			RequireRisingEdge: cfg.RequireRisingEdge,
		}),
		asm: assembler.New(speed.Fixed{V: 7.4}, fsrArray,
			time.Duration(cfg.SpeedReadTimeout)*time.Millisecond, cfg.WarningThreshold),
		pub:      pub,
		uploader: report.NewUploader(cfg.UploadURL, time.Duration(cfg.UploadTimeoutSec)*time.Second),
		interval: time.Duration(cfg.SampleIntervalMS) * time.Millisecond,
	}

	log.Println("bench: running pipeline on mock sensors, Ctrl+C to stop")
	if err := p.run(ctx); ctx.Err() == nil {
		return err
	}
	log.Println("bench: shutting down")
	return nil
}
