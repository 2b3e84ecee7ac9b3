// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// ./cmd/calibration/main.go
//
// Guided two-point calibration for the HX711 load cell.
//  1. Zero point: samples the unloaded cell to find the raw offset.
//  2. Scale: samples the cell under an operator-supplied known weight to
//     find the counts-per-gram ratio.
//
// Output:
//
//	Writes the offset/scale_ratio JSON file the detector loads at startup.
//
// Run:
//
//	go run ./cmd/calibration
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/relabs-tech/kick_computer/internal/calibration"
	"github.com/relabs-tech/kick_computer/internal/config"
	"github.com/relabs-tech/kick_computer/internal/sensors"
)

func main() {
	configPath := flag.String("config", "./kick_config.txt", "path to configuration file")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	log.Println("starting load cell calibration")

	loadCell, err := sensors.NewLoadCell(cfg.HX711DoutPin, cfg.HX711SckPin, 1)
	if err != nil {
		log.Fatalf("load cell init: %v", err)
	}
	defer loadCell.Close()

	stdin := bufio.NewReader(os.Stdin)

	fmt.Print("Enter the known weight (grams) you will place in step 2 and press Enter: ")
	line, err := stdin.ReadString('\n')
	if err != nil {
		log.Fatalf("stdin: %v", err)
	}
	grams, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil {
		log.Fatalf("not a weight in grams: %q", strings.TrimSpace(line))
	}

	// Each provider prompts before it samples, so the operator moves the
	// weight at the right moments.
	zero := func(n int) ([]float64, error) {
		fmt.Println("Step 1: remove all weight from the sensor and press Enter.")
		if _, err := stdin.ReadString('\n'); err != nil {
			return nil, err
		}
		fmt.Printf("Sampling zero point (%d readings)...\n", n)
		return loadCell.ReadRaw(n)
	}
	weighed := func(n int) ([]float64, error) {
		fmt.Printf("Step 2: place the %.0f g weight on the sensor and press Enter.\n", grams)
		if _, err := stdin.ReadString('\n'); err != nil {
			return nil, err
		}
		fmt.Printf("Sampling under load (%d readings)...\n", n)
		return loadCell.ReadRaw(n)
	}

	params, err := calibration.Calibrate(zero, weighed, grams)
	if err != nil {
		log.Fatalf("calibration failed: %v", err)
	}

	store := calibration.NewStore(cfg.CalibrationFile)
	if err := store.Save(params); err != nil {
		log.Fatalf("saving calibration: %v", err)
	}

	log.Printf("calibration saved to %s (offset=%.1f scale_ratio=%.4f)",
		cfg.CalibrationFile, params.Offset, params.ScaleRatio)
}
