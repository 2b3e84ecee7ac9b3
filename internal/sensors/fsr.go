// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/kick_computer/internal/fsr"
)

var adsChannels = map[int]ads1x15.Channel{
	0: ads1x15.Channel0,
	1: ads1x15.Channel1,
	2: ads1x15.Channel2,
	3: ads1x15.Channel3,
}

// FSRArray reads the force-sensitive resistors through an ADS1015 ADC on the
// I2C bus. Channel order is fixed by wiring; the min/max bounds come from
// deployment calibration, not from the chip.
type FSRArray struct {
	bus      closerBus
	pins     []analog.PinADC
	channels []int
	names    []string
	min, max float64
}

type closerBus interface {
	Close() error
}

// NewFSRArray opens the I2C bus (empty busName selects the first available)
// and prepares one ADC pin per configured channel.
func NewFSRArray(busName string, addr uint16, channels []int, names []string, min, max float64) (*FSRArray, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("fsr: periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("fsr: open I2C bus %q: %w", busName, err)
	}

	opts := ads1x15.DefaultOpts
	if addr != 0 {
		opts.I2cAddress = addr
	}
	adc, err := ads1x15.NewADS1015(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("fsr: ads1015 init: %w", err)
	}

	a := &FSRArray{
		bus:      bus,
		channels: channels,
		names:    names,
		min:      min,
		max:      max,
	}
	for _, ch := range channels {
		adsCh, ok := adsChannels[ch]
		if !ok {
			bus.Close()
			return nil, fmt.Errorf("fsr: no such ADC channel %d", ch)
		}
		pin, err := adc.PinForChannel(adsCh, 3300*physic.MilliVolt, 1600*physic.Hertz, ads1x15.SaveEnergy)
		if err != nil {
			bus.Close()
			return nil, fmt.Errorf("fsr: channel %d: %w", ch, err)
		}
		a.pins = append(a.pins, pin)
	}

	log.Printf("fsr: ADS1015 at 0x%02X, channels %v (bounds %g..%g)", opts.I2cAddress, channels, min, max)
	return a, nil
}

// Read samples every configured channel once.
func (a *FSRArray) Read() ([]fsr.Reading, error) {
	readings := make([]fsr.Reading, 0, len(a.pins))
	for i, pin := range a.pins {
		sample, err := pin.Read()
		if err != nil {
			return nil, fmt.Errorf("fsr: channel %d read: %w", a.channels[i], err)
		}
		name := ""
		if i < len(a.names) {
			name = a.names[i]
		}
		readings = append(readings, fsr.Reading{
			Channel: a.channels[i],
			Name:    name,
			Raw:     int(sample.Raw),
			Percent: fsr.Percent(float64(sample.Raw), a.min, a.max),
		})
	}
	return readings, nil
}

// Close halts the ADC pins and releases the bus.
func (a *FSRArray) Close() error {
	for _, pin := range a.pins {
		if err := pin.Halt(); err != nil {
			log.Printf("fsr: halt %s: %v", pin.Name(), err)
		}
	}
	return a.bus.Close()
}
