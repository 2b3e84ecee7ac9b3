// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package speed

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"tinygo.org/x/bluetooth"
)

// BLE reads the speed characteristic of the KickMeter peripheral. The device
// is discovered by advertised-name substring match; the characteristic is
// identified by its fixed UUID. One BLE value covers one connection: after a
// disconnect the caller drops it and dials a fresh one, which redoes the full
// scan rather than re-reading a stale handle.
type BLE struct {
	adapter   *bluetooth.Adapter
	name      string
	charUUID  bluetooth.UUID
	device    bluetooth.Device
	char      bluetooth.DeviceCharacteristic
	connected atomic.Bool
	haveDev   bool
}

// NewBLE enables the default adapter and registers the liveness handler.
// It does not connect; call Connect.
func NewBLE(deviceName, charUUID string) (*BLE, error) {
	uuid, err := bluetooth.ParseUUID(charUUID)
	if err != nil {
		return nil, fmt.Errorf("ble: characteristic UUID %q: %w", charUUID, err)
	}

	b := &BLE{
		adapter:  bluetooth.DefaultAdapter,
		name:     deviceName,
		charUUID: uuid,
	}
	if err := b.adapter.Enable(); err != nil {
		return nil, fmt.Errorf("ble: enable adapter: %w", err)
	}
	b.adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		b.connected.Store(connected)
		if !connected {
			log.Printf("ble: link to %s lost", b.name)
		}
	})
	return b, nil
}

// Connect scans for the peripheral, connects, and resolves the speed
// characteristic. The scan is bounded by ctx; cancel or time it out to give
// up on this attempt.
func (b *BLE) Connect(ctx context.Context) error {
	result, err := b.scan(ctx)
	if err != nil {
		return err
	}
	log.Printf("ble: found %q at %s", result.LocalName(), result.Address.String())

	device, err := b.adapter.Connect(result.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return fmt.Errorf("ble: connect %s: %w", result.Address.String(), err)
	}
	b.device = device
	b.haveDev = true
	b.connected.Store(true)

	services, err := device.DiscoverServices(nil)
	if err != nil {
		b.Close()
		return fmt.Errorf("ble: discover services: %w", err)
	}
	for _, svc := range services {
		chars, err := svc.DiscoverCharacteristics([]bluetooth.UUID{b.charUUID})
		if err != nil || len(chars) == 0 {
			continue
		}
		b.char = chars[0]
		log.Printf("ble: connected, speed characteristic %s ready", b.charUUID.String())
		return nil
	}

	b.Close()
	return fmt.Errorf("ble: characteristic %s not found on %q", b.charUUID.String(), b.name)
}

func (b *BLE) scan(ctx context.Context) (bluetooth.ScanResult, error) {
	found := make(chan bluetooth.ScanResult, 1)
	scanErr := make(chan error, 1)

	go func() {
		err := b.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			if strings.Contains(result.LocalName(), b.name) {
				adapter.StopScan()
				select {
				case found <- result:
				default:
				}
			}
		})
		if err != nil {
			scanErr <- err
		}
	}()

	select {
	case result := <-found:
		return result, nil
	case err := <-scanErr:
		return bluetooth.ScanResult{}, fmt.Errorf("ble: scan: %w", err)
	case <-ctx.Done():
		b.adapter.StopScan()
		return bluetooth.ScanResult{}, fmt.Errorf("ble: %q not found: %w", b.name, ctx.Err())
	}
}

// Read fetches and decodes one characteristic value. The GATT read itself
// has no deadline support, so it runs on a helper goroutine and a late
// result is discarded once ctx expires.
func (b *BLE) Read(ctx context.Context) (float64, error) {
	if !b.Alive() {
		return 0, fmt.Errorf("ble: not connected")
	}

	type readResult struct {
		payload []byte
		err     error
	}
	done := make(chan readResult, 1)
	go func() {
		buf := make([]byte, 64)
		n, err := b.char.Read(buf)
		done <- readResult{payload: buf[:n], err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return 0, fmt.Errorf("ble: characteristic read: %w", res.err)
		}
		return Decode(res.payload)
	case <-ctx.Done():
		return 0, fmt.Errorf("ble: characteristic read: %w", ctx.Err())
	}
}

// Alive reports whether the peripheral link is still up.
func (b *BLE) Alive() bool {
	return b.connected.Load()
}

// Close drops the connection if one exists.
func (b *BLE) Close() error {
	b.connected.Store(false)
	if !b.haveDev {
		return nil
	}
	b.haveDev = false
	return b.device.Disconnect()
}
