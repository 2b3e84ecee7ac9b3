// Package speed obtains the kick speed reported by the wireless KickMeter
// peripheral (or a stand-in for bench rigs).
package speed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Source produces the latest speed in meters per second. Read must honor the
// context deadline; a slow or dead peripheral degrades to an error, never to
// an unbounded wait.
type Source interface {
	Read(ctx context.Context) (float64, error)
	// Alive reports whether the underlying link is still up. The polling
	// loop checks this each cycle and exits so the outer loop can
	// rediscover the peripheral.
	Alive() bool
	Close() error
}

// Decode parses the peripheral's characteristic payload: a UTF-8 JSON object
// with at least a numeric "speed" field.
func Decode(payload []byte) (float64, error) {
	payload = bytes.TrimSpace(payload)
	var msg struct {
		Speed float64 `json:"speed"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		return 0, fmt.Errorf("speed payload %q: %w", payload, err)
	}
	return msg.Speed, nil
}

// Fixed is a Source that always reports the same speed. Bench use.
type Fixed struct {
	V float64
}

func (f Fixed) Read(ctx context.Context) (float64, error) { return f.V, nil }
func (f Fixed) Alive() bool                               { return true }
func (f Fixed) Close() error                              { return nil }
