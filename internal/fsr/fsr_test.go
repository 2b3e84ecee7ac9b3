package fsr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name          string
		raw, min, max float64
		want          float64
	}{
		{"zero at min", -1, -1, 1873, 0},
		{"full at max", 1873, -1, 1873, 100},
		{"below min clamps to zero", -500, -1, 1873, 0},
		{"above max clamps to full", 5000, -1, 1873, 100},
		{"degenerate bounds equal", 100, 10, 10, 0},
		{"degenerate bounds inverted", 100, 50, 10, 0},
		{"midpoint", 50, 0, 100, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percent(tt.raw, tt.min, tt.max), 1e-9)
		})
	}
}

func TestPercentDeploymentReadings(t *testing.T) {
	// The three pad channels with the deployment's calibration bounds.
	assert.InDelta(t, 96.3, Percent(1800, -1, 1873), 0.05)
	assert.InDelta(t, 10.7, Percent(200, -1, 1873), 0.05)
	assert.InDelta(t, 2.7, Percent(50, -1, 1873), 0.05)
}

func TestPercentAlwaysBounded(t *testing.T) {
	for _, raw := range []float64{-1e12, -1, 0, 0.5, 936, 1873, 1e12} {
		p := Percent(raw, -1, 1873)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 100.0)
	}
}

func TestPercentIdempotentOnOwnOutput(t *testing.T) {
	// A value already scaled to [0,100] maps to itself under 0..100 bounds.
	p := Percent(1234, -1, 1873)
	assert.InDelta(t, p, Percent(p, 0, 100), 1e-9)
}

func TestMaxPercent(t *testing.T) {
	readings := []Reading{
		{Channel: 0, Percent: 96.3},
		{Channel: 1, Percent: 10.7},
		{Channel: 3, Percent: 2.7},
	}
	assert.InDelta(t, 96.3, MaxPercent(readings), 1e-9)
	assert.Zero(t, MaxPercent(nil))
}
