package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrengthOfBandBoundaries(t *testing.T) {
	tests := []struct {
		weightKg float64
		want     Strength
	}{
		{0, NoContact},
		{3.99, NoContact},
		{4.0, Light},
		{4.999, Light},
		{5.0, Medium},
		{6.5, Medium},
		{6.50001, Strong},
		{12.3, Strong},
		{-2, NoContact},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StrengthOf(tt.weightKg), "weight %g kg", tt.weightKg)
	}
}

func TestStrengthString(t *testing.T) {
	assert.Equal(t, "Light Kick", Light.String())
	assert.Equal(t, "Medium Kick", Medium.String())
	assert.Equal(t, "Strong Kick", Strong.String())
	assert.Equal(t, "No or very light contact", NoContact.String())
}

func TestAccuracyOfThreshold(t *testing.T) {
	assert.Equal(t, Higher, AccuracyOf(49.9, 50))
	assert.Equal(t, Lower, AccuracyOf(50.0, 50))
	assert.Equal(t, Lower, AccuracyOf(100, 50))
	assert.Equal(t, Higher, AccuracyOf(0, 50))
}

func TestAccuracyString(t *testing.T) {
	assert.Equal(t, "higher accuracy", Higher.String())
	assert.Equal(t, "lower accuracy", Lower.String())
}
