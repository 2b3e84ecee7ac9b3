package detector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/kick_computer/internal/kick"
)

// feed runs a weight sequence through a detector at the given cadence and
// returns the fired events.
func feed(d *Detector, start time.Time, interval time.Duration, weights []float64) []kick.ImpactEvent {
	var events []kick.ImpactEvent
	for i, w := range weights {
		s := kick.ForceSample{
			WeightKg:     w,
			ForceNewtons: kick.Newtons(w),
			Timestamp:    start.Add(time.Duration(i) * interval),
		}
		if ev, ok := d.Offer(s); ok {
			events = append(events, ev)
		}
	}
	return events
}

func TestSingleKickSequence(t *testing.T) {
	// Raw weight sequence [0, 0, 2.0, 4.5, 3.0] at 50ms: exactly one impact,
	// at the 4.5 sample.
	d := New(DefaultConfig())
	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	events := feed(d, start, 50*time.Millisecond, []float64{0, 0, 2.0, 4.5, 3.0})
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, 4.5, ev.PeakWeightKg)
	assert.InDelta(t, 44.15, ev.PeakForceNewtons, 0.01)
	assert.Equal(t, start.Add(3*50*time.Millisecond), ev.DetectedAt)
}

func TestNeverFiresBelowThreshold(t *testing.T) {
	d := New(DefaultConfig())
	start := time.Now()

	// Strictly decreasing and flat sub-threshold sequences must stay quiet.
	assert.Empty(t, feed(d, start, 50*time.Millisecond, []float64{3.9, 3.5, 3.0, 2.0, 1.0, 0}))
	assert.Empty(t, feed(d, start.Add(time.Minute), 50*time.Millisecond, []float64{2.0, 2.0, 2.0, 2.0}))
}

func TestCooldownSuppressesSecondFire(t *testing.T) {
	d := New(DefaultConfig())
	start := time.Now()

	// Two clean spikes 250ms apart: the second falls inside the 2s cooldown.
	events := feed(d, start, 50*time.Millisecond, []float64{0, 4.8, 0, 0, 0, 5.2, 0})
	require.Len(t, events, 1)
	assert.Equal(t, 4.8, events[0].PeakWeightKg)

	// A spike after the cooldown is accepted again.
	late := kick.ForceSample{WeightKg: 5.0, ForceNewtons: kick.Newtons(5.0), Timestamp: start.Add(3 * time.Second)}
	_, ok := d.Offer(late)
	assert.True(t, ok)
}

func TestCooldownNeverViolated(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequireRisingEdge = false
	d := New(cfg)
	start := time.Now()

	// Hammer the detector with alternating spikes for 10 seconds of
	// simulated time; no two fires may be closer than the cooldown.
	weights := make([]float64, 200)
	for i := range weights {
		if i%2 == 0 {
			weights[i] = 6.0
		}
	}
	events := feed(d, start, 50*time.Millisecond, weights)
	require.NotEmpty(t, events)
	for i := 1; i < len(events); i++ {
		gap := events[i].DetectedAt.Sub(events[i-1].DetectedAt)
		assert.GreaterOrEqual(t, gap, cfg.Cooldown, "events %d and %d", i-1, i)
	}
}

func TestRisingEdgeRejectsSustainedPressure(t *testing.T) {
	d := New(DefaultConfig())
	start := time.Now()

	// Someone stands on the pad: weight jumps above threshold and stays
	// flat. Only the initial rise may fire, never the plateau.
	events := feed(d, start, 50*time.Millisecond, []float64{0, 6.0, 6.0, 6.0, 6.0, 6.0})
	require.Len(t, events, 1)

	// Plateau continues past the cooldown; flat samples still don't fire.
	flat := feed(d, start.Add(5*time.Second), 50*time.Millisecond, []float64{6.0, 6.0, 6.0})
	assert.Empty(t, flat)
}

func TestThresholdCrossingPolicyFiresOnPlateau(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequireRisingEdge = false
	d := New(cfg)
	start := time.Now()

	// Without the rising-edge requirement the plateau refires once the
	// cooldown lapses; that is the documented tradeoff of this policy.
	first := feed(d, start, 50*time.Millisecond, []float64{6.0, 6.0})
	require.Len(t, first, 1)

	later := feed(d, start.Add(3*time.Second), 50*time.Millisecond, []float64{6.0})
	assert.Len(t, later, 1)
}

func TestRequiresTwoSamplesBeforeFiring(t *testing.T) {
	d := New(DefaultConfig())
	s := kick.ForceSample{WeightKg: 9.0, ForceNewtons: kick.Newtons(9.0), Timestamp: time.Now()}
	_, ok := d.Offer(s)
	assert.False(t, ok, "first-ever sample must not fire")
}

func TestEventCarriesTriggeringSample(t *testing.T) {
	d := New(DefaultConfig())
	start := time.Now()

	events := feed(d, start, 50*time.Millisecond, []float64{0, 3.0, 7.2})
	require.Len(t, events, 1)
	assert.Equal(t, 7.2, events[0].PeakWeightKg)
	assert.Equal(t, kick.Newtons(7.2), events[0].PeakForceNewtons)
}

func TestZeroConfigGetsDefaults(t *testing.T) {
	d := New(Config{})
	assert.Equal(t, 4.0, d.cfg.ThresholdKg)
	assert.Equal(t, 2*time.Second, d.cfg.Cooldown)
}
