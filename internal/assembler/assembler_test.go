package assembler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/kick_computer/internal/fsr"
	"github.com/relabs-tech/kick_computer/internal/kick"
)

type stubSpeed struct {
	v   float64
	err error
	// block, when set, ignores the value and waits for the context.
	block bool
}

func (s stubSpeed) Read(ctx context.Context) (float64, error) {
	if s.block {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return s.v, s.err
}

type stubEdges struct {
	readings []fsr.Reading
	err      error
}

func (s stubEdges) Read() ([]fsr.Reading, error) {
	return s.readings, s.err
}

func testEvent() kick.ImpactEvent {
	return kick.ImpactEvent{
		PeakWeightKg:     4.5,
		PeakForceNewtons: kick.Newtons(4.5),
		DetectedAt:       time.Now(),
	}
}

func TestAssembleFullRecord(t *testing.T) {
	edges := stubEdges{readings: []fsr.Reading{
		{Channel: 0, Percent: 96.3},
		{Channel: 1, Percent: 10.7},
		{Channel: 3, Percent: 2.7},
	}}
	a := New(stubSpeed{v: 6.2}, edges, time.Second, 50)

	fixed := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.FixedZone("ICT", 7*3600))
	a.now = func() time.Time { return fixed }

	rec := a.Assemble(context.Background(), testEvent())

	assert.InDelta(t, 44.145, rec.ForceNewtons, 1e-9)
	assert.InDelta(t, 96.3, rec.EdgePressurePercent, 1e-9)
	assert.Equal(t, "lower accuracy", rec.Accuracy)
	assert.Equal(t, 6.2, rec.SpeedMetersPerSecond)
	assert.Equal(t, kick.StateDetected, rec.State)
	assert.Equal(t, "2026-03-14T09:26:53.589793", rec.TimestampLocal)
	assert.Equal(t, "2026-03-14T02:26:53.589793+00:00", rec.TimestampUTC)
}

func TestAssembleCenterHit(t *testing.T) {
	edges := stubEdges{readings: []fsr.Reading{
		{Channel: 0, Percent: 12.0},
		{Channel: 1, Percent: 49.9},
	}}
	a := New(stubSpeed{v: 3.1}, edges, time.Second, 50)

	rec := a.Assemble(context.Background(), testEvent())
	assert.Equal(t, "higher accuracy", rec.Accuracy)
	assert.InDelta(t, 49.9, rec.EdgePressurePercent, 1e-9)
}

func TestSpeedFailureDefaultsToZero(t *testing.T) {
	a := New(stubSpeed{err: fmt.Errorf("peripheral gone")}, stubEdges{}, time.Second, 50)

	rec := a.Assemble(context.Background(), testEvent())
	assert.Zero(t, rec.SpeedMetersPerSecond)
	assert.Equal(t, kick.StateDetected, rec.State, "record still produced")
}

func TestSpeedTimeoutDefaultsToZero(t *testing.T) {
	a := New(stubSpeed{block: true}, stubEdges{}, 20*time.Millisecond, 50)

	start := time.Now()
	rec := a.Assemble(context.Background(), testEvent())
	assert.Less(t, time.Since(start), time.Second, "read must be bounded by the timeout")
	assert.Zero(t, rec.SpeedMetersPerSecond)
}

func TestEdgeReadFailureDefaultsToZero(t *testing.T) {
	a := New(stubSpeed{v: 5}, stubEdges{err: fmt.Errorf("adc read failed")}, time.Second, 50)

	rec := a.Assemble(context.Background(), testEvent())
	assert.Zero(t, rec.EdgePressurePercent)
	assert.Equal(t, "higher accuracy", rec.Accuracy)
}

func TestNilCollaborators(t *testing.T) {
	a := New(nil, nil, time.Second, 50)

	rec := a.Assemble(context.Background(), testEvent())
	assert.Zero(t, rec.SpeedMetersPerSecond)
	assert.Zero(t, rec.EdgePressurePercent)
	require.NotEmpty(t, rec.TimestampUTC)
}

func TestLocalTimestampHasNoOffset(t *testing.T) {
	a := New(nil, nil, time.Second, 50)
	rec := a.Assemble(context.Background(), testEvent())

	assert.NotContains(t, rec.TimestampLocal, "+")
	assert.NotContains(t, rec.TimestampLocal, "Z")
}
