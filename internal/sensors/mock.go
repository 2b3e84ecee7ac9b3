package sensors

import (
	"math/rand"
	"time"

	"github.com/relabs-tech/kick_computer/internal/fsr"
	"github.com/relabs-tech/kick_computer/internal/kick"
)

// MockLoadCell replays a scripted weight sequence, one entry per Read, and
// wraps around at the end. Used by the bench binary and tests.
type MockLoadCell struct {
	script []float64
	i      int
}

// NewMockLoadCell returns a mock cell replaying script (kg values). A nil
// script produces a quiet pad with an occasional two-sample kick spike.
func NewMockLoadCell(script []float64) *MockLoadCell {
	if len(script) == 0 {
		// ~3s of noise floor at 50ms cadence, then a sharp rise and decay.
		script = make([]float64, 0, 64)
		for i := 0; i < 58; i++ {
			script = append(script, rand.Float64()*0.3)
		}
		script = append(script, 1.8, 5.6, 6.9, 3.1, 0.8, 0.2)
	}
	return &MockLoadCell{script: script}
}

func (m *MockLoadCell) Read() (kick.ForceSample, error) {
	w := m.script[m.i%len(m.script)]
	m.i++
	return kick.ForceSample{
		WeightKg:     w,
		ForceNewtons: kick.Newtons(w),
		Timestamp:    time.Now(),
	}, nil
}

func (m *MockLoadCell) Close() error { return nil }

// MockFSRArray returns a fixed set of percentages on every Read.
type MockFSRArray struct {
	Percents []float64
}

func (m *MockFSRArray) Read() ([]fsr.Reading, error) {
	readings := make([]fsr.Reading, 0, len(m.Percents))
	for ch, p := range m.Percents {
		readings = append(readings, fsr.Reading{Channel: ch, Percent: p})
	}
	return readings, nil
}

func (m *MockFSRArray) Close() error { return nil }
