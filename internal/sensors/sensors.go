package sensors

import (
	"github.com/relabs-tech/kick_computer/internal/fsr"
	"github.com/relabs-tech/kick_computer/internal/kick"
)

// WeightSource produces load-cell samples for the polling loop.
type WeightSource interface {
	Read() (kick.ForceSample, error)
	Close() error
}

// EdgeSource reads the full FSR channel array once.
type EdgeSource interface {
	Read() ([]fsr.Reading, error)
	Close() error
}
