package kick

import "time"

// Gravity is the standard acceleration used to convert weight to force.
const Gravity = 9.81

// StateDetected is the fixed kick_detection_state value the datastore expects.
const StateDetected = "kick_detected"

// Newtons converts a weight in kilograms to force in Newtons (F = m*g).
func Newtons(weightKg float64) float64 {
	return weightKg * Gravity
}

// ForceSample is one load-cell reading at the polling cadence.
type ForceSample struct {
	WeightKg     float64   `json:"weight_kg"`
	ForceNewtons float64   `json:"force_newtons"`
	Timestamp    time.Time `json:"timestamp"`
}

// ImpactEvent is emitted by the detector when a kick fires. It carries the
// exact sample that triggered detection; classification must not re-read
// the load cell.
type ImpactEvent struct {
	PeakWeightKg     float64   `json:"peak_weight_kg"`
	PeakForceNewtons float64   `json:"peak_force_newtons"`
	DetectedAt       time.Time `json:"detected_at"`
}

// Record is the final per-kick artifact uploaded to the remote datastore.
// Field names match the datastore schema exactly.
type Record struct {
	ForceNewtons         float64 `json:"force_of_kick_in_newton"`
	EdgePressurePercent  float64 `json:"pressure_at_edges_in_percentage"`
	Accuracy             string  `json:"accuracy"`
	SpeedMetersPerSecond float64 `json:"speed_of_kick_in_meters_per_second"`
	TimestampUTC         string  `json:"timestamp_utc"`
	TimestampLocal       string  `json:"timestamp_local"`
	State                string  `json:"kick_detection_state"`
}
