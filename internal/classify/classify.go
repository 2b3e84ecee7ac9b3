package classify

// Strength is the discrete kick-strength category derived from peak weight.
type Strength int

const (
	NoContact Strength = iota
	Light
	Medium
	Strong
)

func (s Strength) String() string {
	switch s {
	case Light:
		return "Light Kick"
	case Medium:
		return "Medium Kick"
	case Strong:
		return "Strong Kick"
	default:
		return "No or very light contact"
	}
}

// StrengthOf maps a peak weight to a strength band. The band edges are
// deliberate: 4 kg and 5 kg belong to the band on their right, 6.5 kg still
// counts as Medium.
func StrengthOf(weightKg float64) Strength {
	switch {
	case weightKg >= 4 && weightKg < 5:
		return Light
	case weightKg >= 5 && weightKg <= 6.5:
		return Medium
	case weightKg > 6.5:
		return Strong
	default:
		return NoContact
	}
}

// Accuracy is the binary technique assessment derived from edge pressure.
// A center hit leaves the edge FSRs mostly unloaded; high edge pressure
// means the kick landed off-center.
type Accuracy int

const (
	Higher Accuracy = iota
	Lower
)

func (a Accuracy) String() string {
	if a == Lower {
		return "lower accuracy"
	}
	return "higher accuracy"
}

// AccuracyOf classifies the worst-case edge pressure against a single
// threshold. At or above the threshold the hit is edge-heavy.
func AccuracyOf(maxFSRPercent, threshold float64) Accuracy {
	if maxFSRPercent >= threshold {
		return Lower
	}
	return Higher
}
