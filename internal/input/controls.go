// Package input defines the abstract control signal consumed by vehicle
// controllers and the validation applied to remotely sourced control frames.
package input

// Controls is the per-tick control snapshot for one vehicle. It is value
// typed, carries no identity, and is consumed once per tick.
type Controls struct {
	// Throttle in [-1, 1]; negative values request reverse drive.
	Throttle float64 `json:"throttle"`
	// Brake in [0, 1].
	Brake float64 `json:"brake"`
	// Steer in [-1, 1]; positive steers toward the left.
	Steer float64 `json:"steer"`
}

// Clamped returns a copy with every channel forced into its legal range.
func (c Controls) Clamped() Controls {
	return Controls{
		Throttle: clamp(c.Throttle, -1, 1),
		Brake:    clamp(c.Brake, 0, 1),
		Steer:    clamp(c.Steer, -1, 1),
	}
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
