package dynamics

// Compression converts a probed contact depth into suspension compression,
// clamped to [0, maxTravel]. Exceeding travel represents a bottomed-out
// spring, not an error.
func Compression(maxTravel, depth float64) float64 {
	compression := maxTravel - depth
	if compression < 0 {
		return 0
	}
	if compression > maxTravel {
		return maxTravel
	}
	return compression
}

// SuspensionForce computes the scalar spring/damper force along the travel
// axis. extensionRate is positive while the suspension extends, so the damper
// term resists stroke in both directions. The result is clamped non-negative:
// a spring cannot pull the wheel toward the chassis through the ground.
func SuspensionForce(compression, extensionRate, springK, damperC float64) float64 {
	force := springK*compression - damperC*extensionRate
	if force < 0 {
		return 0
	}
	return force
}
