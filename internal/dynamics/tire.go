package dynamics

import (
	"math"

	"drivesim/engine/internal/vehicle"
)

// slipEpsilon floors the slip-ratio denominator (m/s) so near-standstill
// speeds cannot blow the ratio up.
const slipEpsilon = 0.5

// SlipRatio measures longitudinal sliding: positive when the tire surface
// moves faster than the ground under it.
func SlipRatio(spinVelocity, radius, groundSpeed float64) float64 {
	denominator := math.Abs(groundSpeed)
	if denominator < slipEpsilon {
		denominator = slipEpsilon
	}
	return (spinVelocity*radius - groundSpeed) / denominator
}

// SlipAngle measures lateral sliding in radians.
func SlipAngle(lateralSpeed, longitudinalSpeed float64) float64 {
	return math.Atan2(lateralSpeed, math.Abs(longitudinalSpeed))
}

// slipResponse is the saturating slip curve: B*x/sqrt(1+(B*x)^2). It is
// monotone in x, near-linear around zero, and bounded inside (-1, 1), which
// keeps every force under the Coulomb ceiling for any slip value.
func slipResponse(slip, stiffness float64) float64 {
	scaled := stiffness * slip
	return scaled / math.Sqrt(1.0+scaled*scaled)
}

// TireForces converts wheel slip and normal load into longitudinal and
// lateral friction forces in the contact plane. The lateral component opposes
// the lateral slip velocity. Zero or negative load yields zero force.
func TireForces(cfg vehicle.WheelConfig, spinVelocity, longitudinalSpeed, lateralSpeed, load float64) (longitudinal, lateral float64) {
	if load <= 0 {
		return 0, 0
	}
	//1.- Evaluate each direction's saturating response against its own curve.
	slip := SlipRatio(spinVelocity, cfg.Radius, longitudinalSpeed)
	angle := SlipAngle(lateralSpeed, longitudinalSpeed)
	longitudinal = cfg.Longitudinal.Friction * load * slipResponse(slip, cfg.Longitudinal.Stiffness)
	lateral = -cfg.Lateral.Friction * load * slipResponse(angle, cfg.Lateral.Stiffness)

	//2.- Scale onto the friction ellipse so the combined vector also honours
	// the Coulomb ceiling, not just each component.
	capLong := cfg.Longitudinal.Friction * load
	capLat := cfg.Lateral.Friction * load
	if capLong > 0 && capLat > 0 {
		usage := (longitudinal/capLong)*(longitudinal/capLong) + (lateral/capLat)*(lateral/capLat)
		if usage > 1 {
			scale := 1.0 / math.Sqrt(usage)
			longitudinal *= scale
			lateral *= scale
		}
	}
	return longitudinal, lateral
}
