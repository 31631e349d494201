package input

// Smoother ramps raw channel commands toward their targets at bounded rates so
// digital inputs (keys, scripted drivers) feel like analog pedals. Response
// times are expressed in seconds to reach full deflection.
type Smoother struct {
	// ThrottleResponse, BrakeResponse and SteerResponse are seconds from
	// neutral to full input.
	ThrottleResponse float64
	BrakeResponse    float64
	SteerResponse    float64
	// SteerReturn is the seconds for the steering channel to recenter once
	// the command releases.
	SteerReturn float64

	current Controls
}

// NewSmoother returns a smoother with the pedal feel of the reference setup:
// a quarter-second throttle ramp, a tenth-second brake ramp, and steering that
// recenters faster than it winds on.
func NewSmoother() *Smoother {
	return &Smoother{
		ThrottleResponse: 0.25,
		BrakeResponse:    0.1,
		SteerResponse:    0.5,
		SteerReturn:      0.25,
	}
}

// Advance moves the smoothed controls toward target over dt seconds and
// returns the new snapshot.
func (s *Smoother) Advance(target Controls, dt float64) Controls {
	if s == nil || dt <= 0 {
		return target.Clamped()
	}
	target = target.Clamped()
	//1.- Ramp throttle and brake toward their commanded values.
	s.current.Throttle = approach(s.current.Throttle, target.Throttle, rate(s.ThrottleResponse, dt))
	s.current.Brake = approach(s.current.Brake, target.Brake, rate(s.BrakeResponse, dt))
	//2.- Steering recenters at its own, quicker rate when released.
	steerRate := rate(s.SteerResponse, dt)
	if target.Steer == 0 {
		steerRate = rate(s.SteerReturn, dt)
	}
	s.current.Steer = approach(s.current.Steer, target.Steer, steerRate)
	return s.current
}

// Current exposes the most recent smoothed snapshot.
func (s *Smoother) Current() Controls {
	if s == nil {
		return Controls{}
	}
	return s.current
}

func rate(responseSeconds, dt float64) float64 {
	if responseSeconds <= 0 {
		return 1
	}
	return dt / responseSeconds
}

func approach(current, target, step float64) float64 {
	if current < target {
		current += step
		if current > target {
			current = target
		}
	} else if current > target {
		current -= step
		if current < target {
			current = target
		}
	}
	return current
}
