package input

import "time"

// Driver feeds a scripted control sequence through a rate smoother so bot
// vehicles work their pedals the way a human driver would instead of
// stepping channels instantly.
type Driver struct {
	script   *Script
	smoother *Smoother
	dt       float64
}

// NewDriver wires the script target through the smoother at the simulation
// step rate.
func NewDriver(script *Script, smoother *Smoother, step time.Duration) *Driver {
	return &Driver{script: script, smoother: smoother, dt: step.Seconds()}
}

// Poll advances the script one tick and returns the smoothed controls.
func (d *Driver) Poll(vehicleID string) (Controls, bool) {
	if d == nil {
		return Controls{}, false
	}
	target, ok := d.script.Poll(vehicleID)
	if !ok {
		return Controls{}, false
	}
	return d.smoother.Advance(target, d.dt), true
}
