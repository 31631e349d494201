package vehicle

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// ConfigError reports a malformed vehicle parameter discovered at load time.
type ConfigError struct {
	Field  string
	Detail string
}

// Error renders the offending field alongside the validation detail.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("vehicle config: %s: %s", e.Field, e.Detail)
}

// TireCurve tunes the saturating slip-response curve for one friction direction.
type TireCurve struct {
	// Friction is the Coulomb coefficient capping the force at Friction*load.
	Friction float64 `json:"friction" mapstructure:"friction"`
	// Stiffness scales how quickly the response saturates with slip.
	Stiffness float64 `json:"stiffness" mapstructure:"stiffness"`
}

// WheelConfig describes one wheel station: geometry, suspension, and tire tuning.
type WheelConfig struct {
	Name string `json:"name" mapstructure:"name"`
	// Mount is the suspension attachment point in the chassis frame.
	Mount Vec3Param `json:"mount" mapstructure:"mount"`
	// RestLength is the unloaded suspension length in meters.
	RestLength float64 `json:"restLength" mapstructure:"restLength"`
	// MaxTravel bounds suspension compression in meters.
	MaxTravel float64 `json:"maxTravel" mapstructure:"maxTravel"`
	// SpringK is the suspension spring rate in N/m.
	SpringK float64 `json:"springK" mapstructure:"springK"`
	// DamperC is the suspension damping rate in N*s/m.
	DamperC float64 `json:"damperC" mapstructure:"damperC"`
	// Radius is the tire radius in meters.
	Radius float64 `json:"radius" mapstructure:"radius"`
	// SpinInertia is the moment of inertia about the spin axis in kg*m^2.
	SpinInertia float64 `json:"spinInertia" mapstructure:"spinInertia"`
	// Longitudinal and Lateral tune the slip response per direction.
	Longitudinal TireCurve `json:"longitudinal" mapstructure:"longitudinal"`
	Lateral      TireCurve `json:"lateral" mapstructure:"lateral"`
	// DriveTorque and BrakeTorque cap the drivetrain torque routed to this wheel in N*m.
	DriveTorque float64 `json:"driveTorque" mapstructure:"driveTorque"`
	BrakeTorque float64 `json:"brakeTorque" mapstructure:"brakeTorque"`
	// Steerable wheels follow the steering input up to MaxSteerDeg.
	Steerable bool `json:"steerable" mapstructure:"steerable"`
}

// Vec3Param is the serialisable form of a chassis-frame vector.
type Vec3Param struct {
	X float64 `json:"x" mapstructure:"x"`
	Y float64 `json:"y" mapstructure:"y"`
	Z float64 `json:"z" mapstructure:"z"`
}

// Vec converts the parameter into the math representation.
func (v Vec3Param) Vec() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// InertiaParam captures the symmetric inertia tensor as principal moments and products.
type InertiaParam struct {
	XX float64 `json:"xx" mapstructure:"xx"`
	YY float64 `json:"yy" mapstructure:"yy"`
	ZZ float64 `json:"zz" mapstructure:"zz"`
	XY float64 `json:"xy" mapstructure:"xy"`
	XZ float64 `json:"xz" mapstructure:"xz"`
	YZ float64 `json:"yz" mapstructure:"yz"`
}

// Mat builds the symmetric 3x3 tensor from the stored components.
func (p InertiaParam) Mat() mgl64.Mat3 {
	//1.- A symmetric matrix is identical in row and column major layouts.
	return mgl64.Mat3{
		p.XX, p.XY, p.XZ,
		p.XY, p.YY, p.YZ,
		p.XZ, p.YZ, p.ZZ,
	}
}

// Config is the immutable description of one vehicle. It is created at load
// time, validated once, and shared read-only by every per-tick computation.
type Config struct {
	Name string `json:"name" mapstructure:"name"`
	// MassKg is the sprung mass of the chassis in kilograms.
	MassKg float64 `json:"massKg" mapstructure:"massKg"`
	// Inertia is the body-frame inertia tensor.
	Inertia InertiaParam `json:"inertia" mapstructure:"inertia"`
	// CenterOfMass offsets the COM from the chassis origin.
	CenterOfMass Vec3Param `json:"centerOfMass" mapstructure:"centerOfMass"`
	// MaxSteerDeg is the steering lock applied at steer input 1.0.
	MaxSteerDeg float64 `json:"maxSteerDeg" mapstructure:"maxSteerDeg"`
	Wheels      []WheelConfig `json:"wheels" mapstructure:"wheels"`
}

// Validate rejects parameters the dynamics cannot safely consume.
func (c *Config) Validate() error {
	if c == nil {
		return &ConfigError{Field: "config", Detail: "nil"}
	}
	//1.- The integrator divides by mass, so it must be strictly positive.
	if !(c.MassKg > 0) {
		return &ConfigError{Field: "massKg", Detail: fmt.Sprintf("must be positive, got %v", c.MassKg)}
	}
	//2.- Positive principal moments keep the inertia tensor invertible.
	if !(c.Inertia.XX > 0) || !(c.Inertia.YY > 0) || !(c.Inertia.ZZ > 0) {
		return &ConfigError{Field: "inertia", Detail: "principal moments must be positive"}
	}
	if det := c.Inertia.Mat().Det(); !(det > 0) {
		return &ConfigError{Field: "inertia", Detail: fmt.Sprintf("tensor must be positive definite, det %v", det)}
	}
	if len(c.Wheels) == 0 {
		return &ConfigError{Field: "wheels", Detail: "at least one wheel is required"}
	}
	for i, w := range c.Wheels {
		prefix := fmt.Sprintf("wheels[%d]", i)
		//3.- Per wheel checks mirror the chassis rules for each divisor.
		if !(w.Radius > 0) {
			return &ConfigError{Field: prefix + ".radius", Detail: fmt.Sprintf("must be positive, got %v", w.Radius)}
		}
		if !(w.SpinInertia > 0) {
			return &ConfigError{Field: prefix + ".spinInertia", Detail: fmt.Sprintf("must be positive, got %v", w.SpinInertia)}
		}
		if w.SpringK < 0 {
			return &ConfigError{Field: prefix + ".springK", Detail: "must be non-negative"}
		}
		if w.DamperC < 0 {
			return &ConfigError{Field: prefix + ".damperC", Detail: "must be non-negative"}
		}
		if !(w.MaxTravel > 0) {
			return &ConfigError{Field: prefix + ".maxTravel", Detail: "must be positive"}
		}
		//4.- The compression stroke cannot exceed the unloaded length.
		if w.RestLength < 0 || (w.RestLength > 0 && w.RestLength < w.MaxTravel) {
			return &ConfigError{Field: prefix + ".restLength", Detail: "must be at least maxTravel"}
		}
		if w.Longitudinal.Friction < 0 || w.Lateral.Friction < 0 {
			return &ConfigError{Field: prefix + ".friction", Detail: "must be non-negative"}
		}
	}
	return nil
}

// InertiaTensor returns the validated body-frame tensor.
func (c *Config) InertiaTensor() mgl64.Mat3 {
	return c.Inertia.Mat()
}

// Rest returns the unloaded suspension length. Assets may omit it, in which
// case the fully drooped wheel sits directly below the hardpoint.
func (w WheelConfig) Rest() float64 {
	if w.RestLength > 0 {
		return w.RestLength
	}
	return w.MaxTravel
}

// SpawnHeight returns the chassis height that leaves every wheel fully
// drooped with its tire just touching flat ground at z=0.
func (c *Config) SpawnHeight() float64 {
	var h float64
	for _, w := range c.Wheels {
		if drop := w.Rest() + w.Radius - w.Mount.Z; drop > h {
			h = drop
		}
	}
	return h
}
