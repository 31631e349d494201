// Package terrain models the driving surface as signed distance fields and
// answers the contact queries issued by the wheel probes.
package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Field exposes the sampling contract for contact queries. Samples are
// positive above the surface, negative inside it.
type Field interface {
	Sample(point mgl64.Vec3) float64
}

// SampleFunc adapts a function into a Field.
type SampleFunc func(mgl64.Vec3) float64

// Sample invokes the wrapped sampling function.
func (s SampleFunc) Sample(point mgl64.Vec3) float64 {
	return s(point)
}

// Hit reports where a ray met the surface.
type Hit struct {
	Distance float64
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
}

const (
	raycastMaxSteps = 96
	raycastEpsilon  = 1e-4
	normalEpsilon   = 1e-4
)

// Raycast sphere-traces the field from origin along direction, up to maxDistance.
// The boolean result is false when the ray escapes without touching the surface.
func Raycast(field Field, origin, direction mgl64.Vec3, maxDistance float64) (Hit, bool) {
	if field == nil || maxDistance <= 0 {
		return Hit{}, false
	}
	length := direction.Len()
	if length == 0 {
		return Hit{}, false
	}
	//1.- Normalize the incoming direction before marching.
	dir := direction.Mul(1.0 / length)
	distance := 0.0
	current := origin
	for step := 0; step < raycastMaxSteps; step++ {
		sample := field.Sample(current)
		if sample < raycastEpsilon {
			//2.- Report a hit once the sampled distance is within tolerance.
			return Hit{Distance: distance, Point: current, Normal: SurfaceNormal(field, current)}, true
		}
		distance += sample
		if distance > maxDistance {
			break
		}
		//3.- Advance the march position by the sampled clearance.
		current = origin.Add(dir.Mul(distance))
	}
	return Hit{}, false
}

// SurfaceNormal estimates the outward normal via central differences.
func SurfaceNormal(field Field, point mgl64.Vec3) mgl64.Vec3 {
	if field == nil {
		return mgl64.Vec3{0, 0, 1}
	}
	e := normalEpsilon
	//1.- Sample the gradient one axis at a time.
	grad := mgl64.Vec3{
		field.Sample(point.Add(mgl64.Vec3{e, 0, 0})) - field.Sample(point.Sub(mgl64.Vec3{e, 0, 0})),
		field.Sample(point.Add(mgl64.Vec3{0, e, 0})) - field.Sample(point.Sub(mgl64.Vec3{0, e, 0})),
		field.Sample(point.Add(mgl64.Vec3{0, 0, e})) - field.Sample(point.Sub(mgl64.Vec3{0, 0, e})),
	}
	length := grad.Len()
	if length == 0 {
		//2.- Degenerate gradients fall back to the world up axis.
		return mgl64.Vec3{0, 0, 1}
	}
	return grad.Mul(1.0 / length)
}

// PlaneField is an infinite plane described by a point and outward normal.
type PlaneField struct {
	origin mgl64.Vec3
	normal mgl64.Vec3
}

// NewPlaneField normalizes the normal and stores the plane representation.
func NewPlaneField(point, normal mgl64.Vec3) PlaneField {
	length := normal.Len()
	if length == 0 {
		normal = mgl64.Vec3{0, 0, 1}
		length = 1
	}
	return PlaneField{origin: point, normal: normal.Mul(1.0 / length)}
}

// Sample projects the delta onto the plane normal.
func (p PlaneField) Sample(point mgl64.Vec3) float64 {
	return point.Sub(p.origin).Dot(p.normal)
}

// SphereField is an analytic sphere obstacle.
type SphereField struct {
	Center mgl64.Vec3
	Radius float64
}

// Sample subtracts the radius from the distance to the center.
func (s SphereField) Sample(point mgl64.Vec3) float64 {
	return point.Sub(s.Center).Len() - s.Radius
}

// Union combines fields by taking the minimum sampled distance.
type Union []Field

// Sample returns the closest surface among the members.
func (u Union) Sample(point mgl64.Vec3) float64 {
	closest := math.Inf(1)
	for _, field := range u {
		if field == nil {
			continue
		}
		if d := field.Sample(point); d < closest {
			closest = d
		}
	}
	return closest
}
