package terrain

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestRaycastHitsPlane(t *testing.T) {
	plane := NewPlaneField(mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})
	hit, ok := Raycast(plane, mgl64.Vec3{0, 0, 2}, mgl64.Vec3{0, 0, -1}, 5)
	if !ok {
		t.Fatalf("expected hit")
	}
	//1.- A vertical ray from height 2 meets the plane after exactly 2 meters.
	if math.Abs(hit.Distance-2) > 1e-3 {
		t.Fatalf("expected distance 2, got %v", hit.Distance)
	}
	if hit.Normal.Z() < 0.999 {
		t.Fatalf("expected upward normal, got %v", hit.Normal)
	}
}

func TestRaycastMissesBeyondRange(t *testing.T) {
	plane := NewPlaneField(mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})
	if _, ok := Raycast(plane, mgl64.Vec3{0, 0, 2}, mgl64.Vec3{0, 0, -1}, 1); ok {
		t.Fatalf("expected miss inside 1m range")
	}
	//1.- Rays pointing away from the surface never hit.
	if _, ok := Raycast(plane, mgl64.Vec3{0, 0, 2}, mgl64.Vec3{0, 0, 1}, 100); ok {
		t.Fatalf("expected miss pointing away")
	}
	if _, ok := Raycast(nil, mgl64.Vec3{}, mgl64.Vec3{0, 0, -1}, 1); ok {
		t.Fatalf("expected miss for nil field")
	}
}

func TestRaycastNormalizesDirection(t *testing.T) {
	plane := NewPlaneField(mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})
	//1.- A scaled direction must not change the reported metric distance.
	hit, ok := Raycast(plane, mgl64.Vec3{0, 0, 2}, mgl64.Vec3{0, 0, -10}, 5)
	if !ok {
		t.Fatalf("expected hit")
	}
	if math.Abs(hit.Distance-2) > 1e-3 {
		t.Fatalf("expected distance 2 with scaled direction, got %v", hit.Distance)
	}
}

func TestSphereFieldNormalPointsOutward(t *testing.T) {
	sphere := SphereField{Center: mgl64.Vec3{0, 0, 0}, Radius: 1}
	hit, ok := Raycast(sphere, mgl64.Vec3{3, 0, 0}, mgl64.Vec3{-1, 0, 0}, 5)
	if !ok {
		t.Fatalf("expected hit")
	}
	if math.Abs(hit.Distance-2) > 1e-3 {
		t.Fatalf("expected distance 2, got %v", hit.Distance)
	}
	if hit.Normal.X() < 0.999 {
		t.Fatalf("expected outward normal +x, got %v", hit.Normal)
	}
}

func TestUnionTakesClosestSurface(t *testing.T) {
	union := Union{
		NewPlaneField(mgl64.Vec3{}, mgl64.Vec3{0, 0, 1}),
		SphereField{Center: mgl64.Vec3{0, 0, 1.5}, Radius: 0.5},
		nil,
	}
	//1.- Directly above the sphere, the sphere is the nearer surface.
	if d := union.Sample(mgl64.Vec3{0, 0, 3}); math.Abs(d-1) > 1e-9 {
		t.Fatalf("expected sphere distance 1, got %v", d)
	}
	//2.- Away from the sphere, the plane dominates.
	if d := union.Sample(mgl64.Vec3{10, 0, 0.5}); math.Abs(d-0.5) > 1e-9 {
		t.Fatalf("expected plane distance 0.5, got %v", d)
	}
}

func TestSampleFuncAdapter(t *testing.T) {
	field := SampleFunc(func(p mgl64.Vec3) float64 { return p.Z() - 1 })
	if got := field.Sample(mgl64.Vec3{0, 0, 3}); got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
}

func TestSurfaceNormalFallsBackOnDegenerateGradient(t *testing.T) {
	flat := SampleFunc(func(mgl64.Vec3) float64 { return 1 })
	if got := SurfaceNormal(flat, mgl64.Vec3{}); got != (mgl64.Vec3{0, 0, 1}) {
		t.Fatalf("expected world up fallback, got %v", got)
	}
}
