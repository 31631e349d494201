package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Patch yields a surface height for a point inside one grid cell. MaxGrad
// bounds the steepest surface slope so the height field can stay a valid
// sphere-tracing distance bound.
type Patch interface {
	Height(x, y float64) float64
	MaxGrad() float64
}

// Flat is a level patch at a constant elevation.
type Flat struct {
	Elevation float64
}

func (f Flat) Height(float64, float64) float64 { return f.Elevation }
func (f Flat) MaxGrad() float64                { return 0 }

// Slope is a ramp rising along +x from zero to Rise across the cell size.
type Slope struct {
	Size float64
	Rise float64
}

func (s Slope) Height(x, _ float64) float64 {
	if s.Size <= 0 {
		return 0
	}
	//1.- Clamp the ramp to its cell footprint so neighbours stay continuous.
	t := x / s.Size
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * s.Rise
}

func (s Slope) MaxGrad() float64 {
	if s.Size <= 0 {
		return 0
	}
	return math.Abs(s.Rise / s.Size)
}

// Step is a flat shelf raised by Rise beyond the half point of the cell.
type Step struct {
	Size float64
	Rise float64
}

func (s Step) Height(x, _ float64) float64 {
	if s.Size > 0 && x >= s.Size/2 {
		return s.Rise
	}
	return 0
}

// MaxGrad treats the riser as near-vertical; probes descend onto the treads,
// so a finite bound keeps the march conservative without stalling it.
func (s Step) MaxGrad() float64 { return 8 }

// Wave is a sinusoidal washboard surface along x.
type Wave struct {
	Amplitude  float64
	Wavelength float64
}

func (w Wave) Height(x, _ float64) float64 {
	if w.Wavelength <= 0 {
		return 0
	}
	return w.Amplitude * math.Sin(2*math.Pi*x/w.Wavelength)
}

func (w Wave) MaxGrad() float64 {
	if w.Wavelength <= 0 {
		return 0
	}
	return math.Abs(2 * math.Pi * w.Amplitude / w.Wavelength)
}

// Grid tiles patches over the xy plane in cells of CellSize. Points outside
// the populated cells fall back to flat ground at elevation zero.
type Grid struct {
	CellSize float64
	Cells    map[[2]int]Patch
}

// NewGrid constructs an empty grid with the provided cell edge length.
func NewGrid(cellSize float64) *Grid {
	return &Grid{CellSize: cellSize, Cells: make(map[[2]int]Patch)}
}

// Place assigns a patch to the cell at the given grid coordinates.
func (g *Grid) Place(cx, cy int, patch Patch) {
	if g == nil || patch == nil {
		return
	}
	g.Cells[[2]int{cx, cy}] = patch
}

// Height resolves the owning cell and evaluates its patch in local coordinates.
func (g *Grid) Height(x, y float64) float64 {
	if g == nil || g.CellSize <= 0 {
		return 0
	}
	cx := int(math.Floor(x / g.CellSize))
	cy := int(math.Floor(y / g.CellSize))
	patch, ok := g.Cells[[2]int{cx, cy}]
	if !ok {
		return 0
	}
	//1.- Patches evaluate in cell-local coordinates for reuse across cells.
	return patch.Height(x-float64(cx)*g.CellSize, y-float64(cy)*g.CellSize)
}

// MaxGrad reports the steepest slope among the populated cells.
func (g *Grid) MaxGrad() float64 {
	if g == nil {
		return 0
	}
	steepest := 0.0
	for _, patch := range g.Cells {
		if grad := patch.MaxGrad(); grad > steepest {
			steepest = grad
		}
	}
	return steepest
}

// HeightField lifts a Patch into a sphere-traceable Field. The vertical
// clearance is scaled by the Lipschitz bound of the surface so the march
// never overshoots.
type HeightField struct {
	Surface Patch
	scale   float64
}

// NewHeightField precomputes the march scale from the surface gradient bound.
func NewHeightField(surface Patch) *HeightField {
	scale := 1.0
	if surface != nil {
		grad := surface.MaxGrad()
		scale = 1.0 / math.Sqrt(1.0+grad*grad)
	}
	return &HeightField{Surface: surface, scale: scale}
}

// Sample measures the scaled vertical clearance above the surface.
func (h *HeightField) Sample(point mgl64.Vec3) float64 {
	if h == nil || h.Surface == nil {
		return point.Z()
	}
	return (point.Z() - h.Surface.Height(point.X(), point.Y())) * h.scale
}
