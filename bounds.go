package boidswarm

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Bounds is an axis-aligned box. Only the first Dim axes are used;
// in 2D the Z components are zero.
type Bounds struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
	Dim int // 2 or 3
}

// Bounds2D returns the rectangle [0,w]×[0,h], i.e. screen coordinates.
func Bounds2D(w, h float64) Bounds {
	return Bounds{Max: mgl64.Vec3{w, h, 0}, Dim: 2}
}

// Bounds3D returns a box of size w×h×d centered on the origin.
func Bounds3D(w, h, d float64) Bounds {
	return Bounds{
		Min: mgl64.Vec3{-w / 2, -h / 2, -d / 2},
		Max: mgl64.Vec3{w / 2, h / 2, d / 2},
		Dim: 3,
	}
}

// Floor3D returns a box of size w×h×d centered on the origin in X and Y
// whose Z axis goes from the floor at 0 up to d.
func Floor3D(w, h, d float64) Bounds {
	b := Bounds3D(w, h, d)
	b.Min[2], b.Max[2] = 0, d
	return b
}

// Extent returns the size of the box along each axis.
func (b Bounds) Extent() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

// Clamp returns p with each active coordinate clamped into the box.
func (b Bounds) Clamp(p mgl64.Vec3) mgl64.Vec3 {
	for k := 0; k < b.Dim; k++ {
		p[k] = math.Max(b.Min[k], math.Min(p[k], b.Max[k]))
	}
	return p
}

// Contains reports whether every active coordinate of p lies in the box.
func (b Bounds) Contains(p mgl64.Vec3) bool {
	for k := 0; k < b.Dim; k++ {
		if p[k] < b.Min[k] || p[k] > b.Max[k] {
			return false
		}
	}
	return true
}

// check panics on malformed bounds.
func (b Bounds) check() {
	if b.Dim != 2 && b.Dim != 3 {
		panic(fmt.Sprintf("boidswarm: bounds must have 2 or 3 dimensions, got %d", b.Dim))
	}
	for k := 0; k < b.Dim; k++ {
		if b.Max[k] < b.Min[k] {
			panic(fmt.Sprintf("boidswarm: inverted bounds on axis %d: [%g, %g]", k, b.Min[k], b.Max[k]))
		}
	}
}
