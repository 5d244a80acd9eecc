package boidswarm

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// Rand is the source of randomness of a swarm.
type Rand interface {
	// Uniform returns a uniform float in [lo, hi).
	Uniform(lo, hi float64) float64

	// UnitVector returns a random unit vector with dim active axes.
	UnitVector(dim int) mgl64.Vec3
}

// StdRand implements Rand with a math/rand generator.
// It must not be shared by concurrent simulations.
type StdRand struct {
	*rand.Rand
}

// NewRand returns a seeded StdRand. A zero seed is replaced by 1.
func NewRand(seed int64) *StdRand {
	if seed == 0 {
		seed = 1
	}
	return &StdRand{rand.New(rand.NewSource(seed))}
}

// Uniform returns a uniform float in [lo, hi).
func (r *StdRand) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

// UnitVector returns a unit vector with a uniformly distributed direction.
// Points are drawn in the unit cube and kept only inside the unit ball.
func (r *StdRand) UnitVector(dim int) mgl64.Vec3 {
	for {
		var v mgl64.Vec3
		for k := 0; k < dim; k++ {
			v[k] = r.Uniform(-1, 1)
		}
		if n := lenSqr(v); n > 1e-6 && n <= 1 {
			return v.Normalize()
		}
	}
}
