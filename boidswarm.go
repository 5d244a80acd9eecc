// Package boidswarm runs grid-partitioned flocking simulations ("boids").
//
// A fixed number of agents move in a 2D or 3D box.
// Agents never look at the whole swarm: each steering rule partitions
// the world into a grid of cells and agents only interact with the
// other members of their own cell.
// Every rule blends the current velocity with a target direction
// and renormalizes it, so agents always move at the same speed.
package boidswarm

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Default parameters of a swarm.
const (
	DefaultSpeed            = 1.0  // target speed in world units per frame
	DefaultJitter           = 0.5  // scale of the alignment jitter
	DefaultPerception       = 35.0 // separation perception radius
	DefaultSaturation       = 15.0 // distance under which repulsion stops growing
	DefaultRefreshEvery     = 60   // frames between partition cache refreshes
	DefaultCohesionDistance = 100  // distance at which cohesion reaches full strength
)

// A Swarm contains all the state and parameters of a simulation.
type Swarm struct {
	// Agents is index-stable: indices are the identity used by groupings.
	Agents []Agent

	Bounds       Bounds // world bounds, honored by the next rule or update
	MinGroupSize int    // cells with fewer members are left alone
	Speed        float64

	Jitter           float64 // alignment jitter scale
	Perception       float64 // separation perception radius
	Saturation       float64 // separation saturation distance
	CohesionDistance float64 // cohesion full strength distance

	// Workers is the number of goroutines used by each rule.
	// Values below 2 run everything on the calling goroutine.
	Workers int

	// Schedule is the rule pipeline run by Tick.
	Schedule Schedule

	Cache PartitionCache
	Rand  Rand

	frame int
}

// New creates a swarm of n agents with random positions within b
// and random headings.
// It panics if n is not positive or if minGroupSize is negative.
func New(n, minGroupSize int, b Bounds, r Rand) *Swarm {
	if n <= 0 {
		panic(fmt.Sprintf("boidswarm: swarm size must be positive, got %d", n))
	}
	if minGroupSize < 0 {
		panic(fmt.Sprintf("boidswarm: negative minimum group size %d", minGroupSize))
	}
	b.check()
	s := &Swarm{
		Agents:           make([]Agent, n),
		Bounds:           b,
		MinGroupSize:     minGroupSize,
		Speed:            DefaultSpeed,
		Jitter:           DefaultJitter,
		Perception:       DefaultPerception,
		Saturation:       DefaultSaturation,
		CohesionDistance: DefaultCohesionDistance,
		Workers:          1,
		Schedule:         DefaultSchedule(),
		Cache:            PartitionCache{Every: DefaultRefreshEvery, Rand: r},
		Rand:             r,
	}
	for i := range s.Agents {
		var p mgl64.Vec3
		for k := 0; k < b.Dim; k++ {
			p[k] = r.Uniform(b.Min[k], b.Max[k])
		}
		s.Agents[i].Pos = p
		s.Agents[i].Vel = r.UnitVector(b.Dim).Mul(s.Speed)
	}
	return s
}

// Tick runs a full frame with the given world bounds:
// the rules of the schedule followed by the integration step.
func (s *Swarm) Tick(b Bounds) {
	s.SetBounds(b)
	s.Schedule.Run(s)
	s.Update()
}

// SetBounds changes the world bounds. The new bounds apply immediately
// to partitioning, edge avoidance and clamping.
// The dimensionality of a swarm cannot change.
func (s *Swarm) SetBounds(b Bounds) {
	b.check()
	if b.Dim != s.Bounds.Dim {
		panic(fmt.Sprintf("boidswarm: cannot change dimensionality from %d to %d", s.Bounds.Dim, b.Dim))
	}
	s.Bounds = b
}

// Update resurrects stalled agents, moves every agent by its velocity
// and clamps it into the world bounds. It must run after the rules of a frame.
func (s *Swarm) Update() {
	// resurrection consumes random numbers so it stays sequential
	for i := range s.Agents {
		if !s.Agents[i].IsAlive() {
			s.Agents[i].Resurrect(s.Rand, s.Speed, s.Bounds.Dim)
		}
	}
	s.forEachRange(func(lo, hi int) {
		for i := lo; i < hi; i++ {
			s.Agents[i].Move(s.Bounds)
		}
	})

	s.frame++
	s.Cache.RefreshIfDue(s.frame)
}

// Frame returns the number of completed frames.
func (s *Swarm) Frame() int {
	return s.frame
}

// Alive returns the number of agents with a non-degenerate velocity.
func (s *Swarm) Alive() int {
	var n int
	for i := range s.Agents {
		if s.Agents[i].IsAlive() {
			n++
		}
	}
	return n
}

// Snapshot copies the agents into dst, growing it if needed, and returns it.
// Renderers draw from a snapshot so the next frame can mutate the swarm.
func (s *Swarm) Snapshot(dst []Agent) []Agent {
	if cap(dst) < len(s.Agents) {
		dst = make([]Agent, len(s.Agents))
	}
	dst = dst[:len(s.Agents)]
	copy(dst, s.Agents)
	return dst
}

// SetSpeed changes the target speed and rescales the velocity of every
// agent that is alive. It panics if speed is not greater than AliveSpeed.
func (s *Swarm) SetSpeed(speed float64) {
	if !(speed > AliveSpeed) {
		panic(fmt.Sprintf("boidswarm: speed must be greater than %g, got %g", AliveSpeed, speed))
	}
	for i := range s.Agents {
		if s.Agents[i].IsAlive() {
			s.Agents[i].Vel = s.Agents[i].Vel.Mul(speed / s.Agents[i].Vel.Len())
		}
	}
	s.Speed = speed
}
