package boidswarm

import "github.com/go-gl/mathgl/mgl64"

// AliveSpeed is the speed at or under which an agent is considered stalled.
// Target speeds must be greater.
const AliveSpeed = 0.001

// An Agent has a position and a velocity.
// Agents never reference each other: a swarm refers to them by index.
type Agent struct {
	Pos mgl64.Vec3 // position in world units
	Vel mgl64.Vec3 // velocity in world units per frame
}

// IsAlive reports whether the velocity of the agent is not degenerate.
func (a *Agent) IsAlive() bool {
	return a.Vel.Len() > AliveSpeed
}

// Resurrect gives the agent a new random heading at the given speed.
func (a *Agent) Resurrect(r Rand, speed float64, dim int) {
	a.Vel = r.UnitVector(dim).Mul(speed)
}

// Update integrates the position of the agent over one frame.
// A stalled agent is resurrected first so that it cannot stay stuck.
// The position is then clamped into b: clamping always wins over steering.
func (a *Agent) Update(r Rand, speed float64, b Bounds) {
	if !a.IsAlive() {
		a.Resurrect(r, speed, b.Dim)
	}
	a.Move(b)
}

// Move adds the velocity to the position and clamps it into b.
// It never resurrects and uses no random numbers.
func (a *Agent) Move(b Bounds) {
	a.Pos = b.Clamp(a.Pos.Add(a.Vel))
}
