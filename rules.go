package boidswarm

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Alignment steers agents toward the mean heading of their cell.
// Only cells with more than MinGroupSize members are affected.
func (s *Swarm) Alignment(g Grid, f float64) {
	groups := s.GroupByPosition(g)

	// a small shared jitter keeps groups from locking onto one heading
	var jitter mgl64.Vec3
	for k := 0; k < s.Bounds.Dim; k++ {
		jitter[k] = s.Cache.Offset[k] * s.Jitter
	}

	s.forEachGroup(groups, func(group []int) {
		if len(group) <= s.MinGroupSize {
			return
		}
		avg := mean(group, func(i int) mgl64.Vec3 { return s.Agents[i].Vel.Mul(1 / s.Speed) })
		if lenSqr(avg) > minLenSqr {
			avg = avg.Normalize()
		} else {
			avg = mgl64.Vec3{}
		}
		dir := avg.Add(jitter)
		for _, i := range group {
			s.Agents[i].Vel = blend(s.Agents[i].Vel, dir, f, s.Speed)
		}
	})
}

// Cohesion steers agents toward the centroid of their cell.
// The pull grows with the distance to the centroid up to CohesionDistance.
// Unlike the other rules, cells with exactly MinGroupSize members are affected.
func (s *Swarm) Cohesion(g Grid, f float64) {
	groups := s.GroupByPosition(g)
	s.forEachGroup(groups, func(group []int) {
		if len(group) == 0 || len(group) < s.MinGroupSize {
			return
		}
		center := mean(group, func(i int) mgl64.Vec3 { return s.Agents[i].Pos })
		for _, i := range group {
			offset := center.Sub(s.Agents[i].Pos)
			d2 := lenSqr(offset)
			if d2 <= minLenSqr {
				continue
			}
			d := math.Sqrt(d2)
			af := f * math.Min(d/s.CohesionDistance, 1)
			s.Agents[i].Vel = blend(s.Agents[i].Vel, offset.Mul(1/d), af, s.Speed)
		}
	})
}

// Separation steers agents away from the members of their cell
// closer than Perception. Repulsion grows as 1/distance but saturates
// under Saturation. Cost is quadratic in the size of a cell,
// so separation should use a finer grid than the other rules.
func (s *Swarm) Separation(g Grid, f float64) {
	groups := s.GroupByPosition(g)
	r2 := s.Perception * s.Perception

	s.forEachGroup(groups, func(group []int) {
		if len(group) <= s.MinGroupSize {
			return
		}

		pos := make([]mgl64.Vec3, len(group))
		for j, i := range group {
			pos[j] = s.Agents[i].Pos
		}

		for j, i := range group {
			var force mgl64.Vec3
			var n int
			for k := range pos {
				if k == j {
					continue
				}
				offset := pos[j].Sub(pos[k])
				d2 := lenSqr(offset)
				if d2 >= r2 || d2 <= minLenSqr {
					continue
				}
				d := math.Sqrt(d2)
				strength := s.Saturation / math.Max(d, s.Saturation)
				force = force.Add(offset.Mul(strength / d))
				n++
			}
			if n > 0 && lenSqr(force) > 0 {
				s.Agents[i].Vel = blend(s.Agents[i].Vel, force.Normalize(), f, s.Speed)
			}
		}
	})
}

// EdgeAvoidance steers agents away from the faces of the world closer than margin.
// The push grows linearly as an agent gets closer to or past a face.
func (s *Swarm) EdgeAvoidance(margin, f float64) {
	b := s.Bounds
	s.forEachRange(func(lo, hi int) {
		for i := lo; i < hi; i++ {
			p := s.Agents[i].Pos
			var force mgl64.Vec3
			for k := 0; k < b.Dim; k++ {
				if p[k] < b.Min[k]+margin {
					force[k] += (margin - (p[k] - b.Min[k])) / margin
				}
				if p[k] > b.Max[k]-margin {
					force[k] -= (p[k] - (b.Max[k] - margin)) / margin
				}
			}
			if lenSqr(force) > 0 {
				s.Agents[i].Vel = blend(s.Agents[i].Vel, force.Normalize(), f, s.Speed)
			}
		}
	})
}
