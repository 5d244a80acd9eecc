package boidswarm

import "github.com/go-gl/mathgl/mgl64"

// minLenSqr is the squared length under which a vector is never normalized.
const minLenSqr = 0.001

// lenSqr returns the squared length of v.
func lenSqr(v mgl64.Vec3) float64 {
	return v.Dot(v)
}

// blend mixes velocity v (of magnitude speed) with the unit direction dir
// by factor f and returns the result rescaled to speed.
// A blend too short to normalize yields the zero vector,
// which the next update turns into a fresh random heading.
func blend(v, dir mgl64.Vec3, f, speed float64) mgl64.Vec3 {
	b := v.Mul((1 - f) / speed).Add(dir.Mul(f))
	if lenSqr(b) <= minLenSqr {
		return mgl64.Vec3{}
	}
	return b.Normalize().Mul(speed)
}

// mean returns the average of the vectors selected by idx.
func mean(idx []int, at func(i int) mgl64.Vec3) mgl64.Vec3 {
	var m mgl64.Vec3
	for _, i := range idx {
		m = m.Add(at(i))
	}
	return m.Mul(1 / float64(len(idx)))
}
