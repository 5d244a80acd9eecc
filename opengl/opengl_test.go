//go:build !nogl
// +build !nogl

package opengl

import (
	"testing"

	"github.com/PrincetonUniversity/boidswarm"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestTriangle(t *testing.T) {
	a := boidswarm.Agent{Pos: mgl64.Vec3{100, 50, 0}, Vel: mgl64.Vec3{2, 0, 0}}
	tri := triangle(a, 2)
	assert.Equal(t, [3]float32{100, 55, 0}, tri[0])
	assert.Equal(t, [3]float32{100, 45, 0}, tri[1])
	assert.Equal(t, [3]float32{110, 50, 0}, tri[2])

	// vertical heading in 3D still gets a side vector
	a = boidswarm.Agent{Pos: mgl64.Vec3{0, 0, 0}, Vel: mgl64.Vec3{0, 0, 1}}
	tri = triangle(a, 3)
	assert.Equal(t, [3]float32{0, 0, 10}, tri[2])
	assert.NotEqual(t, tri[0], tri[1])

	// stalled agents point along X
	tri = triangle(boidswarm.Agent{}, 2)
	assert.Equal(t, [3]float32{10, 0, 0}, tri[2])
}

func TestHeadingColor(t *testing.T) {
	assert.Equal(t, [4]float32{1, 0, 1, 1}, headingColor(mgl64.Vec3{3, 0, 0}))
	assert.Equal(t, [4]float32{0, 0, 1, 1}, headingColor(mgl64.Vec3{}))
}

func TestCamera_Projection2D(t *testing.T) {
	b := boidswarm.Bounds2D(800, 600)
	var c camera
	proj := c.projection(b)

	// the top left corner of the world is the top left corner of the screen
	corner := proj.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -1, corner[0], 1e-6)
	assert.InDelta(t, 1, corner[1], 1e-6)

	center := proj.Mul4x1(mgl32.Vec4{400, 300, 0, 1})
	assert.InDelta(t, 0, center[0], 1e-6)
	assert.InDelta(t, 0, center[1], 1e-6)

	// zooming in pushes the corner off screen
	c.zoom(10)
	corner = c.projection(b).Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.Less(t, corner[0], float32(-1))
}

func TestCamera_Projection3D(t *testing.T) {
	b := boidswarm.Bounds3D(100, 100, 100)
	var c camera
	center := c.projection(b).Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, center[0]/center[3], 1e-6)
	assert.InDelta(t, 0, center[1]/center[3], 1e-6)
	assert.Greater(t, center[3], float32(0))
}
