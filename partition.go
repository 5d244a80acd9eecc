package boidswarm

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// jitterFraction is the largest grid offset as a fraction of a cell.
const jitterFraction = 0.3

// A Grid is the resolution of a spatial partition of the world.
// Columns follow the X axis, rows the Y axis and layers the Z axis.
// Depth is ignored in 2D and a non-positive Depth means a single layer.
type Grid struct {
	Rows  int
	Cols  int
	Depth int
}

// layers returns the number of Z layers of g in a world of dimension dim.
func (g Grid) layers(dim int) int {
	if dim < 3 || g.Depth < 1 {
		return 1
	}
	return g.Depth
}

// Cells returns the number of cells of g in a world of dimension dim.
func (g Grid) Cells(dim int) int {
	return g.Rows * g.Cols * g.layers(dim)
}

// Coords returns the layer, row and column of cell c.
func (g Grid) Coords(c int) (layer, row, col int) {
	col = c % g.Cols
	row = (c / g.Cols) % g.Rows
	layer = c / (g.Cols * g.Rows)
	return layer, row, col
}

// check panics on malformed grids.
func (g Grid) check() {
	if g.Rows <= 0 || g.Cols <= 0 || g.Depth < 0 {
		panic(fmt.Sprintf("boidswarm: bad grid resolution %dx%dx%d", g.Rows, g.Cols, g.Depth))
	}
}

// A PartitionCache holds the random offset applied to every grid.
// Shifting the grids breaks persistent alignment artifacts
// and refreshing the offset only every few frames keeps groups stable.
type PartitionCache struct {
	Every  int        // refresh period in frames, 0 disables refreshes
	Offset mgl64.Vec3 // per axis offset in [-1, 1), in cells
	Rand   Rand
}

// RefreshIfDue draws a new offset if frame is a multiple of the refresh period.
// It reports whether the offset changed.
func (c *PartitionCache) RefreshIfDue(frame int) bool {
	if c.Every <= 0 || c.Rand == nil || frame%c.Every != 0 {
		return false
	}
	c.Offset = mgl64.Vec3{c.Rand.Uniform(-1, 1), c.Rand.Uniform(-1, 1), c.Rand.Uniform(-1, 1)}
	return true
}

// GroupByPosition partitions the agents into the cells of grid g.
// Every agent index appears in exactly one cell: agents outside of the
// world bounds are folded into the closest boundary cell.
// The result is indexed by (layer*Rows+row)*Cols+col.
func (s *Swarm) GroupByPosition(g Grid) [][]int {
	g.check()
	dim := s.Bounds.Dim
	res := [3]int{g.Cols, g.Rows, g.layers(dim)}

	ext := s.Bounds.Extent()
	var size, offset mgl64.Vec3
	for k := 0; k < dim; k++ {
		size[k] = ext[k] / float64(res[k])
		offset[k] = s.Cache.Offset[k] * size[k] * jitterFraction
	}

	groups := make([][]int, g.Cells(dim))
	for i := range s.Agents {
		var idx [3]int
		for k := 0; k < dim; k++ {
			idx[k] = cellIndex(s.Agents[i].Pos[k]-s.Bounds.Min[k]+offset[k], size[k], res[k])
		}
		c := (idx[2]*g.Rows+idx[1])*g.Cols + idx[0]
		groups[c] = append(groups[c], i)
	}
	return groups
}

// cellIndex returns the index of coordinate x along an axis cut in n cells
// of the given size, clamped to [0, n-1].
func cellIndex(x, size float64, n int) int {
	if n == 1 || size <= 0 {
		return 0
	}
	f := math.Floor(x / size)
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > float64(n-1):
		return n - 1
	}
	return int(f)
}

// CellColors returns the color of each agent in a checkerboard pattern
// of the cells of grid g. It shows how a rule partitions the swarm.
func (s *Swarm) CellColors(g Grid) [][4]float32 {
	var (
		red  = [4]float32{1, 0, 0, 1}
		blue = [4]float32{0, 0, 1, 1}
	)
	colors := make([][4]float32, len(s.Agents))
	for c, group := range s.GroupByPosition(g) {
		layer, row, col := g.Coords(c)
		color := blue
		if (layer+row+col)%2 == 0 {
			color = red
		}
		for _, i := range group {
			colors[i] = color
		}
	}
	return colors
}
