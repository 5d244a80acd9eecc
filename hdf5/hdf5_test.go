package hdf5

import (
	"path/filepath"
	"testing"

	"github.com/PrincetonUniversity/boidswarm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type meta struct {
	SwarmSize int
	Speed     float64
	Origin    string
}

func TestRunAndLoad(t *testing.T) {
	const n, steps = 20, 5
	b := boidswarm.Bounds2D(200, 100)
	s := boidswarm.New(n, 2, b, boidswarm.NewRand(1))

	var frames [][]boidswarm.Agent
	var progress []int
	path := filepath.Join(t.TempDir(), "out", "run.h5")
	err := Run(s, &Config{
		Output: path,
		Steps:  steps,
		Step: func() {
			s.Tick(b)
		},
		RunID: "test-run",
		Meta:  meta{SwarmSize: n, Speed: 1, Origin: "corner"},
		Datasets: []*Dataset{
			AgentsDataset(n),
			CellsDataset("cells", boidswarm.Grid{Rows: 2, Cols: 2}, n),
			{
				Name: "check",
				Val:  int32(0),
				Data: func(s *boidswarm.Swarm) interface{} {
					frames = append(frames, s.Snapshot(nil))
					v := int32(s.Frame())
					return &v
				},
			},
		},
		Progress: func(step, total int) {
			assert.Equal(t, steps, total)
			progress = append(progress, step)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, progress)
	require.Len(t, frames, steps)

	l, err := NewLoader(path, "agents")
	require.NoError(t, err)
	defer l.Close()
	assert.Equal(t, steps, l.Len())

	var agents []boidswarm.Agent
	for k := 0; k < steps; k++ {
		require.NoError(t, l.Load(&agents))
		assert.Equal(t, frames[k], agents)
	}

	// cycles back to the first step
	require.NoError(t, l.Load(&agents))
	assert.Equal(t, frames[0], agents)
}

func TestRecords(t *testing.T) {
	agents := []boidswarm.Agent{
		{Vel: [3]float64{1, 0, 0}},
		{},
	}
	r := Records(agents)
	assert.Equal(t, uint8(1), r[0].Alive)
	assert.Equal(t, uint8(0), r[1].Alive)
	assert.Equal(t, [3]float64{1, 0, 0}, r[0].Vel)
}

func TestNewLoader_Missing(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.h5"), "agents")
	assert.Error(t, err)
}
