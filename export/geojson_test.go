package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/PrincetonUniversity/boidswarm"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureCollection(t *testing.T) {
	b := boidswarm.Floor3D(100, 50, 20)
	agents := []boidswarm.Agent{
		{Pos: mgl64.Vec3{1, 2, 3}, Vel: mgl64.Vec3{0, 0, 1}},
		{Pos: mgl64.Vec3{-4, 5, 6}},
	}
	fc := FeatureCollection(agents, b)
	require.Len(t, fc.Features, 3)

	world, ok := fc.Features[0].Geometry.(orb.Polygon)
	require.True(t, ok)
	assert.Equal(t, orb.Bound{Min: orb.Point{-50, -25}, Max: orb.Point{50, 25}}, world.Bound())
	assert.Equal(t, 20.0, fc.Features[0].Properties["zmax"])

	assert.Equal(t, orb.Point{1, 2}, fc.Features[1].Geometry)
	assert.Equal(t, 3.0, fc.Features[1].Properties["z"])
	assert.Equal(t, true, fc.Features[1].Properties["alive"])
	assert.Equal(t, false, fc.Features[2].Properties["alive"])
}

func TestWriteGeoJSON(t *testing.T) {
	b := boidswarm.Bounds2D(100, 100)
	s := boidswarm.New(10, 0, b, boidswarm.NewRand(2))
	path := filepath.Join(t.TempDir(), "snapshot.geojson")
	require.NoError(t, WriteGeoJSON(path, s.Agents, b))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 11)
	for _, f := range fc.Features[1:] {
		p, ok := f.Geometry.(orb.Point)
		require.True(t, ok)
		assert.True(t, p[0] >= 0 && p[0] <= 100)
		assert.Equal(t, "agent", f.Properties["kind"])
	}
}

func TestWriteGeoJSON_BadPath(t *testing.T) {
	err := WriteGeoJSON(filepath.Join(t.TempDir(), "missing", "x.geojson"), nil, boidswarm.Bounds2D(1, 1))
	assert.Error(t, err)
}
