// Package export writes snapshots of a boidswarm simulation to GeoJSON.
//
// Coordinates are planar world coordinates, not longitudes and latitudes.
// Each agent is a Point feature carrying its Z coordinate and velocity
// as properties; the XY world bounds are a Polygon feature.
package export

import (
	"fmt"
	"os"

	"github.com/PrincetonUniversity/boidswarm"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FeatureCollection returns the features of agents and bounds.
func FeatureCollection(agents []boidswarm.Agent, b boidswarm.Bounds) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	bound := orb.Bound{
		Min: orb.Point{b.Min[0], b.Min[1]},
		Max: orb.Point{b.Max[0], b.Max[1]},
	}
	world := geojson.NewFeature(bound.ToPolygon())
	world.Properties["kind"] = "bounds"
	world.Properties["dim"] = b.Dim
	world.Properties["zmin"] = b.Min[2]
	world.Properties["zmax"] = b.Max[2]
	fc.Append(world)

	for i, a := range agents {
		f := geojson.NewFeature(orb.Point{a.Pos[0], a.Pos[1]})
		f.Properties["kind"] = "agent"
		f.Properties["index"] = i
		f.Properties["z"] = a.Pos[2]
		f.Properties["vx"] = a.Vel[0]
		f.Properties["vy"] = a.Vel[1]
		f.Properties["vz"] = a.Vel[2]
		f.Properties["alive"] = a.IsAlive()
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON writes the features of agents and bounds to path.
func WriteGeoJSON(path string, agents []boidswarm.Agent, b boidswarm.Bounds) error {
	data, err := FeatureCollection(agents, b).MarshalJSON()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
