package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/PrincetonUniversity/boidswarm"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseConfig_TOML(t *testing.T) {
	path := writeFile(t, "run.toml", `
output = "out/run.h5"
swarm_size = 500
dimensions = 3
origin = "floor"
depth = 200
seed = 7

[separation]
rows = 10
cols = 10
depth = 5
factor = 0.2
`)
	conf, err := ParseConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "out/run.h5", conf.Output)
	assert.Equal(t, 500, conf.SwarmSize)
	assert.Equal(t, 3, conf.Dimensions)
	assert.Equal(t, "floor", conf.Origin)
	assert.Equal(t, int64(7), conf.Seed)
	assert.Equal(t, RuleConfig{Rows: 10, Cols: 10, Depth: 5, Factor: 0.2}, conf.Separation)

	// untouched parameters keep their default
	assert.Equal(t, DefaultConf.Alignment, conf.Alignment)
	assert.Equal(t, DefaultConf.Width, conf.Width)
	require.NoError(t, conf.Validate())

	// defaults are not modified
	assert.Equal(t, 2000, DefaultConf.SwarmSize)
	assert.Equal(t, "", DefaultConf.Output)
}

func TestParseConfig_YAML(t *testing.T) {
	path := writeFile(t, "run.yaml", `
stream: localhost:0
swarm_size: 100
speed: 2
cohesion:
  factor: 0
edge:
  margin: 20
  factor: 0.5
log_format: json
`)
	conf, err := ParseConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:0", conf.Stream)
	assert.Equal(t, 100, conf.SwarmSize)
	assert.Equal(t, 2.0, conf.Speed)
	assert.Equal(t, 0.0, conf.Cohesion.Factor)
	assert.Equal(t, 4, conf.Cohesion.Rows)
	assert.Equal(t, EdgeConfig{Margin: 20, Factor: 0.5}, conf.Edge)
	assert.Equal(t, "json", conf.LogFormat)
	require.NoError(t, conf.Validate())
}

func TestParseConfig_Errors(t *testing.T) {
	_, err := ParseConfig(writeFile(t, "run.json", `{}`))
	assert.ErrorContains(t, err, "unknown config format")

	_, err = ParseConfig(writeFile(t, "bad.toml", `swarm_size = "many"`))
	assert.Error(t, err)

	_, err = ParseConfig(writeFile(t, "bad.yml", "swarm_size: [1, 2]\n"))
	assert.Error(t, err)

	_, err = ParseConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultConf.Validate())

	tests := map[string]struct {
		edit func(c *Config)
		msg  string
	}{
		"swarm size":   {func(c *Config) { c.SwarmSize = 0 }, "swarm_size"},
		"group size":   {func(c *Config) { c.MinGroupSize = -1 }, "min_group_size"},
		"steps":        {func(c *Config) { c.Output = "x.h5"; c.Steps = 0 }, "steps"},
		"speed":        {func(c *Config) { c.Speed = -1 }, "speed"},
		"low speed":    {func(c *Config) { c.Speed = boidswarm.AliveSpeed }, "speed must be greater"},
		"dimensions":   {func(c *Config) { c.Dimensions = 4 }, "dimensions"},
		"floor in 2D":  {func(c *Config) { c.Origin = "floor" }, "floor"},
		"origin":       {func(c *Config) { c.Origin = "middle" }, "origin"},
		"depth":        {func(c *Config) { c.Dimensions = 3; c.Depth = 0 }, "depth"},
		"width":        {func(c *Config) { c.Width = 0 }, "width"},
		"grid":         {func(c *Config) { c.Alignment.Cols = 0 }, "alignment"},
		"factor":       {func(c *Config) { c.Separation.Factor = 1.5 }, "separation"},
		"edge factor":  {func(c *Config) { c.Edge.Factor = -0.1 }, "edge"},
		"edge margin":  {func(c *Config) { c.Edge.Margin = 0 }, "margin"},
		"refresh":      {func(c *Config) { c.RefreshEvery = 0 }, "refresh_every"},
		"frame rate":   {func(c *Config) { c.Stream = ":0"; c.FrameRate = 0 }, "frame_rate"},
		"stats":        {func(c *Config) { c.StatsEvery = -1 }, "stats_every"},
		"log level":    {func(c *Config) { c.LogLevel = "loud" }, "log level"},
		"log format":   {func(c *Config) { c.LogFormat = "xml" }, "log format"},
		"workers":      {func(c *Config) { c.Workers = -2 }, "workers"},
		"disabled bad": {func(c *Config) { c.Alignment = RuleConfig{}; c.Edge.Factor = 2 }, "edge"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := *DefaultConf
			tt.edit(&c)
			assert.ErrorContains(t, c.Validate(), tt.msg)
		})
	}

	// a disabled rule needs no grid
	c := *DefaultConf
	c.Cohesion = RuleConfig{}
	assert.NoError(t, c.Validate())
}

func TestConfig_Bounds(t *testing.T) {
	c := *DefaultConf
	c.Width, c.Height, c.Depth = 800, 600, 400

	assert.Equal(t, boidswarm.Bounds2D(800, 600), c.WorldBounds())

	c.Origin = "center"
	assert.Equal(t, boidswarm.Bounds{
		Min: mgl64.Vec3{-400, -300, 0},
		Max: mgl64.Vec3{400, 300, 0},
		Dim: 2,
	}, c.WorldBounds())

	c.Dimensions = 3
	assert.Equal(t, boidswarm.Bounds3D(800, 600, 400), c.WorldBounds())

	c.Origin = "floor"
	assert.Equal(t, boidswarm.Floor3D(800, 600, 400), c.WorldBounds())

	c.Origin = "corner"
	assert.Equal(t, boidswarm.Bounds{Max: mgl64.Vec3{800, 600, 400}, Dim: 3}, c.WorldBounds())

	// resizing keeps the depth
	assert.Equal(t, boidswarm.Bounds{Max: mgl64.Vec3{100, 50, 400}, Dim: 3}, c.Resized(100, 50))
}

func TestConfig_Schedule(t *testing.T) {
	assert.Equal(t, boidswarm.DefaultSchedule(), DefaultConf.Schedule())

	c := *DefaultConf
	c.Cohesion.Factor = 0
	sc := c.Schedule()
	assert.Equal(t, 0.0, sc.Cohesion.Factor)
	assert.Equal(t, boidswarm.Grid{Rows: 20, Cols: 20, Depth: 20}, sc.Separation.Grid)
}

func TestMode(t *testing.T) {
	c := *DefaultConf
	assert.Equal(t, "interactive", mode(&c))
	c.Output = "run.h5"
	assert.Equal(t, "record", mode(&c))
	c.Stream = ":8080"
	assert.Equal(t, "stream", mode(&c))
	c.Replay = "run.h5"
	assert.Equal(t, "replay", mode(&c))
}
