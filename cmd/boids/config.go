package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/PrincetonUniversity/boidswarm"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Config holds the various parameters required for running a simulation.
type Config struct {
	// Output is either a filename (path) for the HDF5 output file,
	// or the empty string for an interactive OpenGL simulation.
	Output string `toml:"output" yaml:"output"`

	// Replay is the path of an HDF5 file recorded earlier.
	// If set, the recorded frames are played back in an OpenGL window
	// and nothing is simulated.
	Replay string `toml:"replay" yaml:"replay"`

	// Stream is the address (host:port) of the WebSocket server
	// frames are broadcast from. It takes precedence over Output.
	Stream string `toml:"stream" yaml:"stream"`

	// GeoJSON, if set, is the path where the last frame is exported.
	GeoJSON string `toml:"geojson" yaml:"geojson"`

	SwarmSize    int     `toml:"swarm_size" yaml:"swarm_size"`         // number of agents
	MinGroupSize int     `toml:"min_group_size" yaml:"min_group_size"` // smaller cells are ignored by alignment and separation
	Steps        int     `toml:"steps" yaml:"steps"`                   // number of time steps (hdf5 only)
	Seed         int64   `toml:"seed" yaml:"seed"`                     // 0 seeds from the clock
	Speed        float64 `toml:"speed" yaml:"speed"`                   // unit: world unit/frame
	Workers      int     `toml:"workers" yaml:"workers"`               // goroutines used by the rules

	// World parameters
	Dimensions int     `toml:"dimensions" yaml:"dimensions"` // 2 or 3
	Width      float64 `toml:"width" yaml:"width"`
	Height     float64 `toml:"height" yaml:"height"`
	Depth      float64 `toml:"depth" yaml:"depth"`   // 3D only
	Origin     string  `toml:"origin" yaml:"origin"` // possible values: corner, center, floor

	// Rules parameters
	Alignment    RuleConfig `toml:"alignment" yaml:"alignment"`
	Cohesion     RuleConfig `toml:"cohesion" yaml:"cohesion"`
	Separation   RuleConfig `toml:"separation" yaml:"separation"`
	Edge         EdgeConfig `toml:"edge" yaml:"edge"`
	RefreshEvery int        `toml:"refresh_every" yaml:"refresh_every"` // frames between two jitter refreshes

	// Display and logging parameters
	FrameRate  float64 `toml:"frame_rate" yaml:"frame_rate"`   // frames per second (stream only)
	StatsEvery int     `toml:"stats_every" yaml:"stats_every"` // frames between two stats lines, 0 disables them
	LogLevel   string  `toml:"log_level" yaml:"log_level"`     // debug, info, warn or error
	LogFormat  string  `toml:"log_format" yaml:"log_format"`   // text or json
}

// RuleConfig holds the grid and blend factor of a steering rule.
// A zero factor disables the rule.
type RuleConfig struct {
	Rows   int     `toml:"rows" yaml:"rows"`
	Cols   int     `toml:"cols" yaml:"cols"`
	Depth  int     `toml:"depth" yaml:"depth"`
	Factor float64 `toml:"factor" yaml:"factor"`
}

// EdgeConfig holds the parameters of edge avoidance.
type EdgeConfig struct {
	Margin float64 `toml:"margin" yaml:"margin"`
	Factor float64 `toml:"factor" yaml:"factor"`
}

// Grid returns the partition grid of the rule.
func (r RuleConfig) Grid() boidswarm.Grid {
	return boidswarm.Grid{Rows: r.Rows, Cols: r.Cols, Depth: r.Depth}
}

// DefaultConf are the default parameters.
var DefaultConf = &Config{
	SwarmSize:    2000,
	MinGroupSize: 5,
	Steps:        10000,
	Speed:        boidswarm.DefaultSpeed,
	Workers:      1,
	Dimensions:   2,
	Width:        800,
	Height:       600,
	Depth:        600,
	Origin:       "corner",
	Alignment:    RuleConfig{Rows: 8, Cols: 8, Depth: 8, Factor: 0.02},
	Cohesion:     RuleConfig{Rows: 4, Cols: 4, Depth: 4, Factor: 0.01},
	Separation:   RuleConfig{Rows: 20, Cols: 20, Depth: 20, Factor: 0.06},
	Edge:         EdgeConfig{Margin: 10, Factor: 0.1},
	RefreshEvery: boidswarm.DefaultRefreshEvery,
	FrameRate:    60,
	StatsEvery:   60,
	LogLevel:     "info",
	LogFormat:    "text",
}

// ParseConfig parses the TOML or YAML config file whose path is provided.
// The format is chosen from the file extension.
func ParseConfig(path string) (*Config, error) {
	// config file overwrites default parameters
	conf := *DefaultConf
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, &conf); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &conf); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: unknown config format %q (want .toml, .yaml or .yml)", path, ext)
	}
	return &conf, nil
}

// Validate reports every invalid parameter of the config.
func (c *Config) Validate() error {
	var errs []error
	if c.SwarmSize <= 0 {
		errs = append(errs, fmt.Errorf("swarm_size must be positive, got %d", c.SwarmSize))
	}
	if c.MinGroupSize < 0 {
		errs = append(errs, fmt.Errorf("min_group_size must not be negative, got %d", c.MinGroupSize))
	}
	if c.Output != "" && c.Stream == "" && c.Steps <= 0 {
		errs = append(errs, fmt.Errorf("steps must be positive, got %d", c.Steps))
	}
	if !(c.Speed > boidswarm.AliveSpeed) {
		errs = append(errs, fmt.Errorf("speed must be greater than %g, got %g", boidswarm.AliveSpeed, c.Speed))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	switch c.Dimensions {
	case 2:
		if c.Origin == "floor" {
			errs = append(errs, errors.New(`origin "floor" requires 3 dimensions`))
		}
	case 3:
		if c.Depth <= 0 {
			errs = append(errs, fmt.Errorf("depth must be positive, got %g", c.Depth))
		}
	default:
		errs = append(errs, fmt.Errorf("dimensions must be 2 or 3, got %d", c.Dimensions))
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("width and height must be positive, got %gx%g", c.Width, c.Height))
	}
	switch c.Origin {
	case "corner", "center", "floor":
	default:
		errs = append(errs, fmt.Errorf("bad origin %q", c.Origin))
	}
	for name, r := range map[string]RuleConfig{
		"alignment":  c.Alignment,
		"cohesion":   c.Cohesion,
		"separation": c.Separation,
	} {
		if r.Factor == 0 {
			continue
		}
		if r.Rows <= 0 || r.Cols <= 0 || r.Depth < 0 {
			errs = append(errs, fmt.Errorf("%s: grid must have positive rows and columns, got %dx%dx%d", name, r.Rows, r.Cols, r.Depth))
		}
		if r.Factor < 0 || r.Factor > 1 {
			errs = append(errs, fmt.Errorf("%s: factor must be in [0, 1], got %g", name, r.Factor))
		}
	}
	if c.Edge.Factor < 0 || c.Edge.Factor > 1 {
		errs = append(errs, fmt.Errorf("edge: factor must be in [0, 1], got %g", c.Edge.Factor))
	}
	if c.Edge.Factor > 0 && c.Edge.Margin <= 0 {
		errs = append(errs, fmt.Errorf("edge: margin must be positive, got %g", c.Edge.Margin))
	}
	if c.RefreshEvery <= 0 {
		errs = append(errs, fmt.Errorf("refresh_every must be positive, got %d", c.RefreshEvery))
	}
	if c.Stream != "" && c.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("frame_rate must be positive, got %g", c.FrameRate))
	}
	if c.StatsEvery < 0 {
		errs = append(errs, fmt.Errorf("stats_every must not be negative, got %d", c.StatsEvery))
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("bad log level %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("bad log format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Bounds returns the world bounds for a world of size w×h(×d).
func (c *Config) Bounds(w, h, d float64) boidswarm.Bounds {
	switch {
	case c.Dimensions == 2 && c.Origin == "center":
		return boidswarm.Bounds{
			Min: mgl64.Vec3{-w / 2, -h / 2, 0},
			Max: mgl64.Vec3{w / 2, h / 2, 0},
			Dim: 2,
		}
	case c.Dimensions == 2:
		return boidswarm.Bounds2D(w, h)
	case c.Origin == "center":
		return boidswarm.Bounds3D(w, h, d)
	case c.Origin == "floor":
		return boidswarm.Floor3D(w, h, d)
	default:
		return boidswarm.Bounds{Max: mgl64.Vec3{w, h, d}, Dim: 3}
	}
}

// WorldBounds returns the world bounds of the config.
func (c *Config) WorldBounds() boidswarm.Bounds {
	return c.Bounds(c.Width, c.Height, c.Depth)
}

// Resized returns the world bounds matching a window or viewer of w×h pixels.
// A 3D world keeps its depth.
func (c *Config) Resized(w, h float64) boidswarm.Bounds {
	return c.Bounds(w, h, c.Depth)
}

// Schedule returns the rule schedule of the config.
func (c *Config) Schedule() boidswarm.Schedule {
	return boidswarm.Schedule{
		Alignment:  boidswarm.Rule{Grid: c.Alignment.Grid(), Factor: c.Alignment.Factor},
		Cohesion:   boidswarm.Rule{Grid: c.Cohesion.Grid(), Factor: c.Cohesion.Factor},
		Separation: boidswarm.Rule{Grid: c.Separation.Grid(), Factor: c.Separation.Factor},
		Edge:       boidswarm.EdgeRule{Margin: c.Edge.Margin, Factor: c.Edge.Factor},
	}
}
