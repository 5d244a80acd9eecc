// Command boids runs boidswarm: grid-partitioned flocking simulations.
//
// Usage
//
// The boids command takes one optional argument:
//  boids [config_file]
// It is the path to a TOML or YAML config file.
// If no config file is specified, an interactive 2D simulation
// with default parameters will run in an OpenGL window.
//
// Modes
//
// The mode is chosen from the config file:
//  replay = "run.h5"        plays a recorded run back in an OpenGL window
//  stream = "localhost:8080" broadcasts frames to WebSocket viewers on /ws
//  output = "run.h5"        records steps frames to an HDF5 file
// Otherwise the simulation runs interactively in an OpenGL window.
// With geojson = "last.geojson", the last frame of a simulation is exported to GeoJSON.
//
// Interactive mode
//
// In interactive mode, the simulation can be paused/resumed with space.
// While in pause, pressing right arrow will perform a single step.
// C toggles coloring by alignment cell, the scroll wheel zooms
// and R resets the zoom.
// In 2D, resizing the window resizes the world.
// Pressing Esc or closing the window will quit.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/PrincetonUniversity/boidswarm"
	"github.com/PrincetonUniversity/boidswarm/export"
	"github.com/google/uuid"
)

const usage = `Usage: boids [config_file]

The first argument is optional and is the path to a TOML or YAML config file.
If no config file is specified, an interactive simulation
with default parameters will run in an OpenGL window.
`

func init() {
	// Most OpenGL functions have to run from the main thread.
	// This is needed to arrange that main() runs on main thread.
	// See https://github.com/golang/go/wiki/LockOSThread for more info.
	runtime.LockOSThread()
}

func main() {
	var conf *Config
	var err error
	switch len(os.Args) {
	case 1:
		c := *DefaultConf
		conf = &c
	case 2:
		conf, err = ParseConfig(os.Args[1])
	default:
		err = fmt.Errorf("%d arguments provided (0 required, 1 optional)\n\n%s", len(os.Args)-1, usage)
	}
	if err != nil {
		Fatal(err)
	}
	if err := conf.Validate(); err != nil {
		Fatal(fmt.Errorf("invalid config:\n%w", err))
	}

	runID := uuid.NewString()
	logger := newLogger(conf, os.Stderr).With("run", runID)

	// setup simulation
	s := setup(conf)
	logger.Info("swarm ready",
		"mode", mode(conf),
		"agents", len(s.Agents),
		"dim", s.Bounds.Dim,
		"min", s.Bounds.Min,
		"max", s.Bounds.Max,
		"workers", s.Workers,
	)

	switch {
	case conf.Replay != "":
		err = RunReplay(conf, s, logger)
	case conf.Stream != "":
		err = RunStream(conf, s, runID, logger)
	case conf.Output != "":
		err = RunHDF5(conf, s, runID, logger)
	default:
		err = RunOpenGL(conf, s, logger)
	}
	if err != nil {
		Fatal(err)
	}

	if conf.GeoJSON != "" && conf.Replay == "" {
		if err := export.WriteGeoJSON(conf.GeoJSON, s.Agents, s.Bounds); err != nil {
			Fatal(err)
		}
		logger.Info("last frame exported", "path", conf.GeoJSON, "frame", s.Frame())
	}
}

// mode returns the name of the mode selected by conf.
func mode(conf *Config) string {
	switch {
	case conf.Replay != "":
		return "replay"
	case conf.Stream != "":
		return "stream"
	case conf.Output != "":
		return "record"
	default:
		return "interactive"
	}
}

// Fatal prints an error on the standard output and exits with a non-zero status.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(1)
}

// newLogger returns a logger writing to w in the format and at the level of conf.
func newLogger(conf *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(conf.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if conf.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// setup initializes the swarm and its parameters.
func setup(conf *Config) *boidswarm.Swarm {
	seed := conf.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := boidswarm.New(conf.SwarmSize, conf.MinGroupSize, conf.WorldBounds(), boidswarm.NewRand(seed))
	s.SetSpeed(conf.Speed)
	s.Workers = conf.Workers
	s.Schedule = conf.Schedule()
	s.Cache.Every = conf.RefreshEvery
	return s
}
