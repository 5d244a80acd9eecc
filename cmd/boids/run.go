package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PrincetonUniversity/boidswarm"
	"github.com/PrincetonUniversity/boidswarm/hdf5"
	"github.com/PrincetonUniversity/boidswarm/opengl"
	"github.com/PrincetonUniversity/boidswarm/stream"
)

// RunOpenGL runs an interactive simulation in an OpenGL window.
func RunOpenGL(conf *Config, s *boidswarm.Swarm, logger *slog.Logger) error {
	st := newStats(conf.StatsEvery, logger)
	b := s.Bounds
	return opengl.Run(s, &opengl.Config{
		Title:  "boids",
		Width:  int(conf.Width),
		Height: int(conf.Height),
		Step:   func() { st.tick(s, b) },
		Resize: func(w, h int) {
			if conf.Dimensions != 2 || w <= 0 || h <= 0 {
				return
			}
			b = conf.Resized(float64(w), float64(h))
			logger.Debug("world resized", "width", w, "height", h)
		},
		CellGrid: conf.Alignment.Grid(),
	})
}

// RunReplay plays the agents recorded in an HDF5 file back in an OpenGL window.
func RunReplay(conf *Config, s *boidswarm.Swarm, logger *slog.Logger) error {
	l, err := hdf5.NewLoader(conf.Replay, "agents")
	if err != nil {
		return err
	}
	defer l.Close()

	// the display is sized after the first frame
	if err := l.Load(&s.Agents); err != nil {
		return err
	}
	logger.Info("replaying", "path", conf.Replay, "frames", l.Len(), "agents", len(s.Agents))

	failed := false
	return opengl.Run(s, &opengl.Config{
		Title:  "boids - " + conf.Replay,
		Width:  int(conf.Width),
		Height: int(conf.Height),
		Step: func() {
			if err := l.Load(&s.Agents); err != nil && !failed {
				logger.Error("load failed", "error", err)
				failed = true
			}
		},
		CellGrid: conf.Alignment.Grid(),
	})
}

// RunHDF5 runs a simulation and saves data to an HDF5 file.
func RunHDF5(conf *Config, s *boidswarm.Swarm, runID string, logger *slog.Logger) error {
	n := len(s.Agents)
	datasets := []*hdf5.Dataset{hdf5.AgentsDataset(n)}
	if conf.Alignment.Factor != 0 {
		datasets = append(datasets, hdf5.CellsDataset("alignment_cells", conf.Alignment.Grid(), n))
	}

	st := newStats(conf.StatsEvery, logger)
	b := s.Bounds
	tenth := conf.Steps / 10
	if tenth == 0 {
		tenth = 1
	}
	start := time.Now()
	err := hdf5.Run(s, &hdf5.Config{
		Output:   conf.Output,
		Steps:    conf.Steps,
		Step:     func() { st.tick(s, b) },
		RunID:    runID,
		Datasets: datasets,
		Meta:     conf,
		Progress: func(step, total int) {
			if step%tenth == 0 {
				logger.Info("recording", "step", step, "total", total)
			}
		},
	})
	if err != nil {
		return err
	}
	logger.Info("recorded", "path", conf.Output, "steps", conf.Steps, "elapsed", time.Since(start))
	return nil
}

// RunStream broadcasts a running simulation to WebSocket viewers
// until the process is interrupted.
func RunStream(conf *Config, s *boidswarm.Swarm, runID string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", conf.Stream)
	if err != nil {
		return err
	}
	return serveStream(ctx, ln, conf, s, runID, logger)
}

// serveStream serves viewers on ln and runs a frame of s at the configured
// frame rate until ctx is done.
// Each frame is broadcast before the swarm moves on to the next one.
func serveStream(ctx context.Context, ln net.Listener, conf *Config, s *boidswarm.Swarm, runID string, logger *slog.Logger) error {
	hub := stream.NewHub(runID, s.Bounds, logger)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	logger.Info("streaming", "addr", ln.Addr().String(), "path", "/ws")

	st := newStats(conf.StatsEvery, logger)
	ticker := time.NewTicker(time.Duration(float64(time.Second) / conf.FrameRate))
	defer ticker.Stop()

	b := s.Bounds
	var snap []boidswarm.Agent
	for {
		select {
		case <-ctx.Done():
			hub.Close()
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			logger.Info("stream stopped", "frame", s.Frame())
			return srv.Shutdown(shutdown)
		case err := <-errc:
			hub.Close()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case r := <-hub.Resizes():
			if conf.Dimensions != 2 {
				logger.Debug("resize ignored in 3D", "w", r.Width, "h", r.Height)
				continue
			}
			b = conf.Resized(r.Width, r.Height)
			hub.SetBounds(b)
			logger.Debug("world resized", "width", r.Width, "height", r.Height)
		case <-ticker.C:
			snap = s.Snapshot(snap)
			hub.Broadcast(stream.NewFrame(s.Frame(), snap))
			st.tick(s, b)
		}
	}
}
