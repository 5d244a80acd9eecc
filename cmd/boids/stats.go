package main

import (
	"log/slog"
	"time"

	"github.com/PrincetonUniversity/boidswarm"
)

// stats periodically logs the number of live agents and the frame timings.
type stats struct {
	every  int // frames between two lines, 0 disables logging
	logger *slog.Logger

	frames  int           // frames since the last line
	updates time.Duration // time spent in Tick since the last line
	since   time.Time     // time of the last line
}

func newStats(every int, logger *slog.Logger) *stats {
	return &stats{every: every, logger: logger, since: time.Now()}
}

// tick runs a frame of s with bounds b and records its duration.
func (st *stats) tick(s *boidswarm.Swarm, b boidswarm.Bounds) {
	start := time.Now()
	s.Tick(b)
	st.record(s, time.Since(start), time.Now())
}

// record accounts for a frame that took d to update and ended at now.
func (st *stats) record(s *boidswarm.Swarm, d time.Duration, now time.Time) {
	if st.every <= 0 {
		return
	}
	st.frames++
	st.updates += d
	if st.frames < st.every {
		return
	}

	var fps float64
	if elapsed := now.Sub(st.since); elapsed > 0 {
		fps = float64(st.frames) / elapsed.Seconds()
	}
	st.logger.Info("stats",
		"frame", s.Frame(),
		"alive", s.Alive(),
		"agents", len(s.Agents),
		"update_ms", float64(st.updates.Microseconds())/1000/float64(st.frames),
		"fps", fps,
	)
	st.frames = 0
	st.updates = 0
	st.since = now
}
