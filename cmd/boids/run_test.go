package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/PrincetonUniversity/boidswarm"
	"github.com/PrincetonUniversity/boidswarm/stream"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	c := *DefaultConf
	c.SwarmSize = 50
	c.Seed = 3
	c.Speed = 1.5
	c.Workers = 4
	c.RefreshEvery = 10
	c.Cohesion.Factor = 0

	s := setup(&c)
	require.Len(t, s.Agents, 50)
	assert.Equal(t, c.WorldBounds(), s.Bounds)
	assert.Equal(t, 4, s.Workers)
	assert.Equal(t, 10, s.Cache.Every)
	assert.Equal(t, c.Schedule(), s.Schedule)
	for _, a := range s.Agents {
		assert.InDelta(t, 1.5, a.Vel.Len(), 1e-9)
	}

	// same seed, same swarm
	assert.Equal(t, s.Agents, setup(&c).Agents)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	c := *DefaultConf
	c.LogFormat = "json"
	c.LogLevel = "warn"
	logger := newLogger(&c, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "frame", 3)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, 3.0, line["frame"])

	buf.Reset()
	c.LogFormat = "text"
	c.LogLevel = "debug"
	newLogger(&c, &buf).Debug("text line")
	assert.Contains(t, buf.String(), `msg="text line"`)
}

func TestStats(t *testing.T) {
	var buf bytes.Buffer
	c := *DefaultConf
	c.LogFormat = "json"
	logger := newLogger(&c, &buf)

	s := boidswarm.New(20, 0, boidswarm.Bounds2D(100, 100), boidswarm.NewRand(1))
	st := newStats(3, logger)
	start := st.since
	for i := 0; i < 5; i++ {
		s.Tick(s.Bounds)
		st.record(s, 2*time.Millisecond, start.Add(time.Duration(i+1)*100*time.Millisecond))
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &line))
	assert.Equal(t, "stats", line["msg"])
	assert.Equal(t, 3.0, line["frame"])
	assert.Equal(t, 20.0, line["alive"])
	assert.InDelta(t, 2.0, line["update_ms"], 1e-9)
	assert.InDelta(t, 10.0, line["fps"], 1e-6)

	// disabled
	buf.Reset()
	off := newStats(0, logger)
	for i := 0; i < 10; i++ {
		off.tick(s, s.Bounds)
	}
	assert.Empty(t, buf.String())
	assert.Equal(t, 15, s.Frame())
}

func TestServeStream(t *testing.T) {
	c := *DefaultConf
	c.SwarmSize = 30
	c.Seed = 5
	c.Stream = "127.0.0.1:0"
	c.FrameRate = 200
	c.StatsEvery = 0
	s := setup(&c)

	ln, err := net.Listen("tcp", c.Stream)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- serveStream(ctx, ln, &c, s, "run-test", newLogger(&c, &bytes.Buffer{})) }()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	var hello stream.Hello
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "config", hello.Type)
	assert.Equal(t, "run-test", hello.Run)
	assert.Equal(t, [3]float64{800, 600, 0}, hello.Max)

	var f stream.Frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, "frame", f.Type)
	assert.Len(t, f.Agents, 30)
	for _, a := range f.Agents {
		assert.True(t, a.Pos[0] >= 0 && a.Pos[0] <= 800)
	}

	// a resize shrinks the world of the following frames
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "resize", "w": 100, "h": 80}))
	assert.Eventually(t, func() bool {
		var f stream.Frame
		if err := conn.ReadJSON(&f); err != nil {
			return false
		}
		for _, a := range f.Agents {
			if a.Pos[0] > 100 || a.Pos[1] > 80 {
				return false
			}
		}
		return true
	}, 5*time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not stop")
	}
}
