// Package stream broadcasts boidswarm frames to browser viewers over WebSockets.
//
// Every message is a JSON object with a "type" field.
// The server sends a "config" message when a viewer connects
// and then one "frame" message per broadcast frame.
// Viewers may send {"type": "resize", "w": 800, "h": 600}
// to ask for new world bounds.
package stream

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/PrincetonUniversity/boidswarm"
	"github.com/gorilla/websocket"
)

// State is the state of an agent as sent to viewers.
type State struct {
	Pos   [3]float64 `json:"p"`
	Vel   [3]float64 `json:"v"`
	Alive bool       `json:"alive"`
}

// A Frame is a snapshot of the swarm sent to every viewer.
type Frame struct {
	Type   string  `json:"type"`
	Frame  int     `json:"frame"`
	Alive  int     `json:"alive"`
	Agents []State `json:"agents"`
}

// NewFrame builds the frame number n from a snapshot of the agents.
func NewFrame(n int, agents []boidswarm.Agent) Frame {
	f := Frame{Type: "frame", Frame: n, Agents: make([]State, len(agents))}
	for i := range agents {
		f.Agents[i] = State{Pos: agents[i].Pos, Vel: agents[i].Vel, Alive: agents[i].IsAlive()}
		if f.Agents[i].Alive {
			f.Alive++
		}
	}
	return f
}

// Hello is the first message sent to a viewer.
type Hello struct {
	Type string     `json:"type"`
	Run  string     `json:"run"`
	Dim  int        `json:"dim"`
	Min  [3]float64 `json:"min"`
	Max  [3]float64 `json:"max"`
}

// A Resize is a request from a viewer for new world bounds.
type Resize struct {
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// message is a message received from a viewer.
type message struct {
	Type string  `json:"type"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
}

// DefaultWriteTimeout is the default time allowed to write a message to a viewer.
const DefaultWriteTimeout = 5 * time.Second

// client is a connected viewer. Writes are serialized by mu.
type client struct {
	conn    *websocket.Conn
	timeout time.Duration
	mu      sync.Mutex
}

func (c *client) send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(v)
}

// write writes v with a deadline. The caller holds mu.
func (c *client) write(v interface{}) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

// A Hub keeps track of connected viewers.
type Hub struct {
	runID  string
	logger *slog.Logger

	// WriteTimeout bounds every write to a viewer. A viewer that does not
	// keep up is disconnected instead of stalling Broadcast.
	WriteTimeout time.Duration

	upgrader websocket.Upgrader
	resizes  chan Resize

	mu      sync.Mutex
	bounds  boidswarm.Bounds
	clients map[*client]struct{}
	closed  bool
}

// NewHub returns a hub for the run identified by runID.
// A nil logger discards logs.
func NewHub(runID string, b boidswarm.Bounds, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(discardHandler{})
	}
	return &Hub{
		runID:        runID,
		logger:       logger,
		WriteTimeout: DefaultWriteTimeout,
		upgrader:     websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		resizes:      make(chan Resize, 16),
		bounds:       b,
		clients:      make(map[*client]struct{}),
	}
}

// Resizes returns the channel of resize requests sent by viewers.
// Requests are dropped when nobody reads them fast enough.
func (h *Hub) Resizes() <-chan Resize {
	return h.resizes
}

// SetBounds changes the bounds announced to new viewers.
func (h *Hub) SetBounds(b boidswarm.Bounds) {
	h.mu.Lock()
	h.bounds = b
	h.mu.Unlock()
}

// Clients returns the number of connected viewers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the connection to a WebSocket and serves a viewer
// until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	c := &client{conn: conn, timeout: h.WriteTimeout}

	// c.mu is held until the hello is written so that no frame can come first
	c.mu.Lock()
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		c.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	b := h.bounds
	h.mu.Unlock()

	hello := Hello{Type: "config", Run: h.runID, Dim: b.Dim, Min: b.Min, Max: b.Max}
	err = c.write(hello)
	c.mu.Unlock()
	if err != nil {
		h.remove(c)
		return
	}
	h.logger.Info("viewer connected", "remote", r.RemoteAddr)

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "resize":
			if msg.W <= 0 || msg.H <= 0 {
				h.logger.Warn("bad resize request", "w", msg.W, "h", msg.H)
				continue
			}
			select {
			case h.resizes <- Resize{Width: msg.W, Height: msg.H}:
			default:
			}
		default:
			h.logger.Debug("unknown message", "type", msg.Type)
		}
	}

	h.remove(c)
	h.logger.Info("viewer disconnected", "remote", r.RemoteAddr)
}

// Broadcast sends f to every viewer. Viewers that fail are disconnected.
func (h *Hub) Broadcast(f Frame) {
	h.mu.Lock()
	list := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	h.mu.Unlock()

	for _, c := range list {
		if err := c.send(f); err != nil {
			h.logger.Warn("send failed", "error", err)
			h.remove(c)
		}
	}
}

// Close disconnects every viewer and refuses new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
	}
	return nil
}

// remove disconnects c.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.conn.Close()
	}
}
