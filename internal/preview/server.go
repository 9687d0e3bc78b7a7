// Package preview mirrors every submitted strip buffer to websocket clients.
package preview

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/coreman2200/arcaluminis-brx/internal/strip"
)

// Server is a strip.Backend that never fails: clients that cannot keep up
// are dropped.
type Server struct {
	mu        sync.RWMutex
	log       zerolog.Logger
	width     int
	height    int
	frameID   uint64
	startTime time.Time
	clients   map[*websocket.Conn]bool
	closed    bool
	srv       *http.Server
}

type message struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	RGB     []byte `json:"rgb"` // strip order, 3 bytes per LED as R,G,B
}

func New(width, height int, log zerolog.Logger) *Server {
	return &Server{
		log:       log,
		width:     width,
		height:    height,
		startTime: time.Now(),
		clients:   map[*websocket.Conn]bool{},
	}
}

// Handler serves /ws and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/health", s.HandleHealth)
	return mux
}

// Listen binds addr and serves Handler on it in the background until Close.
// Bind errors are returned to the caller.
func (s *Server) Listen(addr string) (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.New("preview: server closed")
	}
	if s.srv != nil {
		return nil, errors.New("preview: already listening")
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("preview listen %q: %w", addr, err)
	}
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.srv = srv

	s.log.Info().Stringer("addr", ln.Addr()).Msg("preview server starting")
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("preview server")
		}
	}()
	return ln.Addr(), nil
}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.clients[conn] = true
	s.mu.Unlock()

	go func() {
		defer s.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"count":    s.width * s.height,
		"clients":  len(s.clients),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Write broadcasts leds to every client.
func (s *Server) Write(leds []strip.Color) error {
	rgb := make([]byte, len(leds)*3)
	for i, c := range leds {
		rgb[i*3+0], rgb[i*3+1], rgb[i*3+2] = c.R(), c.G(), c.B()
	}

	s.mu.Lock()
	s.frameID++
	b, _ := json.Marshal(message{
		T:       time.Now().UnixNano(),
		FrameID: s.frameID,
		Width:   s.width,
		Height:  s.height,
		RGB:     rgb,
	})
	var stale []*websocket.Conn
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			s.log.Debug().Err(err).Msg("write frame")
			stale = append(stale, c)
		}
	}
	s.mu.Unlock()

	for _, c := range stale {
		s.drop(c)
	}
	return nil
}

// Clients is the number of connected websocket clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close disconnects clients and stops the HTTP server if it was started.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	srv := s.srv
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		s.drop(c)
	}
	if srv != nil {
		return srv.Close()
	}
	return nil
}

func (s *Server) drop(c *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.Close()
}
