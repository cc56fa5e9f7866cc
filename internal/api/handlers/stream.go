package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/aegis-factor/internal/audit"
	"github.com/wonny/aegis-factor/internal/brain"
	"github.com/wonny/aegis-factor/internal/contracts"
	"github.com/wonny/aegis-factor/pkg/logger"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
	sendBuffer   = 8
)

// RunEvent is pushed to stream subscribers after every completed run
type RunEvent struct {
	RunID         string                   `json:"run_id"`
	CompletedAt   time.Time                `json:"completed_at"`
	RebalanceDate string                   `json:"rebalance_date,omitempty"`
	Members       []contracts.Member       `json:"members"`
	Report        *audit.PerformanceReport `json:"report"`
}

// NewRunEvent summarises a run for the stream
func NewRunEvent(r *brain.RunResult) RunEvent {
	ev := RunEvent{
		RunID:       r.RunID.String(),
		CompletedAt: r.StartedAt.Add(r.Duration),
		Report:      r.Report,
	}
	if r.Selection != nil {
		if dates := r.Selection.Dates(); len(dates) > 0 {
			last := dates[len(dates)-1]
			ev.RebalanceDate = last.Format(dateLayout)
			ev.Members = r.Selection.Members(last)
		}
	}
	return ev
}

// RunStream fans completed runs out to WebSocket subscribers
// GET /ws/runs
type RunStream struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu      sync.Mutex
	clients map[chan RunEvent]struct{}
}

// NewRunStream creates an empty stream
func NewRunStream(log *logger.Logger) *RunStream {
	return &RunStream{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:  log,
		clients: make(map[chan RunEvent]struct{}),
	}
}

// Publish sends a run to every subscriber. A subscriber whose buffer is
// full misses the event rather than blocking the publisher.
func (s *RunStream) Publish(r *brain.RunResult) {
	ev := NewRunEvent(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.clients {
		select {
		case ch <- ev:
		default:
			s.logger.WithField("run_id", ev.RunID).Warn("Stream subscriber too slow, event dropped")
		}
	}
}

// Subscribers returns the number of connected clients
func (s *RunStream) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Serve upgrades the request and streams events until the client leaves
func (s *RunStream) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ch := make(chan RunEvent, sendBuffer)
	s.mu.Lock()
	s.clients[ch] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, ch)
		s.mu.Unlock()
	}()

	// read loop only detects the close frame
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case ev := <-ch:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				s.logger.WithError(err).Debug("Stream write failed")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
