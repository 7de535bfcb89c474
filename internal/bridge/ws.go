// Package bridge exposes engine state transitions to other processes over
// WebSocket. Each connected client receives the current reminder list,
// permission state and scheduled count on connect, then every transition as
// it happens.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	cws "github.com/coder/websocket"
	"github.com/eventlife/eventlife/internal/engine"
	"github.com/eventlife/eventlife/internal/logging"
	"github.com/eventlife/eventlife/internal/model"
)

// Frame types sent over the stream.
const (
	FrameReminders  = "reminders"
	FramePermission = "permission"
	FrameCount      = "count"
)

// Frame is one state transition pushed to a client.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// RearmFunc rebuilds the reminder batch from stored events.
type RearmFunc func(ctx context.Context) error

// Server streams engine state over WebSocket and accepts engine commands
// over plain HTTP.
type Server struct {
	eng    *engine.Engine
	addr   string
	rearm  RearmFunc
	server *http.Server
	mu     sync.Mutex
}

// NewServer creates a bridge server for the given engine. rearm may be nil
// when the host process has no event store to re-arm from.
func NewServer(eng *engine.Engine, addr string, rearm RearmFunc) *Server {
	return &Server{eng: eng, addr: addr, rearm: rearm}
}

// Handler returns the HTTP handler serving the bridge endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	mux.HandleFunc("GET /v1/state", s.handleState)
	mux.HandleFunc("POST /v1/reminders/read", s.handleRead)
	mux.HandleFunc("POST /v1/reminders/dismiss", s.handleDismiss)
	mux.HandleFunc("POST /v1/reminders/clear", s.handleClear)
	mux.HandleFunc("POST /v1/rearm", s.handleRearm)
	mux.HandleFunc("POST /v1/permission/request", s.handleRequestPermission)
	return mux
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}
	s.mu.Unlock()

	logging.Info("bridge listening", logging.KeyConn, s.addr)
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// StateSnapshot is the response body of /v1/state.
type StateSnapshot struct {
	Reminders  []model.Reminder `json:"reminders"`
	Permission bool             `json:"permission"`
	Count      int              `json:"count"`
	Time       time.Time        `json:"time"`
}

// handleState serves a one-shot JSON snapshot of the current state.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap := StateSnapshot{
		Reminders:  s.eng.Reminders(),
		Permission: s.eng.PermissionGranted(),
		Count:      s.eng.ScheduledCount(),
		Time:       time.Now().UTC(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		logging.Warn("state encode failed", logging.KeyError, err)
	}
}

// reminderRequest is the body of the read and dismiss endpoints.
type reminderRequest struct {
	ID string `json:"id"`
}

func decodeReminderID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, "missing reminder id", http.StatusBadRequest)
		return "", false
	}
	return req.ID, true
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	id, ok := decodeReminderID(w, r)
	if !ok {
		return
	}
	s.eng.MarkRead(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	id, ok := decodeReminderID(w, r)
	if !ok {
		return
	}
	s.eng.Dismiss(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.eng.ClearAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRearm(w http.ResponseWriter, r *http.Request) {
	if s.rearm == nil {
		http.Error(w, "re-arm not supported", http.StatusNotImplemented)
		return
	}
	if err := s.rearm(r.Context()); err != nil {
		logging.Warn("re-arm failed", logging.KeyError, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRequestPermission runs the capability's permission flow and reports
// the outcome. The flow may block on a user prompt, so the request context
// bounds it.
func (s *Server) handleRequestPermission(w http.ResponseWriter, r *http.Request) {
	granted := s.eng.RequestPermission(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]bool{"granted": granted}); err != nil {
		logging.Warn("permission encode failed", logging.KeyError, err)
	}
}

// handleStream upgrades to WebSocket and streams transitions until the
// client disconnects or the server shuts down.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		logging.Warn("websocket accept failed", logging.KeyError, err)
		return
	}
	defer conn.Close(cws.StatusInternalError, "stream aborted")

	logging.Debug("bridge client connected", logging.KeyConn, r.RemoteAddr)

	// Reads are discarded; the returned context ends when the client goes
	// away or sends a close frame.
	ctx := conn.CloseRead(r.Context())

	remSub := s.eng.ObserveReminders()
	defer remSub.Cancel()
	permSub := s.eng.ObservePermission()
	defer permSub.Cancel()
	countSub := s.eng.ObserveCount()
	defer countSub.Cancel()

	// Funnel the three observer streams into one ordered write queue so only
	// one goroutine ever writes to the connection.
	frames := make(chan Frame, 16)
	var wg sync.WaitGroup
	fctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg.Add(3)
	go forward(fctx, &wg, frames, FrameReminders, remSub.C())
	go forward(fctx, &wg, frames, FramePermission, permSub.C())
	go forward(fctx, &wg, frames, FrameCount, countSub.C())
	go func() {
		wg.Wait()
		close(frames)
	}()

	for {
		select {
		case <-ctx.Done():
			conn.Close(cws.StatusNormalClosure, "")
			logging.Debug("bridge client disconnected", logging.KeyConn, r.RemoteAddr)
			return
		case frame, ok := <-frames:
			if !ok {
				conn.Close(cws.StatusGoingAway, "engine closed")
				return
			}
			if err := writeFrame(ctx, conn, frame); err != nil {
				logging.Debug("bridge write failed", logging.KeyError, err)
				return
			}
		}
	}
}

// forward copies transitions from one observer stream into the shared queue.
func forward[T any](ctx context.Context, wg *sync.WaitGroup, frames chan<- Frame, typ string, in <-chan T) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-in:
			if !ok {
				return
			}
			select {
			case frames <- Frame{Type: typ, Data: v}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func writeFrame(ctx context.Context, conn *cws.Conn, frame Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	wctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return conn.Write(wctx, cws.MessageText, data)
}
