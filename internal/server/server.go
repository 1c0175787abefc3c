package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/logging"
	"github.com/san-kum/heatsim/internal/metrics"
	"github.com/san-kum/heatsim/internal/sim"
)

const DefaultAddr = ":9000"

type Server struct {
	upgrader  websocket.Upgrader
	hub       *Hub
	gate      *Gate
	collector *metrics.Collector
	loop      bool
	log       log.FieldLogger
}

type Option func(*Server)

// WithGate lets clients pause and resume the simulation.
func WithGate(g *Gate) Option { return func(s *Server) { s.gate = g } }

// WithCollector exposes Prometheus metrics on /metrics.
func WithCollector(c *metrics.Collector) Option { return func(s *Server) { s.collector = c } }

// WithLoop restarts the run whenever it finishes.
func WithLoop(loop bool) Option { return func(s *Server) { s.loop = loop } }

func WithLogger(l log.FieldLogger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

func New(opts ...Option) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = NewHub(s.log)
	s.hub.control = s.control
	return s
}

func (s *Server) Hub() *Hub { return s.hub }

// Handler routes /ws, /metrics and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	if s.collector != nil {
		mux.Handle("/metrics", s.collector.Handler())
	}
	return mux
}

// serveWs handles websocket requests from the peer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("upgrade")
		return
	}
	c := &client{hub: s.hub, conn: conn, send: make(chan []byte, sendBuffer)}
	if !s.hub.join(c) {
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (s *Server) control(m Msg) Msg {
	switch m.Type {
	case MsgPause, MsgResume:
		if s.gate == nil {
			return Msg{Type: MsgError, Content: "pausing not enabled"}
		}
		if m.Type == MsgPause {
			s.gate.Pause()
			return Msg{Type: MsgPaused}
		}
		s.gate.Resume()
		return Msg{Type: MsgResumed}
	case MsgStatus:
		status := "running"
		if s.gate != nil && s.gate.Paused() {
			status = MsgPaused
		}
		return Msg{Type: MsgStatus, Content: status}
	default:
		return Msg{Type: MsgError, Content: fmt.Sprintf("no such type: %s", m.Type)}
	}
}

// ListenAndServe is Serve on a TCP listener bound to addr.
func (s *Server) ListenAndServe(ctx context.Context, addr string, sm *sim.Simulator, duration float64, pattern heat.Pattern) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, sm, duration, pattern)
}

// Serve streams sm to websocket clients until ctx is done. The simulation
// runs once, or repeatedly with WithLoop; HTTP keeps serving after it ends.
func (s *Server) Serve(ctx context.Context, ln net.Listener, sm *sim.Simulator, duration float64, pattern heat.Pattern) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sm.AddObserver(s.hub)
	go s.hub.Run(ctx)

	httpSrv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	httpErr := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
		close(httpErr)
	}()
	s.log.WithField("addr", ln.Addr().String()).Info("server listening")

	simErr := make(chan error, 1)
	go func() {
		simErr <- s.runSim(ctx, sm, duration, pattern)
	}()

	var err error
	simDone := false
	select {
	case <-ctx.Done():
	case err = <-httpErr:
	case err = <-simErr:
		simDone = true
		if err == nil {
			// run finished; keep serving until shutdown
			select {
			case <-ctx.Done():
			case err = <-httpErr:
			}
		}
	}

	cancel()
	if !simDone {
		if serr := <-simErr; serr != nil && err == nil {
			err = serr
		}
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if serr := httpSrv.Shutdown(shutdownCtx); serr != nil && err == nil {
		err = serr
	}
	s.log.Info("server stopped")
	return err
}

func (s *Server) runSim(ctx context.Context, sm *sim.Simulator, duration float64, pattern heat.Pattern) error {
	for {
		_, err := sm.Run(ctx, duration, pattern)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			return err
		}
		if !s.loop || ctx.Err() != nil {
			return nil
		}
		s.log.Debug("restarting run")
	}
}
