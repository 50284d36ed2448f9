// Package server wires the relay's HTTP transport: the websocket
// upgrade path, a Prometheus scrape endpoint, and graceful shutdown.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/nostrcore/strtr/pkg/chk"
	"github.com/nostrcore/strtr/pkg/conn"
	"github.com/nostrcore/strtr/pkg/ingest"
	"github.com/nostrcore/strtr/pkg/log"
	"github.com/nostrcore/strtr/pkg/pool"
	"github.com/nostrcore/strtr/pkg/store"
)

// Server is the relay's HTTP/WS listener.
type Server struct {
	ctx        context.Context
	cancel     context.CancelFunc
	repo       *store.Repository
	pool       *pool.Pool
	ingestor   *ingest.Ingestor
	httpServer *http.Server
	router     chi.Router
}

// New builds a Server over a fresh repository, pool and ingestor.
func New(ctx context.Context) *Server {
	ctx, cancel := context.WithCancel(ctx)
	repo := store.NewRepository()
	p := pool.New()
	s := &Server{
		ctx:      ctx,
		cancel:   cancel,
		repo:     repo,
		pool:     p,
		ingestor: ingest.New(repo, p),
	}
	r := chi.NewRouter()
	r.Get("/", s.handleRoot)
	r.Handle("/metrics", promhttp.Handler())
	s.router = r
	return s
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Upgrade") == "websocket" {
		s.handleWebsocket(w, r)
		return
	}
	if r.Header.Get("Accept") == "application/nostr+json" {
		s.handleRelayInfo(w, r)
		return
	}
	http.NotFound(w, r)
}

func (s *Server) handleRelayInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/nostr+json")
	_, _ = w.Write([]byte(`{"name":"strtr","description":"in-memory relay core","supported_nips":[1,9]}`))
}

// connWriter adapts a coder/websocket connection to conn.Writer.
type connWriter struct {
	ctx context.Context
	ws  *websocket.Conn
}

func (w connWriter) WriteFrame(p []byte) error {
	return w.ws.Write(w.ctx, websocket.MessageText, p)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, nil)
	if chk.E(err) {
		return
	}
	ctx := s.ctx
	c := conn.New(connWriter{ctx: ctx, ws: ws}, s.repo, s.pool, s.ingestor)
	defer c.Close()
	defer ws.Close(websocket.StatusNormalClosure, "")

	for {
		_, raw, err := ws.Read(ctx)
		if err != nil {
			if chk.T(err) {
				return
			}
			return
		}
		c.HandleFrame(ctx, raw)
	}
}

// Start binds a TCP listener at host:port and serves HTTP requests
// until Shutdown is called.
func (s *Server) Start(host string, port int) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	log.I.F("starting relay listener at %s", addr)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.httpServer = &http.Server{
		Handler:           cors.AllowAll().Handler(s.router),
		Addr:              addr,
		ReadHeaderTimeout: 7 * time.Second,
		IdleTimeout:       28 * time.Second,
	}
	err = s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops accepting new connections and cancels any
// in-flight server-scoped work.
func (s *Server) Shutdown() {
	log.I.Ln("shutting down relay")
	s.cancel()
	if s.httpServer != nil {
		chk.E(s.httpServer.Shutdown(context.Background()))
	}
}
