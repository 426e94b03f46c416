package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/dicepoker/internal/bot"
	"github.com/lox/dicepoker/internal/randutil"
	"github.com/lox/dicepoker/internal/roomcode"
)

const shutdownTimeout = 5 * time.Second

// Server represents the WebSocket server
type Server struct {
	cfg         Config
	upgrader    websocket.Upgrader
	registry    *Registry
	reaper      *Reaper
	clock       quartz.Clock
	connections map[*Connection]bool
	mu          sync.Mutex
	logger      *log.Logger
	httpServer  *http.Server
}

// Option configures a Server.
type Option func(*options)

type options struct {
	clock quartz.Clock
	rng   *randutil.Source
}

// WithClock replaces the real clock, for tests.
func WithClock(clock quartz.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithSeed makes dice, bot choices and room codes reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) { o.rng = randutil.NewSource(seed) }
}

// NewServer creates a new WebSocket server
func NewServer(cfg Config, logger *log.Logger, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	o := options{clock: quartz.NewReal()}
	for _, opt := range opts {
		opt(&o)
	}

	var codes *roomcode.Generator
	if o.rng == nil {
		o.rng = randutil.NewSource(time.Now().UnixNano())
		codes = roomcode.NewGenerator(nil)
	} else {
		codes = roomcode.NewGenerator(o.rng)
	}

	bots, err := bot.NewFactory(cfg.BotPresets, o.rng, logger)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry(cfg, RegistryDeps{
		Codes:  codes,
		Bots:   bots,
		Dice:   o.rng,
		Clock:  o.clock,
		Logger: logger,
	})

	s := &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		registry:    registry,
		reaper:      NewReaper(registry, o.clock, cfg.ReapInterval, cfg.IdleTimeout, logger),
		clock:       o.clock,
		connections: make(map[*Connection]bool),
		logger:      logger.WithPrefix("server"),
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Registry exposes the room registry.
func (s *Server) Registry() *Registry { return s.registry }

// Handler returns the HTTP routes served by the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/rooms", s.handleRooms)
	return mux
}

// Run serves until ctx is cancelled, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	s.logger.Info("Starting WebSocket server", "addr", ln.Addr().String())

	g.Go(func() error {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.reaper.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		return s.Shutdown()
	})

	return g.Wait()
}

// Shutdown stops accepting connections, closes clients and stops every room.
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.httpServer.Shutdown(shutdownCtx)

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	s.registry.Close()
	return err
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, newConnectionID(), s.cfg.SendBuffer, s.registry, s.logger)
	s.mu.Lock()
	s.connections[client] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "conn", client.ID(), "total", total)

	client.Start()

	go func() {
		<-client.Done()
		s.mu.Lock()
		delete(s.connections, client)
		total := len(s.connections)
		s.mu.Unlock()

		if roomID := client.Room(); roomID != "" {
			s.registry.Disconnect(client.ID(), roomID)
		}
		s.logger.Info("Client disconnected", "conn", client.ID(), "total", total)
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	rooms := s.registry.Rooms()
	if rooms == nil {
		rooms = []RoomSummary{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rooms); err != nil {
		s.logger.Error("Failed to encode room list", "error", err)
	}
}

func newConnectionID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
