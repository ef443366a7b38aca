package service

import (
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"sync"
	"time"

	"github.com/virajbhartiya/map-reduce/internal/config"
	"github.com/virajbhartiya/map-reduce/internal/coordinator"
	"github.com/virajbhartiya/map-reduce/internal/functions"
	"github.com/virajbhartiya/map-reduce/internal/logger"
	"github.com/virajbhartiya/map-reduce/internal/protocol"
)

// Server owns the RPC listener, the coordinator and the function
// registry, and runs the periodic worker health sweep while serving.
type Server struct {
	cfg      config.Config
	coord    *coordinator.Coordinator
	registry *functions.Registry
	rpcSrv   *rpc.Server
	log      *logger.Logger

	mu sync.Mutex
	ln net.Listener

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewServer builds a server with a fresh coordinator and the default
// function registry.
func NewServer(cfg config.Config) (*Server, error) {
	coord := coordinator.New(cfg)
	registry := functions.NewRegistry()

	rpcSrv := rpc.NewServer()
	if err := rpcSrv.RegisterName(protocol.ServiceName, New(cfg, coord, registry)); err != nil {
		return nil, fmt.Errorf("failed to register rpc service: %w", err)
	}

	return &Server{
		cfg:      cfg,
		coord:    coord,
		registry: registry,
		rpcSrv:   rpcSrv,
		log:      logger.New("server", cfg.LogLevel),
		done:     make(chan struct{}),
	}, nil
}

// Coordinator exposes the server's coordinator, e.g. for wiring gossip
// discovery or inspecting registry state.
func (s *Server) Coordinator() *coordinator.Coordinator {
	return s.coord
}

// Registry exposes the function registry so callers can register custom
// map and reduce functions before serving.
func (s *Server) Registry() *functions.Registry {
	return s.registry
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddr, err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Serve(ln)
	}()
	return nil
}

// Serve accepts connections on ln until Close is called. It also runs
// the health sweep for the duration. The listener's address is
// reachable through Addr, so tests can bind port 0.
func (s *Server) Serve(ln net.Listener) {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.healthLoop()
	}()

	s.log.Info("listening on %s", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Error("accept failed: %v", err)
			return
		}
		go s.rpcSrv.ServeConn(conn)
	}
}

// healthLoop invokes the worker sweep on the configured cadence until
// the server closes.
func (s *Server) healthLoop() {
	ticker := time.NewTicker(s.cfg.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.coord.CheckWorkerHealth()
		}
	}
}

// Addr returns the address the server is listening on, or "" before
// Serve has been called.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Close stops the health sweep and the accept loop and waits for both
// to exit. In-flight RPC handlers run to completion on their own
// connections.
func (s *Server) Close() error {
	s.closeOnce.Do(func() { close(s.done) })

	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	s.wg.Wait()
	return err
}
