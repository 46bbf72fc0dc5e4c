// Package server exposes the command surface over a Unix domain socket.
// Clients send one JSON request per line and receive one JSON response
// per line; connections stay open across requests and requests on one
// connection are answered in order.
package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/saker-ai/tauri-agent/internal/errdefs"
	"github.com/saker-ai/tauri-agent/internal/protocol"
)

// maxLineBytes bounds a single request line. Payloads are small control
// messages; anything past this is a protocol violation.
const maxLineBytes = 1024 * 1024

// Server accepts connections on a Unix socket and feeds requests to a
// dispatcher.
type Server struct {
	logger     *zap.Logger
	path       string
	dispatcher *Dispatcher

	listener net.Listener
	ctx      context.Context
	cancel   context.CancelFunc

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
}

// New creates a server for the given socket path. Call Listen before
// Serve.
func New(logger *zap.Logger, path string, dispatcher *Dispatcher) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		logger:     logger,
		path:       path,
		dispatcher: dispatcher,
		ctx:        ctx,
		cancel:     cancel,
		conns:      map[net.Conn]struct{}{},
	}
}

// Path returns the socket path the server binds.
func (s *Server) Path() string {
	return s.path
}

// Listen binds the socket. A stale socket file left by a previous run is
// removed first; a regular file at the path is never touched.
func (s *Server) Listen() error {
	if info, err := os.Stat(s.path); err == nil {
		if info.Mode()&os.ModeSocket == 0 {
			return errdefs.Newf(errdefs.BindFailed, "path %s exists and is not a socket", s.path)
		}
		if err := os.Remove(s.path); err != nil {
			return errdefs.Wrap(errdefs.BindFailed, "remove stale socket", err)
		}
		s.logger.Info("removed stale socket", zap.String("path", s.path))
	}
	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return errdefs.Wrap(errdefs.BindFailed, fmt.Sprintf("listen on %s", s.path), err)
	}
	s.listener = ln
	s.logger.Info("command socket listening", zap.String("path", s.path))
	return nil
}

// Serve accepts connections until Close. It returns nil after a clean
// shutdown.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isClosed() {
				return nil
			}
			return err
		}
		s.track(conn)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer func() {
		s.untrack(conn)
		conn.Close()
	}()

	enc := json.NewEncoder(conn)
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var req protocol.Request
		if err := json.Unmarshal(line, &req); err != nil {
			if err := enc.Encode(protocol.Fail("invalid json: " + err.Error())); err != nil {
				return
			}
			continue
		}
		if err := enc.Encode(s.dispatcher.Dispatch(s.ctx, req)); err != nil {
			return
		}
	}
	if err := scanner.Err(); err != nil && !s.isClosed() {
		s.logger.Debug("connection read failed", zap.Error(err))
	}
}

// Close stops accepting, cancels in-flight handlers, and closes open
// connections. The listener unlinks the socket file as it closes.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conns := make([]net.Conn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	s.cancel()
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	for _, conn := range conns {
		conn.Close()
	}
	return err
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}
