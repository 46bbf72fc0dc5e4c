// Package hostbridge owns the websocket connection to the host application.
// The host dials in, announces itself and its webview windows, forwards
// page events, and answers capability requests. One host is attached at a
// time; a new connection replaces the previous one. The handler implements
// the host capability interfaces on top of this connection.
package hostbridge

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/saker-ai/tauri-agent/internal/bridge"
	"github.com/saker-ai/tauri-agent/internal/window"
)

// Handler accepts host connections and routes their messages.
type Handler struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader
	bridge   *bridge.Bridge
	registry *window.Registry

	mu      sync.Mutex
	current *hostSession
	appName string

	queryTimeout time.Duration
	inputTimeout time.Duration
}

// hostSession is one attached host connection.
type hostSession struct {
	conn   *websocket.Conn
	sendMu sync.Mutex
}

func (s *hostSession) sendJSON(v any) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	return s.conn.WriteJSON(v)
}

// NewHandler executes the newHandler function.
func NewHandler(logger *zap.Logger, br *bridge.Bridge, registry *window.Registry, queryTimeout, inputTimeout time.Duration) *Handler {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	if inputTimeout <= 0 {
		inputTimeout = 30 * time.Second
	}
	return &Handler{
		logger:   logger,
		bridge:   br,
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		queryTimeout: queryTimeout,
		inputTimeout: inputTimeout,
	}
}

// Handle upgrades the request and runs the host read loop until the
// connection drops.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("bridge upgrade failed", zap.Error(err))
		return
	}

	sess := &hostSession{conn: conn}
	if old := h.attach(sess); old != nil {
		h.logger.Info("host application replaced",
			zap.String("remote_addr", conn.RemoteAddr().String()))
		_ = old.conn.Close()
	} else {
		h.logger.Info("host application attached",
			zap.String("remote_addr", conn.RemoteAddr().String()))
	}
	defer func() {
		if h.detach(sess) {
			h.logger.Info("host application detached")
		}
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg incomingMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Warn("invalid bridge message", zap.Error(err))
			continue
		}
		h.dispatch(sess, msg)
	}
}

func (h *Handler) dispatch(sess *hostSession, msg incomingMessage) {
	switch msg.Type {
	case msgHello:
		h.onHello(sess, msg)
	case msgWindows:
		h.registry.Replace(msg.Windows)
		h.logger.Debug("window set updated", zap.Int("count", len(msg.Windows)))
	case msgEvent:
		h.onEvent(msg)
	case msgReply:
		h.onReply(msg)
	case msgHeartbeat:
		// Keepalive only.
	default:
		h.logger.Warn("unknown bridge message type", zap.String("type", msg.Type))
	}
}

func (h *Handler) onHello(sess *hostSession, msg incomingMessage) {
	h.mu.Lock()
	if h.current == sess {
		h.appName = msg.ApplicationName
	}
	h.mu.Unlock()
	h.registry.Replace(msg.Windows)
	h.logger.Info("host application announced",
		zap.String("application_name", msg.ApplicationName),
		zap.Int("windows", len(msg.Windows)))
}

func (h *Handler) onEvent(msg incomingMessage) {
	if msg.Event == "" {
		h.logger.Warn("event message without event name")
		return
	}
	if !h.bridge.Resolve(msg.Event, msg.Payload) {
		h.logger.Debug("event without waiter", zap.String("event", msg.Event))
	}
}

func (h *Handler) onReply(msg incomingMessage) {
	if msg.RequestID == "" {
		h.logger.Warn("reply message without request id")
		return
	}
	reply := hostReply{Data: msg.Data, Error: msg.Error}
	if msg.Success != nil {
		reply.Success = *msg.Success
	}
	raw, err := json.Marshal(reply)
	if err != nil {
		h.logger.Warn("marshal host reply", zap.Error(err))
		return
	}
	if !h.bridge.Resolve(msg.RequestID, raw) {
		h.logger.Debug("reply without waiter", zap.String("request_id", msg.RequestID))
	}
}

// attach makes sess the current host and returns the session it replaced,
// if any. The application name resets until the new host announces itself.
func (h *Handler) attach(sess *hostSession) *hostSession {
	h.mu.Lock()
	old := h.current
	h.current = sess
	h.appName = ""
	h.mu.Unlock()
	return old
}

// detach clears sess if it is still current and reports whether it was.
func (h *Handler) detach(sess *hostSession) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current != sess {
		return false
	}
	h.current = nil
	h.appName = ""
	return true
}

func (h *Handler) session() *hostSession {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Status describes the bridge for the health endpoint.
type Status struct {
	Attached        bool   `json:"attached"`
	ApplicationName string `json:"application_name,omitempty"`
	Windows         int    `json:"windows"`
}

// Status executes the status method.
func (h *Handler) Status() Status {
	h.mu.Lock()
	attached := h.current != nil
	name := h.appName
	h.mu.Unlock()
	return Status{
		Attached:        attached,
		ApplicationName: name,
		Windows:         h.registry.Len(),
	}
}
