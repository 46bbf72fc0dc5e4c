package server

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/saker-ai/tauri-agent/internal/protocol"
)

// HandlerFunc executes one command against its raw payload.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) (any, error)

// Dispatcher routes requests to registered command handlers and renders
// every outcome as a response envelope.
type Dispatcher struct {
	logger   *zap.Logger
	handlers map[string]HandlerFunc
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		logger:   logger,
		handlers: map[string]HandlerFunc{},
	}
}

// Register binds name to fn. A later registration for the same name wins.
func (d *Dispatcher) Register(name string, fn HandlerFunc) {
	d.handlers[name] = fn
}

// Dispatch runs the handler for req. It never panics outward: a handler
// panic is logged and reported as a failed response.
func (d *Dispatcher) Dispatch(ctx context.Context, req protocol.Request) (resp protocol.Response) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("command handler panicked",
				zap.String("command", req.Name),
				zap.Any("panic", r))
			resp = protocol.Fail(fmt.Sprintf("internal error: %v", r))
		}
	}()

	handler, ok := d.handlers[req.Name]
	if !ok {
		d.logger.Debug("unknown command", zap.String("command", req.Name))
		return protocol.Fail("unknown command")
	}
	data, err := handler(ctx, req.Payload)
	if err != nil {
		d.logger.Warn("command failed",
			zap.String("command", req.Name),
			zap.Error(err))
		return protocol.Fail(err.Error())
	}
	return protocol.OK(data)
}
