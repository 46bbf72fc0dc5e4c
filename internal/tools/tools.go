// Package tools implements the automation commands that drive the host
// application: DOM queries, script evaluation, localStorage management,
// window operations, and input simulation. Webview-bound operations emit an
// event or evaluate a script and then wait on the bridge for the page to
// answer; host-bound operations go through the capability interfaces.
package tools

import (
	"time"

	"go.uber.org/zap"

	"github.com/saker-ai/tauri-agent/internal/bridge"
	"github.com/saker-ai/tauri-agent/internal/errdefs"
	"github.com/saker-ai/tauri-agent/internal/host"
	"github.com/saker-ai/tauri-agent/internal/window"
)

// Event names shared with the listeners the host page installs. Payloads
// bound for the page use camelCase keys, matching its JavaScript side.
const (
	eventGetDOM                  = "got-dom-content"
	eventGetDOMResponse          = "got-dom-content-response"
	eventElementPosition         = "get-element-position"
	eventElementPositionResponse = "get-element-position-response"
	eventSendText                = "send-text-to-element"
	eventSendTextResponse        = "send-text-to-element-response"
)

// defaultKeystrokeDelayMs paces typed characters when no delay is given.
const defaultKeystrokeDelayMs = 20

// Tools runs automation commands against the attached host application.
type Tools struct {
	logger   *zap.Logger
	bridge   *bridge.Bridge
	registry *window.Registry
	eval     host.Evaluator
	windows  host.WindowManager
	input    host.InputController

	queryTimeout time.Duration
	inputTimeout time.Duration
}

// New wires the command implementations to their capabilities.
func New(logger *zap.Logger, br *bridge.Bridge, registry *window.Registry, eval host.Evaluator, windows host.WindowManager, input host.InputController, queryTimeout, inputTimeout time.Duration) *Tools {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	if inputTimeout <= 0 {
		inputTimeout = 30 * time.Second
	}
	return &Tools{
		logger:       logger,
		bridge:       br,
		registry:     registry,
		eval:         eval,
		windows:      windows,
		input:        input,
		queryTimeout: queryTimeout,
		inputTimeout: inputTimeout,
	}
}

// requireWindow defaults label to "main" and checks it is registered.
func (t *Tools) requireWindow(label string) (string, error) {
	if label == "" {
		label = "main"
	}
	if _, ok := t.registry.Get(label); !ok {
		return "", errdefs.Newf(errdefs.TargetNotFound, "window %q not registered", label)
	}
	return label, nil
}
