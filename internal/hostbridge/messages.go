package hostbridge

import (
	"encoding/json"

	"github.com/saker-ai/tauri-agent/internal/host"
)

// Message types read from the host application.
const (
	msgHello     = "hello"
	msgWindows   = "windows"
	msgEvent     = "event"
	msgReply     = "reply"
	msgHeartbeat = "heartbeat"
)

// Message types sent to the host application.
const (
	msgEmit          = "emit"
	msgEval          = "eval"
	msgWindowOp      = "window-op"
	msgListWindows   = "list-windows"
	msgCaptureWindow = "capture-window"
	msgTypeText      = "type-text"
	msgMoveMouse     = "move-mouse"
)

// incomingMessage represents a message received from the host application.
// It intentionally carries the union of all message fields.
type incomingMessage struct {
	Type            string          `json:"type"`
	ApplicationName string          `json:"application_name,omitempty"`
	Windows         []host.Window   `json:"windows,omitempty"`
	Event           string          `json:"event,omitempty"`
	Payload         json.RawMessage `json:"payload,omitempty"`
	RequestID       string          `json:"request_id,omitempty"`
	Success         *bool           `json:"success,omitempty"`
	Data            json.RawMessage `json:"data,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// outgoingMessage represents a message sent to the host application.
type outgoingMessage struct {
	Type           string  `json:"type"`
	RequestID      string  `json:"request_id,omitempty"`
	WindowLabel    string  `json:"window_label,omitempty"`
	Event          string  `json:"event,omitempty"`
	Payload        any     `json:"payload,omitempty"`
	Script         string  `json:"script,omitempty"`
	WindowID       *uint32 `json:"window_id,omitempty"`
	Operation      string  `json:"operation,omitempty"`
	X              *int    `json:"x,omitempty"`
	Y              *int    `json:"y,omitempty"`
	Width          *int    `json:"width,omitempty"`
	Height         *int    `json:"height,omitempty"`
	Text           string  `json:"text,omitempty"`
	DelayMs        int     `json:"delay_ms,omitempty"`
	InitialDelayMs int     `json:"initial_delay_ms,omitempty"`
	Relative       bool    `json:"relative,omitempty"`
	Click          bool    `json:"click,omitempty"`
	Button         string  `json:"button,omitempty"`
}

// hostReply is the normalized form of a reply message, delivered to waiters
// through the bridge.
type hostReply struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}
