// Package host defines the capability surface a connected host application
// provides: webview script evaluation, window management, native window
// enumeration and capture, and input simulation. The concrete implementation
// lives behind the bridge connection; consumers depend only on these
// interfaces so tests can substitute fakes.
package host

import (
	"context"
	"image"
)

// Window is a webview window registered by the host application.
type Window struct {
	Label     string `json:"label"`
	Title     string `json:"title"`
	Minimized bool   `json:"minimized"`
}

// NativeWindow is an OS-level window enumerated by the host.
type NativeWindow struct {
	ID        uint32 `json:"id"`
	Title     string `json:"title"`
	AppName   string `json:"app_name"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Minimized bool   `json:"minimized"`
}

// Geometry carries the optional coordinates of a window operation. Fields
// left nil are not part of the operation.
type Geometry struct {
	X      *int `json:"x,omitempty"`
	Y      *int `json:"y,omitempty"`
	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`
}

// TextInput describes a keyboard simulation request.
type TextInput struct {
	Text           string
	DelayMs        int
	InitialDelayMs int
}

// MouseMove describes a pointer simulation request.
type MouseMove struct {
	X        int
	Y        int
	Relative bool
	Click    bool
	Button   string
}

// MouseReply is the pointer position after a completed move.
type MouseReply struct {
	X int
	Y int
}

// Evaluator emits events to and evaluates scripts in webview windows.
type Evaluator interface {
	// Emit delivers an event with payload to the window named by label.
	Emit(ctx context.Context, label, event string, payload any) error
	// Eval runs script in the window named by label. Results come back
	// asynchronously through events the script itself emits.
	Eval(ctx context.Context, label, script string) error
}

// WindowManager applies window management operations.
type WindowManager interface {
	Apply(ctx context.Context, label, operation string, geom Geometry) error
}

// NativeProvider enumerates OS-level windows and captures their contents.
type NativeProvider interface {
	Windows(ctx context.Context) ([]NativeWindow, error)
	Capture(ctx context.Context, id uint32) (image.Image, error)
}

// InputController simulates keyboard and mouse input.
type InputController interface {
	TypeText(ctx context.Context, in TextInput) error
	MoveMouse(ctx context.Context, in MouseMove) (MouseReply, error)
}
