package tools

import (
	"context"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/saker-ai/tauri-agent/internal/errdefs"
	"github.com/saker-ai/tauri-agent/internal/host"
	"github.com/saker-ai/tauri-agent/internal/protocol"
)

// SimulateTextInput focuses the target window and types text through the
// host input capability.
func (t *Tools) SimulateTextInput(ctx context.Context, params protocol.TextInputParams) (protocol.TextInputResult, error) {
	if params.Text == "" {
		return protocol.TextInputResult{}, errdefs.New(errdefs.InvalidPayload, "missing field 'text'")
	}
	label, err := t.requireWindow(params.WindowLabel)
	if err != nil {
		return protocol.TextInputResult{}, err
	}

	// Typing lands on whichever control has focus, so raise the target
	// window first. A refused focus is not fatal.
	if err := t.windows.Apply(ctx, label, "focus", host.Geometry{}); err != nil {
		if errdefs.IsKind(err, errdefs.HostUnavailable) {
			return protocol.TextInputResult{}, err
		}
		t.logger.Warn("focus before typing failed",
			zap.String("window_label", label),
			zap.Error(err))
	}

	delay := defaultKeystrokeDelayMs
	if params.DelayMs != nil {
		delay = *params.DelayMs
	}
	initial := 0
	if params.InitialDelayMs != nil {
		initial = *params.InitialDelayMs
	}

	start := time.Now()
	err = t.input.TypeText(ctx, host.TextInput{
		Text:           params.Text,
		DelayMs:        delay,
		InitialDelayMs: initial,
	})
	duration := time.Since(start).Milliseconds()
	if err != nil {
		if errdefs.IsKind(err, errdefs.HostUnavailable) {
			return protocol.TextInputResult{}, err
		}
		return protocol.TextInputResult{Success: false, DurationMs: duration, Error: err.Error()}, nil
	}
	return protocol.TextInputResult{
		Success:    true,
		CharsTyped: utf8.RuneCountInString(params.Text),
		DurationMs: duration,
	}, nil
}

// SimulateMouseMovement moves the pointer, optionally clicking, and returns
// the final position reported by the host.
func (t *Tools) SimulateMouseMovement(ctx context.Context, params protocol.MouseParams) (protocol.MouseResult, error) {
	if params.X == nil || params.Y == nil {
		return protocol.MouseResult{}, errdefs.New(errdefs.InvalidPayload, "missing fields 'x' and 'y'")
	}
	button := params.Button
	if button == "" {
		button = "left"
	}
	switch button {
	case "left", "right", "middle":
	default:
		return protocol.MouseResult{}, errdefs.Newf(errdefs.InvalidPayload, "unsupported button %q", button)
	}

	start := time.Now()
	reply, err := t.input.MoveMouse(ctx, host.MouseMove{
		X:        *params.X,
		Y:        *params.Y,
		Relative: params.Relative,
		Click:    params.Click,
		Button:   button,
	})
	duration := time.Since(start).Milliseconds()
	if err != nil {
		if errdefs.IsKind(err, errdefs.HostUnavailable) {
			return protocol.MouseResult{}, err
		}
		return protocol.MouseResult{Success: false, DurationMs: duration, Error: err.Error()}, nil
	}

	pos := [2]int{reply.X, reply.Y}
	return protocol.MouseResult{Success: true, DurationMs: duration, Position: &pos}, nil
}
