package hostbridge

import (
	"context"
	"encoding/json"
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/saker-ai/tauri-agent/internal/errdefs"
	"github.com/saker-ai/tauri-agent/internal/host"
	"github.com/saker-ai/tauri-agent/internal/imaging"
)

// Emit forwards an event to a webview window, fire and forget. Responses,
// if any, come back as event messages the page emits on its own.
func (h *Handler) Emit(_ context.Context, label, event string, payload any) error {
	sess := h.session()
	if sess == nil {
		return errdefs.New(errdefs.HostUnavailable, "no host application attached")
	}
	return sess.sendJSON(outgoingMessage{
		Type:        msgEmit,
		WindowLabel: label,
		Event:       event,
		Payload:     payload,
	})
}

// Eval runs a script in a webview window, fire and forget.
func (h *Handler) Eval(_ context.Context, label, script string) error {
	sess := h.session()
	if sess == nil {
		return errdefs.New(errdefs.HostUnavailable, "no host application attached")
	}
	return sess.sendJSON(outgoingMessage{
		Type:        msgEval,
		WindowLabel: label,
		Script:      script,
	})
}

// roundtrip sends msg with a fresh request id and waits for the host's
// reply. An unsuccessful reply becomes a HostOperationFailed error.
func (h *Handler) roundtrip(ctx context.Context, msg outgoingMessage, timeout time.Duration) (hostReply, error) {
	sess := h.session()
	if sess == nil {
		return hostReply{}, errdefs.New(errdefs.HostUnavailable, "no host application attached")
	}
	msg.RequestID = uuid.NewString()

	raw, err := h.bridge.Do(ctx, msg.RequestID, timeout, func() error {
		return sess.sendJSON(msg)
	})
	if err != nil {
		return hostReply{}, err
	}

	var reply hostReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return hostReply{}, errdefs.Wrap(errdefs.MalformedResponse, "parse host reply", err)
	}
	if !reply.Success {
		return hostReply{}, errdefs.Newf(errdefs.HostOperationFailed, "%s failed: %s", msg.Type, reply.Error)
	}
	return reply, nil
}

// Apply performs a window management operation on the host side.
func (h *Handler) Apply(ctx context.Context, label, operation string, geom host.Geometry) error {
	_, err := h.roundtrip(ctx, outgoingMessage{
		Type:        msgWindowOp,
		WindowLabel: label,
		Operation:   operation,
		X:           geom.X,
		Y:           geom.Y,
		Width:       geom.Width,
		Height:      geom.Height,
	}, h.queryTimeout)
	return err
}

// Windows asks the host to enumerate OS-level windows.
func (h *Handler) Windows(ctx context.Context) ([]host.NativeWindow, error) {
	reply, err := h.roundtrip(ctx, outgoingMessage{Type: msgListWindows}, h.queryTimeout)
	if err != nil {
		return nil, err
	}
	var data struct {
		Windows []host.NativeWindow `json:"windows"`
	}
	if err := json.Unmarshal(reply.Data, &data); err != nil {
		return nil, errdefs.Wrap(errdefs.MalformedResponse, "parse window list", err)
	}
	return data.Windows, nil
}

// Capture asks the host to capture one native window and decodes the image
// it returns.
func (h *Handler) Capture(ctx context.Context, id uint32) (image.Image, error) {
	reply, err := h.roundtrip(ctx, outgoingMessage{
		Type:     msgCaptureWindow,
		WindowID: &id,
	}, h.queryTimeout)
	if err != nil {
		return nil, err
	}
	var data struct {
		Image string `json:"image"`
	}
	if err := json.Unmarshal(reply.Data, &data); err != nil {
		return nil, errdefs.Wrap(errdefs.MalformedResponse, "parse capture reply", err)
	}
	img, err := imaging.Decode(data.Image)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.MalformedResponse, "decode captured image", err)
	}
	return img, nil
}

// TypeText asks the host to type text into the focused control. The host
// paces keystrokes itself, so the wait uses the input timeout.
func (h *Handler) TypeText(ctx context.Context, in host.TextInput) error {
	_, err := h.roundtrip(ctx, outgoingMessage{
		Type:           msgTypeText,
		Text:           in.Text,
		DelayMs:        in.DelayMs,
		InitialDelayMs: in.InitialDelayMs,
	}, h.inputTimeout)
	return err
}

// MoveMouse asks the host to move the pointer and reports the final
// position.
func (h *Handler) MoveMouse(ctx context.Context, in host.MouseMove) (host.MouseReply, error) {
	reply, err := h.roundtrip(ctx, outgoingMessage{
		Type:     msgMoveMouse,
		X:        &in.X,
		Y:        &in.Y,
		Relative: in.Relative,
		Click:    in.Click,
		Button:   in.Button,
	}, h.inputTimeout)
	if err != nil {
		return host.MouseReply{}, err
	}
	var pos struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	if len(reply.Data) > 0 {
		if err := json.Unmarshal(reply.Data, &pos); err != nil {
			return host.MouseReply{}, errdefs.Wrap(errdefs.MalformedResponse, "parse pointer position", err)
		}
	}
	return host.MouseReply{X: pos.X, Y: pos.Y}, nil
}
