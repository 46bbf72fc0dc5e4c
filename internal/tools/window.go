package tools

import (
	"context"

	"go.uber.org/zap"

	"github.com/saker-ai/tauri-agent/internal/errdefs"
	"github.com/saker-ai/tauri-agent/internal/host"
	"github.com/saker-ai/tauri-agent/internal/protocol"
)

var windowOps = map[string]bool{
	"show":         true,
	"hide":         true,
	"focus":        true,
	"minimize":     true,
	"maximize":     true,
	"unmaximize":   true,
	"close":        true,
	"center":       true,
	"set_position": true,
	"set_size":     true,
}

// ManageWindow applies a window operation via the host. A failure reported
// by the application comes back as an unsuccessful result rather than an
// error, so callers can tell "the app refused" from "the request never
// reached it"; only a missing host surfaces as an error.
func (t *Tools) ManageWindow(ctx context.Context, params protocol.WindowParams) (protocol.WindowResult, error) {
	op := params.Operation
	if !windowOps[op] {
		return protocol.WindowResult{}, errdefs.Newf(errdefs.InvalidPayload, "unsupported operation %q", op)
	}

	var geom host.Geometry
	switch op {
	case "set_position":
		if params.X == nil || params.Y == nil {
			return protocol.WindowResult{}, errdefs.New(errdefs.InvalidPayload, "set_position requires fields 'x' and 'y'")
		}
		geom.X, geom.Y = params.X, params.Y
	case "set_size":
		if params.Width == nil || params.Height == nil {
			return protocol.WindowResult{}, errdefs.New(errdefs.InvalidPayload, "set_size requires fields 'width' and 'height'")
		}
		if *params.Width <= 0 || *params.Height <= 0 {
			return protocol.WindowResult{}, errdefs.New(errdefs.InvalidPayload, "width and height must be positive")
		}
		geom.Width, geom.Height = params.Width, params.Height
	}

	label, err := t.requireWindow(params.WindowLabel)
	if err != nil {
		return protocol.WindowResult{}, err
	}

	if err := t.windows.Apply(ctx, label, op, geom); err != nil {
		if errdefs.IsKind(err, errdefs.HostUnavailable) {
			return protocol.WindowResult{}, err
		}
		t.logger.Warn("window operation failed",
			zap.String("operation", op),
			zap.String("window_label", label),
			zap.Error(err))
		return protocol.WindowResult{Success: false, Error: err.Error()}, nil
	}
	return protocol.WindowResult{Success: true}, nil
}
