package server

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/saker-ai/tauri-agent/internal/errdefs"
	"github.com/saker-ai/tauri-agent/internal/protocol"
	"github.com/saker-ai/tauri-agent/internal/screenshot"
	"github.com/saker-ai/tauri-agent/internal/storage"
	"github.com/saker-ai/tauri-agent/internal/tools"
)

// RegisterCommands binds every socket command to its implementation.
// archive may be nil when capture archiving is disabled.
func RegisterCommands(d *Dispatcher, tl *tools.Tools, pipeline *screenshot.Pipeline, archive *storage.Archive, logger *zap.Logger) {
	d.Register(protocol.CmdPing, func(_ context.Context, _ json.RawMessage) (any, error) {
		return "pong", nil
	})

	d.Register(protocol.CmdTakeScreenshot, func(ctx context.Context, payload json.RawMessage) (any, error) {
		var params protocol.ScreenshotParams
		if err := unmarshalParams(payload, &params); err != nil {
			return nil, err
		}
		shot, err := pipeline.Capture(ctx, screenshot.Params{
			WindowLabel:     params.WindowLabel,
			ApplicationName: params.ApplicationName,
			Quality:         intValue(params.Quality),
			MaxWidth:        intValue(params.MaxWidth),
		})
		if err != nil {
			return nil, err
		}
		if archive != nil {
			if _, err := archive.Save(storage.CaptureRecord{
				WindowLabel:  shot.WindowLabel,
				Strategy:     shot.Strategy,
				Degraded:     shot.Degraded,
				Width:        shot.Width,
				Height:       shot.Height,
				ImageDataURL: shot.DataURL,
			}); err != nil {
				logger.Warn("archiving capture failed", zap.Error(err))
			}
		}
		return protocol.ScreenshotResult{
			ImageDataURL: shot.DataURL,
			Width:        shot.Width,
			Height:       shot.Height,
			Strategy:     shot.Strategy,
			Degraded:     shot.Degraded,
		}, nil
	})

	d.Register(protocol.CmdGetDOM, func(ctx context.Context, payload json.RawMessage) (any, error) {
		return tl.GetDOM(ctx, payload)
	})

	d.Register(protocol.CmdExecuteJS, func(ctx context.Context, payload json.RawMessage) (any, error) {
		var params protocol.ExecuteJSParams
		if err := unmarshalParams(payload, &params); err != nil {
			return nil, err
		}
		return tl.ExecuteJS(ctx, params)
	})

	d.Register(protocol.CmdManageLocalStorage, func(ctx context.Context, payload json.RawMessage) (any, error) {
		var params protocol.LocalStorageParams
		if err := unmarshalParams(payload, &params); err != nil {
			return nil, err
		}
		return tl.ManageLocalStorage(ctx, params)
	})

	d.Register(protocol.CmdManageWindow, func(ctx context.Context, payload json.RawMessage) (any, error) {
		var params protocol.WindowParams
		if err := unmarshalParams(payload, &params); err != nil {
			return nil, err
		}
		return tl.ManageWindow(ctx, params)
	})

	d.Register(protocol.CmdSimulateTextInput, func(ctx context.Context, payload json.RawMessage) (any, error) {
		var params protocol.TextInputParams
		if err := unmarshalParams(payload, &params); err != nil {
			return nil, err
		}
		return tl.SimulateTextInput(ctx, params)
	})

	d.Register(protocol.CmdSimulateMouseMovement, func(ctx context.Context, payload json.RawMessage) (any, error) {
		var params protocol.MouseParams
		if err := unmarshalParams(payload, &params); err != nil {
			return nil, err
		}
		return tl.SimulateMouseMovement(ctx, params)
	})

	d.Register(protocol.CmdGetElementPosition, func(ctx context.Context, payload json.RawMessage) (any, error) {
		var params protocol.ElementPositionParams
		if err := unmarshalParams(payload, &params); err != nil {
			return nil, err
		}
		return tl.GetElementPosition(ctx, params)
	})

	d.Register(protocol.CmdSendTextToElement, func(ctx context.Context, payload json.RawMessage) (any, error) {
		var params protocol.SendTextParams
		if err := unmarshalParams(payload, &params); err != nil {
			return nil, err
		}
		return tl.SendTextToElement(ctx, params)
	})
}

// unmarshalParams decodes payload into v. An absent payload leaves v at
// its zero value; each command validates its own required fields.
func unmarshalParams(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return errdefs.Wrap(errdefs.InvalidPayload, "parse payload", err)
	}
	return nil
}

func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
