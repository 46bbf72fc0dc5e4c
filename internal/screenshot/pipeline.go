// Package screenshot implements the capture pipeline. Strategies are tried
// in order of fidelity: native OS-level capture, in-page canvas capture
// through the webview, and finally a rendered placeholder. A capture request
// only fails outright when even the placeholder cannot be produced; anything
// less is reported as a degraded result, never an error.
package screenshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/saker-ai/tauri-agent/internal/bridge"
	"github.com/saker-ai/tauri-agent/internal/errdefs"
	"github.com/saker-ai/tauri-agent/internal/host"
	"github.com/saker-ai/tauri-agent/internal/imaging"
	"github.com/saker-ai/tauri-agent/internal/scripts"
	"github.com/saker-ai/tauri-agent/internal/window"
)

// Strategy names reported in capture results.
const (
	StrategyNative      = "native"
	StrategyWebview     = "webview"
	StrategyPlaceholder = "placeholder"
)

// Params selects what to capture and how to encode it. Zero values take
// the pipeline defaults.
type Params struct {
	WindowLabel     string
	ApplicationName string
	Quality         int
	MaxWidth        int
}

// Options configures a Pipeline.
type Options struct {
	ApplicationName string
	Quality         int
	MaxWidth        int
	QueryTimeout    time.Duration
}

// Capture is the outcome of one screenshot request. WindowLabel is the
// label the request resolved to, after defaulting.
type Capture struct {
	imaging.Result
	WindowLabel string
	Strategy    string
	Degraded    bool
}

// Pipeline runs capture requests through the strategy chain on a bounded
// worker pool.
type Pipeline struct {
	logger   *zap.Logger
	registry *window.Registry
	native   host.NativeProvider
	eval     host.Evaluator
	bridge   *bridge.Bridge
	pool     *Pool
	opts     Options

	// probe is swapped in tests to force a strategy.
	probe func() Environment
}

// NewPipeline wires a pipeline. native and eval may be nil; the matching
// strategies are then skipped.
func NewPipeline(logger *zap.Logger, registry *window.Registry, native host.NativeProvider, eval host.Evaluator, br *bridge.Bridge, pool *Pool, opts Options) *Pipeline {
	if opts.Quality == 0 {
		opts.Quality = imaging.DefaultQuality
	}
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = imaging.DefaultMaxWidth
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = 5 * time.Second
	}
	return &Pipeline{
		logger:   logger,
		registry: registry,
		native:   native,
		eval:     eval,
		bridge:   br,
		pool:     pool,
		opts:     opts,
		probe:    Probe,
	}
}

// Capture resolves the target window and runs the strategy chain. An
// unregistered label is an error unless an application name narrows the
// native search instead.
func (p *Pipeline) Capture(ctx context.Context, params Params) (Capture, error) {
	label := params.WindowLabel
	if label == "" {
		label = "main"
	}
	appName := params.ApplicationName
	if appName == "" {
		appName = p.opts.ApplicationName
	}

	target, registered := p.registry.Get(label)
	if !registered && appName == "" {
		return Capture{}, errdefs.Newf(errdefs.TargetNotFound, "window %q not registered", label)
	}

	quality := params.Quality
	if quality == 0 {
		quality = p.opts.Quality
	}
	maxWidth := params.MaxWidth
	if maxWidth <= 0 {
		maxWidth = p.opts.MaxWidth
	}

	var (
		out Capture
		err error
	)
	p.pool.Do(func() {
		out, err = p.capture(ctx, label, target.Title, appName, registered, quality, maxWidth)
	})
	if err == nil {
		out.WindowLabel = label
	}
	return out, err
}

func (p *Pipeline) capture(ctx context.Context, label, title, appName string, registered bool, quality, maxWidth int) (Capture, error) {
	env := p.probe()
	if env.NativeCapturable() {
		shot, err := p.captureNative(ctx, title, appName, quality, maxWidth)
		if err == nil {
			return shot, nil
		}
		p.logger.Debug("native capture failed",
			zap.String("window_label", label),
			zap.Error(err))
	} else {
		p.logger.Debug("native capture unavailable",
			zap.Bool("wsl", env.WSL),
			zap.Bool("headless", env.HeadlessDisplay))
	}

	if registered {
		shot, err := p.captureWebview(ctx, label, quality, maxWidth)
		if err == nil {
			return shot, nil
		}
		p.logger.Debug("webview capture failed",
			zap.String("window_label", label),
			zap.Error(err))
	}

	res, err := imaging.Process(imaging.Placeholder(label, maxWidth), quality, maxWidth)
	if err != nil {
		return Capture{}, errdefs.Wrap(errdefs.CaptureFailed, "render placeholder", err)
	}
	p.logger.Warn("capture degraded to placeholder", zap.String("window_label", label))
	return Capture{Result: res, Strategy: StrategyPlaceholder, Degraded: true}, nil
}

func (p *Pipeline) captureNative(ctx context.Context, title, appName string, quality, maxWidth int) (Capture, error) {
	if p.native == nil {
		return Capture{}, errors.New("no native capture provider")
	}
	windows, err := p.native.Windows(ctx)
	if err != nil {
		return Capture{}, fmt.Errorf("list native windows: %w", err)
	}
	target, ok := MatchWindow(windows, title, appName)
	if !ok {
		return Capture{}, fmt.Errorf("no native window matches title %q app %q", title, appName)
	}
	img, err := p.native.Capture(ctx, target.ID)
	if err != nil {
		return Capture{}, fmt.Errorf("capture native window %d: %w", target.ID, err)
	}
	res, err := imaging.Process(img, quality, maxWidth)
	if err != nil {
		return Capture{}, err
	}
	return Capture{Result: res, Strategy: StrategyNative}, nil
}

func (p *Pipeline) captureWebview(ctx context.Context, label string, quality, maxWidth int) (Capture, error) {
	if p.eval == nil {
		return Capture{}, errors.New("no script evaluator")
	}
	script := scripts.CanvasCapture(maxWidth, imaging.ClampQuality(quality))
	payload, err := p.bridge.Do(ctx, scripts.EventCanvasCapture, p.opts.QueryTimeout, func() error {
		return p.eval.Eval(ctx, label, script)
	})
	if err != nil {
		return Capture{}, err
	}

	var reply struct {
		Success bool   `json:"success"`
		Data    string `json:"data"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(payload, &reply); err != nil {
		return Capture{}, fmt.Errorf("parse capture response: %w", err)
	}
	if !reply.Success {
		return Capture{}, fmt.Errorf("in-page capture failed: %s", reply.Error)
	}
	img, err := imaging.Decode(reply.Data)
	if err != nil {
		return Capture{}, err
	}
	res, err := imaging.Process(img, quality, maxWidth)
	if err != nil {
		return Capture{}, err
	}
	return Capture{Result: res, Strategy: StrategyWebview}, nil
}
