package tools

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/saker-ai/tauri-agent/internal/bridge"
	"github.com/saker-ai/tauri-agent/internal/host"
	"github.com/saker-ai/tauri-agent/internal/window"
)

type evalFake struct {
	emit func(label, event string, payload any) error
	eval func(label, script string) error
}

func (f *evalFake) Emit(_ context.Context, label, event string, payload any) error {
	if f.emit != nil {
		return f.emit(label, event, payload)
	}
	return nil
}

func (f *evalFake) Eval(_ context.Context, label, script string) error {
	if f.eval != nil {
		return f.eval(label, script)
	}
	return nil
}

type windowsFake struct {
	apply func(label, operation string, geom host.Geometry) error
	ops   []string
}

func (f *windowsFake) Apply(_ context.Context, label, operation string, geom host.Geometry) error {
	f.ops = append(f.ops, operation)
	if f.apply != nil {
		return f.apply(label, operation, geom)
	}
	return nil
}

type inputFake struct {
	typed   []host.TextInput
	typeErr error
	moved   []host.MouseMove
	moveErr error
	reply   host.MouseReply
}

func (f *inputFake) TypeText(_ context.Context, in host.TextInput) error {
	f.typed = append(f.typed, in)
	return f.typeErr
}

func (f *inputFake) MoveMouse(_ context.Context, in host.MouseMove) (host.MouseReply, error) {
	f.moved = append(f.moved, in)
	if f.moveErr != nil {
		return host.MouseReply{}, f.moveErr
	}
	return f.reply, nil
}

type toolsEnv struct {
	tools   *Tools
	bridge  *bridge.Bridge
	eval    *evalFake
	windows *windowsFake
	input   *inputFake
}

func newToolsEnv(t *testing.T) *toolsEnv {
	t.Helper()
	env := &toolsEnv{
		bridge:  bridge.New(),
		eval:    &evalFake{},
		windows: &windowsFake{},
		input:   &inputFake{},
	}
	registry := window.NewRegistry()
	registry.Replace([]host.Window{
		{Label: "main", Title: "My App"},
		{Label: "settings", Title: "My App - Settings"},
	})
	env.tools = New(zap.NewNop(), env.bridge, registry, env.eval, env.windows, env.input,
		100*time.Millisecond, 200*time.Millisecond)
	return env
}
