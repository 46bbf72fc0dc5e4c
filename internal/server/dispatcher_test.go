package server

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/saker-ai/tauri-agent/internal/protocol"
)

func TestDispatchUnknownCommand(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	resp := d.Dispatch(context.Background(), protocol.Request{Name: "bogus"})
	if resp.Success {
		t.Fatal("unknown command reported success")
	}
	if resp.Error == nil || *resp.Error != "unknown command" {
		t.Fatalf("error=%v, want %q", resp.Error, "unknown command")
	}
}

func TestDispatchReturnsHandlerData(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	d.Register("echo", func(_ context.Context, payload json.RawMessage) (any, error) {
		return string(payload), nil
	})
	resp := d.Dispatch(context.Background(), protocol.Request{Name: "echo", Payload: json.RawMessage(`"hi"`)})
	if !resp.Success {
		t.Fatalf("success=false, error=%v", resp.Error)
	}
	if got := resp.Data.(string); got != `"hi"` {
		t.Fatalf("data=%q, want %q", got, `"hi"`)
	}
}

func TestDispatchWrapsHandlerError(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	d.Register("fail", func(_ context.Context, _ json.RawMessage) (any, error) {
		return nil, errors.New("window gone")
	})
	resp := d.Dispatch(context.Background(), protocol.Request{Name: "fail"})
	if resp.Success {
		t.Fatal("failed handler reported success")
	}
	if resp.Error == nil || *resp.Error != "window gone" {
		t.Fatalf("error=%v, want %q", resp.Error, "window gone")
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	d.Register("explode", func(_ context.Context, _ json.RawMessage) (any, error) {
		panic("boom")
	})
	resp := d.Dispatch(context.Background(), protocol.Request{Name: "explode"})
	if resp.Success {
		t.Fatal("panicking handler reported success")
	}
	if resp.Error == nil || *resp.Error != "internal error: boom" {
		t.Fatalf("error=%v, want %q", resp.Error, "internal error: boom")
	}
}
