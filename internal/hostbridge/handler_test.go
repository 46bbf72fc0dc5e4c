package hostbridge

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/saker-ai/tauri-agent/internal/bridge"
	"github.com/saker-ai/tauri-agent/internal/errdefs"
	"github.com/saker-ai/tauri-agent/internal/host"
	"github.com/saker-ai/tauri-agent/internal/imaging"
	"github.com/saker-ai/tauri-agent/internal/window"
)

type fixture struct {
	handler  *Handler
	bridge   *bridge.Bridge
	registry *window.Registry
	server   *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		bridge:   bridge.New(),
		registry: window.NewRegistry(),
	}
	f.handler = NewHandler(zap.NewNop(), f.bridge, f.registry, 500*time.Millisecond, 500*time.Millisecond)
	f.server = httptest.NewServer(http.HandlerFunc(f.handler.Handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial bridge: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	waitFor(t, func() bool { return f.handler.Status().Attached })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

// respond reads one message from the host side and answers it with build.
func respond(conn *websocket.Conn, build func(req map[string]any) map[string]any) {
	go func() {
		var req map[string]any
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		_ = conn.WriteJSON(build(req))
	}()
}

func TestHelloSeedsRegistry(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	err := conn.WriteJSON(map[string]any{
		"type":             "hello",
		"application_name": "My App",
		"windows": []map[string]any{
			{"label": "main", "title": "My App"},
			{"label": "settings", "title": "Settings"},
		},
	})
	if err != nil {
		t.Fatalf("write hello: %v", err)
	}

	waitFor(t, func() bool { return f.registry.Len() == 2 })
	st := f.handler.Status()
	if !st.Attached || st.ApplicationName != "My App" || st.Windows != 2 {
		t.Fatalf("Status()=%+v, want attached My App with 2 windows", st)
	}
	if _, ok := f.registry.Get("settings"); !ok {
		t.Fatalf("registry missing window settings")
	}
}

func TestWindowsMessageReplacesSet(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	writeJSON(t, conn, map[string]any{"type": "hello", "windows": []map[string]any{{"label": "main"}, {"label": "old"}}})
	waitFor(t, func() bool { return f.registry.Len() == 2 })

	writeJSON(t, conn, map[string]any{"type": "windows", "windows": []map[string]any{{"label": "main"}}})
	waitFor(t, func() bool { return f.registry.Len() == 1 })
	if _, ok := f.registry.Get("old"); ok {
		t.Fatalf("registry still has window old after replace")
	}
}

func writeJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestApplyRoundtrip(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	respond(conn, func(req map[string]any) map[string]any {
		if req["type"] != "window-op" || req["operation"] != "maximize" {
			t.Errorf("host received %v, want window-op maximize", req)
		}
		if req["window_label"] != "main" {
			t.Errorf("window_label=%v, want main", req["window_label"])
		}
		return map[string]any{"type": "reply", "request_id": req["request_id"], "success": true}
	})

	if err := f.handler.Apply(context.Background(), "main", "maximize", host.Geometry{}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
}

func TestApplyHostRefusal(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	respond(conn, func(req map[string]any) map[string]any {
		return map[string]any{
			"type":       "reply",
			"request_id": req["request_id"],
			"success":    false,
			"error":      "window is not closable",
		}
	})

	err := f.handler.Apply(context.Background(), "main", "close", host.Geometry{})
	if !errdefs.IsKind(err, errdefs.HostOperationFailed) {
		t.Fatalf("Apply() error = %v, want kind %q", err, errdefs.HostOperationFailed)
	}
	if !strings.Contains(err.Error(), "window is not closable") {
		t.Fatalf("Apply() error = %v, want host message included", err)
	}
}

func TestApplyTimeout(t *testing.T) {
	f := newFixture(t)
	f.dial(t) // host never answers

	err := f.handler.Apply(context.Background(), "main", "show", host.Geometry{})
	if !errdefs.IsKind(err, errdefs.Timeout) {
		t.Fatalf("Apply() error = %v, want kind %q", err, errdefs.Timeout)
	}
	if n := f.bridge.Pending(); n != 0 {
		t.Fatalf("Pending()=%d after timeout, want 0", n)
	}
}

func TestCapabilitiesWithoutHost(t *testing.T) {
	f := newFixture(t)

	if err := f.handler.Emit(context.Background(), "main", "ping", nil); !errdefs.IsKind(err, errdefs.HostUnavailable) {
		t.Errorf("Emit() error = %v, want kind %q", err, errdefs.HostUnavailable)
	}
	if err := f.handler.Eval(context.Background(), "main", "1"); !errdefs.IsKind(err, errdefs.HostUnavailable) {
		t.Errorf("Eval() error = %v, want kind %q", err, errdefs.HostUnavailable)
	}
	if _, err := f.handler.Windows(context.Background()); !errdefs.IsKind(err, errdefs.HostUnavailable) {
		t.Errorf("Windows() error = %v, want kind %q", err, errdefs.HostUnavailable)
	}
}

func TestEventResolvesWaiter(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	ch, err := f.bridge.Register("canvas-capture-response")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	writeJSON(t, conn, map[string]any{
		"type":    "event",
		"event":   "canvas-capture-response",
		"payload": map[string]any{"success": true, "data": "abc"},
	})

	payload, err := f.bridge.Await(context.Background(), "canvas-capture-response", ch, time.Second)
	if err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	var body struct {
		Success bool   `json:"success"`
		Data    string `json:"data"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if !body.Success || body.Data != "abc" {
		t.Fatalf("payload=%+v, want success with data abc", body)
	}
}

func TestListWindows(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	respond(conn, func(req map[string]any) map[string]any {
		if req["type"] != "list-windows" {
			t.Errorf("host received type %v, want list-windows", req["type"])
		}
		return map[string]any{
			"type":       "reply",
			"request_id": req["request_id"],
			"success":    true,
			"data": map[string]any{
				"windows": []map[string]any{
					{"id": 11, "title": "My App", "app_name": "myapp", "width": 1280, "height": 720},
				},
			},
		}
	})

	windows, err := f.handler.Windows(context.Background())
	if err != nil {
		t.Fatalf("Windows() error = %v", err)
	}
	if len(windows) != 1 || windows[0].ID != 11 || windows[0].AppName != "myapp" {
		t.Fatalf("Windows()=%+v, want the announced window", windows)
	}
}

func TestCaptureDecodesImage(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	src := image.NewRGBA(image.Rect(0, 0, 48, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 48; x++ {
			src.Set(x, y, color.RGBA{R: 10, G: 200, B: 50, A: 255})
		}
	}
	processed, err := imaging.Process(src, 90, 1920)
	if err != nil {
		t.Fatalf("build capture payload: %v", err)
	}

	respond(conn, func(req map[string]any) map[string]any {
		if req["type"] != "capture-window" {
			t.Errorf("host received type %v, want capture-window", req["type"])
		}
		if req["window_id"] != float64(7) {
			t.Errorf("window_id=%v, want 7", req["window_id"])
		}
		return map[string]any{
			"type":       "reply",
			"request_id": req["request_id"],
			"success":    true,
			"data":       map[string]any{"image": processed.DataURL},
		}
	})

	img, err := f.handler.Capture(context.Background(), 7)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if got := img.Bounds(); got.Dx() != 48 || got.Dy() != 32 {
		t.Fatalf("captured size = %dx%d, want 48x32", got.Dx(), got.Dy())
	}
}

func TestMoveMouseParsesPosition(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	respond(conn, func(req map[string]any) map[string]any {
		if req["type"] != "move-mouse" || req["button"] != "left" {
			t.Errorf("host received %v, want move-mouse with left button", req)
		}
		return map[string]any{
			"type":       "reply",
			"request_id": req["request_id"],
			"success":    true,
			"data":       map[string]any{"x": 120, "y": 240},
		}
	})

	reply, err := f.handler.MoveMouse(context.Background(), host.MouseMove{X: 120, Y: 240, Button: "left"})
	if err != nil {
		t.Fatalf("MoveMouse() error = %v", err)
	}
	if reply.X != 120 || reply.Y != 240 {
		t.Fatalf("reply=%+v, want 120/240", reply)
	}
}

func TestNewConnectionReplacesOld(t *testing.T) {
	f := newFixture(t)
	first := f.dial(t)
	_ = first.SetReadDeadline(time.Now().Add(2 * time.Second))

	second := f.dial(t)
	writeJSON(t, second, map[string]any{"type": "hello", "application_name": "replacement"})
	waitFor(t, func() bool { return f.handler.Status().ApplicationName == "replacement" })
	respond(second, func(req map[string]any) map[string]any {
		return map[string]any{"type": "reply", "request_id": req["request_id"], "success": true}
	})

	// Requests route to the new connection.
	if err := f.handler.Apply(context.Background(), "main", "focus", host.Geometry{}); err != nil {
		t.Fatalf("Apply() after replacement error = %v", err)
	}
	// The old connection was closed by the handler.
	if _, _, err := first.ReadMessage(); err == nil {
		t.Fatalf("old connection still readable, want close")
	}
	if !f.handler.Status().Attached {
		t.Fatalf("Status().Attached=false, want true")
	}
}

func TestMalformedBridgeMessageIgnored(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write malformed: %v", err)
	}
	// The connection survives and still handles well-formed traffic.
	writeJSON(t, conn, map[string]any{"type": "hello", "windows": []map[string]any{{"label": "main"}}})
	waitFor(t, func() bool { return f.registry.Len() == 1 })
}
