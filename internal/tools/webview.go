package tools

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/saker-ai/tauri-agent/internal/errdefs"
	"github.com/saker-ai/tauri-agent/internal/protocol"
	"github.com/saker-ai/tauri-agent/internal/scripts"
)

// webviewReply is the envelope every in-page listener and injected script
// reports through.
type webviewReply struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func parseWebviewReply(raw json.RawMessage) (webviewReply, error) {
	var reply webviewReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return webviewReply{}, errdefs.Wrap(errdefs.MalformedResponse, "parse page response", err)
	}
	return reply, nil
}

// GetDOM returns the serialized DOM of the window named by the payload,
// which is either a bare JSON string or an object with window_label. There
// is no default label; the caller must name the window.
func (t *Tools) GetDOM(ctx context.Context, payload json.RawMessage) (string, error) {
	label, err := parseDOMPayload(payload)
	if err != nil {
		return "", err
	}
	if _, ok := t.registry.Get(label); !ok {
		return "", errdefs.Newf(errdefs.TargetNotFound, "window %q not registered", label)
	}

	resp, err := t.bridge.Do(ctx, eventGetDOMResponse, t.queryTimeout, func() error {
		return t.eval.Emit(ctx, label, eventGetDOM, nil)
	})
	if err != nil {
		return "", err
	}

	var dom string
	if err := json.Unmarshal(resp, &dom); err != nil {
		return "", errdefs.Wrap(errdefs.MalformedResponse, "dom response is not a string", err)
	}
	if dom == "" {
		return "", errdefs.New(errdefs.MalformedResponse, "retrieved dom string is empty")
	}
	return dom, nil
}

func parseDOMPayload(payload json.RawMessage) (string, error) {
	if len(payload) == 0 {
		return "", errdefs.New(errdefs.InvalidPayload, "get_dom requires a window label")
	}
	var label string
	if err := json.Unmarshal(payload, &label); err == nil {
		if label == "" {
			return "", errdefs.New(errdefs.InvalidPayload, "window label is empty")
		}
		return label, nil
	}
	var obj protocol.DOMParams
	if err := json.Unmarshal(payload, &obj); err != nil {
		return "", errdefs.Wrap(errdefs.InvalidPayload, "get_dom payload must be a string or an object", err)
	}
	if obj.WindowLabel == "" {
		return "", errdefs.New(errdefs.InvalidPayload, "missing field 'window_label'")
	}
	return obj.WindowLabel, nil
}

// ExecuteJS evaluates code in a webview window and returns whatever the
// page reported back, with promises resolved first.
func (t *Tools) ExecuteJS(ctx context.Context, params protocol.ExecuteJSParams) (json.RawMessage, error) {
	if strings.TrimSpace(params.Code) == "" {
		return nil, errdefs.New(errdefs.InvalidPayload, "missing field 'code'")
	}
	label, err := t.requireWindow(params.WindowLabel)
	if err != nil {
		return nil, err
	}
	timeout := t.queryTimeout
	if params.TimeoutMs > 0 {
		timeout = time.Duration(params.TimeoutMs) * time.Millisecond
	}

	resp, err := t.bridge.Do(ctx, scripts.EventExecuteJS, timeout, func() error {
		return t.eval.Eval(ctx, label, scripts.ExecuteJS(params.Code))
	})
	if err != nil {
		return nil, err
	}
	reply, err := parseWebviewReply(resp)
	if err != nil {
		return nil, err
	}
	if !reply.Success {
		return nil, errdefs.Newf(errdefs.HostOperationFailed, "script failed: %s", reply.Error)
	}
	return reply.Data, nil
}

var storageOps = map[string]bool{
	"get":    true,
	"set":    true,
	"remove": true,
	"clear":  true,
	"keys":   true,
}

// ManageLocalStorage runs a localStorage operation in a webview window.
func (t *Tools) ManageLocalStorage(ctx context.Context, params protocol.LocalStorageParams) (json.RawMessage, error) {
	op := params.Operation
	if !storageOps[op] {
		return nil, errdefs.Newf(errdefs.InvalidPayload, "unsupported operation %q", op)
	}
	switch op {
	case "get", "remove", "set":
		if params.Key == "" {
			return nil, errdefs.Newf(errdefs.InvalidPayload, "operation %q requires field 'key'", op)
		}
	}
	if op == "set" && params.Value == nil {
		return nil, errdefs.New(errdefs.InvalidPayload, "operation \"set\" requires field 'value'")
	}
	label, err := t.requireWindow(params.WindowLabel)
	if err != nil {
		return nil, err
	}

	value := ""
	if params.Value != nil {
		value = *params.Value
	}
	resp, err := t.bridge.Do(ctx, scripts.EventLocalStorage, t.queryTimeout, func() error {
		return t.eval.Eval(ctx, label, scripts.LocalStorage(op, params.Key, value))
	})
	if err != nil {
		return nil, err
	}
	reply, err := parseWebviewReply(resp)
	if err != nil {
		return nil, err
	}
	if !reply.Success {
		return nil, errdefs.Newf(errdefs.HostOperationFailed, "storage operation failed: %s", reply.Error)
	}
	return reply.Data, nil
}

// GetElementPosition resolves an element's on-screen position through the
// host page, optionally clicking it.
func (t *Tools) GetElementPosition(ctx context.Context, params protocol.ElementPositionParams) (json.RawMessage, error) {
	if params.SelectorType == "" {
		return nil, errdefs.New(errdefs.InvalidPayload, "missing field 'selector_type'")
	}
	if params.SelectorValue == "" {
		return nil, errdefs.New(errdefs.InvalidPayload, "missing field 'selector_value'")
	}
	label, err := t.requireWindow(params.WindowLabel)
	if err != nil {
		return nil, err
	}

	event := struct {
		WindowLabel    string `json:"windowLabel"`
		SelectorType   string `json:"selectorType"`
		SelectorValue  string `json:"selectorValue"`
		ShouldClick    bool   `json:"shouldClick"`
		RawCoordinates bool   `json:"rawCoordinates"`
	}{label, params.SelectorType, params.SelectorValue, params.ShouldClick, params.RawCoordinates}

	resp, err := t.bridge.Do(ctx, eventElementPositionResponse, t.queryTimeout, func() error {
		return t.eval.Emit(ctx, label, eventElementPosition, event)
	})
	if err != nil {
		return nil, err
	}
	reply, err := parseWebviewReply(resp)
	if err != nil {
		return nil, err
	}
	if !reply.Success {
		return nil, errdefs.Newf(errdefs.HostOperationFailed, "element query failed: %s", reply.Error)
	}
	return reply.Data, nil
}

// SendTextToElement focuses an element in the page and types text into it
// character by character. The page does the typing, so the wait follows the
// input timeout rather than the query timeout.
func (t *Tools) SendTextToElement(ctx context.Context, params protocol.SendTextParams) (json.RawMessage, error) {
	if params.SelectorType == "" {
		return nil, errdefs.New(errdefs.InvalidPayload, "missing field 'selector_type'")
	}
	if params.SelectorValue == "" {
		return nil, errdefs.New(errdefs.InvalidPayload, "missing field 'selector_value'")
	}
	if params.Text == "" {
		return nil, errdefs.New(errdefs.InvalidPayload, "missing field 'text'")
	}
	label, err := t.requireWindow(params.WindowLabel)
	if err != nil {
		return nil, err
	}
	delay := defaultKeystrokeDelayMs
	if params.DelayMs != nil {
		delay = *params.DelayMs
	}

	event := struct {
		SelectorType  string `json:"selectorType"`
		SelectorValue string `json:"selectorValue"`
		Text          string `json:"text"`
		DelayMs       int    `json:"delayMs"`
	}{params.SelectorType, params.SelectorValue, params.Text, delay}

	resp, err := t.bridge.Do(ctx, eventSendTextResponse, t.inputTimeout, func() error {
		return t.eval.Emit(ctx, label, eventSendText, event)
	})
	if err != nil {
		return nil, err
	}
	reply, err := parseWebviewReply(resp)
	if err != nil {
		return nil, err
	}
	if !reply.Success {
		return nil, errdefs.Newf(errdefs.HostOperationFailed, "typing into element failed: %s", reply.Error)
	}
	return reply.Data, nil
}
