// Package scripts holds the JavaScript the agent injects into webview
// windows. Each script reports its result by emitting an event the bridge
// correlates on; __TOKEN__ placeholders are bound at render time.
package scripts

import (
	"embed"
	"encoding/json"
	"strconv"
	"strings"
)

//go:embed canvas_capture.js local_storage.js execute_js.js
var files embed.FS

// Event names the embedded scripts emit their results on.
const (
	EventCanvasCapture = "canvas-capture-response"
	EventLocalStorage  = "manage-local-storage-response"
	EventExecuteJS     = "execute-js-response"
)

func load(name string) string {
	data, err := files.ReadFile(name)
	if err != nil {
		// Embedded files are compiled in; a miss is a build defect.
		panic("missing embedded script " + name)
	}
	return string(data)
}

// CanvasCapture renders the in-page capture script.
func CanvasCapture(maxWidth, quality int) string {
	s := load("canvas_capture.js")
	s = strings.ReplaceAll(s, "__MAX_WIDTH__", strconv.Itoa(maxWidth))
	s = strings.ReplaceAll(s, "__QUALITY__", strconv.Itoa(quality))
	return s
}

// LocalStorage renders the localStorage management script.
func LocalStorage(operation, key, value string) string {
	s := load("local_storage.js")
	s = strings.ReplaceAll(s, "__OPERATION__", jsString(operation))
	s = strings.ReplaceAll(s, "__KEY__", jsString(key))
	s = strings.ReplaceAll(s, "__VALUE__", jsString(value))
	return s
}

// ExecuteJS renders the wrapper that evaluates arbitrary code and reports
// the settled result, resolving promises first.
func ExecuteJS(code string) string {
	return strings.ReplaceAll(load("execute_js.js"), "__CODE__", jsString(code))
}

// jsString encodes s as a JavaScript string literal. JSON string encoding
// is a subset of JavaScript, so the result splices safely into a script.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
