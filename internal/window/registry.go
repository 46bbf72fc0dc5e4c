package window

import (
	"sort"
	"sync"

	"github.com/saker-ai/tauri-agent/internal/host"
)

// Registry tracks the webview windows announced by the connected host
// application. The host owns the authoritative set and replaces it wholesale
// on attach and whenever windows open or close.
type Registry struct {
	mu      sync.Mutex
	windows map[string]host.Window
}

// NewRegistry executes the newRegistry function.
func NewRegistry() *Registry {
	return &Registry{windows: make(map[string]host.Window)}
}

// Replace swaps the registered window set for the given one.
func (r *Registry) Replace(windows []host.Window) {
	next := make(map[string]host.Window, len(windows))
	for _, w := range windows {
		if w.Label == "" {
			continue
		}
		next[w.Label] = w
	}
	r.mu.Lock()
	r.windows = next
	r.mu.Unlock()
}

// Get returns the window registered under label.
func (r *Registry) Get(label string) (host.Window, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[label]
	return w, ok
}

// Labels returns the registered window labels in sorted order.
func (r *Registry) Labels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	labels := make([]string, 0, len(r.windows))
	for label := range r.windows {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Len returns the number of registered windows.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.windows)
}
