package screenshot

import (
	"strings"

	"github.com/saker-ai/tauri-agent/internal/host"
)

// MatchWindow picks the native window best matching title and appName.
// Application-name containment wins over an exact title match, which wins
// over title containment; the first window in each pass is taken. Matching
// is case-insensitive and minimized windows never match. An empty appName
// disables the application pass.
func MatchWindow(windows []host.NativeWindow, title, appName string) (host.NativeWindow, bool) {
	title = strings.ToLower(strings.TrimSpace(title))
	appName = strings.ToLower(strings.TrimSpace(appName))

	if appName != "" {
		for _, w := range windows {
			if w.Minimized {
				continue
			}
			if strings.Contains(strings.ToLower(w.AppName), appName) {
				return w, true
			}
		}
	}
	if title != "" {
		for _, w := range windows {
			if w.Minimized {
				continue
			}
			if strings.ToLower(w.Title) == title {
				return w, true
			}
		}
		for _, w := range windows {
			if w.Minimized {
				continue
			}
			if strings.Contains(strings.ToLower(w.Title), title) {
				return w, true
			}
		}
	}
	return host.NativeWindow{}, false
}
