package screenshot

import (
	"os"
	"runtime"
	"strings"
)

// Environment describes where the agent runs, for choosing a capture
// strategy. WSL and headless sessions cannot reach a real compositor, so
// native capture is skipped there.
type Environment struct {
	WSL             bool
	HeadlessDisplay bool
}

// NativeCapturable reports whether OS-level window capture can work here.
func (e Environment) NativeCapturable() bool {
	return !e.WSL && !e.HeadlessDisplay
}

// Probe inspects the process environment.
func Probe() Environment {
	return Environment{
		WSL:             detectWSL(os.Getenv, readProcVersion()),
		HeadlessDisplay: detectHeadless(runtime.GOOS, os.Getenv),
	}
}

func readProcVersion() string {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return ""
	}
	return string(data)
}

func detectWSL(getenv func(string) string, procVersion string) bool {
	if getenv("WSL_DISTRO_NAME") != "" || getenv("WSL_INTEROP") != "" {
		return true
	}
	v := strings.ToLower(procVersion)
	return strings.Contains(v, "microsoft") || strings.Contains(v, "wsl")
}

func detectHeadless(goos string, getenv func(string) string) bool {
	if goos != "linux" {
		return false
	}
	return getenv("DISPLAY") == "" && getenv("WAYLAND_DISPLAY") == ""
}
