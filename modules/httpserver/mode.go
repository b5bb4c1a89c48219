package httpserver

import (
	"fmt"
	"path"
	"strings"
)

// Mode selects how the widget is mounted.
type Mode string

const (
	// ModeRouted serves a welcome page at "/" and the widget at "/uploadfiles".
	ModeRouted Mode = "routed"
	// ModeStandalone serves the widget directly at "/".
	ModeStandalone Mode = "standalone"
)

// ParseMode converts a configuration value into a Mode. An empty value
// selects ModeRouted.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeRouted:
		return ModeRouted, nil
	case ModeStandalone:
		return ModeStandalone, nil
	default:
		return "", fmt.Errorf("unknown UI mode %q", s)
	}
}

// WidgetPath returns the path the upload widget is served on.
func (m Mode) WidgetPath() string {
	if m == ModeStandalone {
		return "/"
	}
	return "/uploadfiles"
}

func joinPath(base, elem string) string {
	return path.Join(base, elem)
}
