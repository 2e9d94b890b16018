package domain

import "fmt"

// App identifies the video backend software an instance runs.
type App string

const (
	AppInvidious App = "invidious"
	AppPiped     App = "piped"
	AppDemo      App = "demo"
)

// ParseApp converts a stored string into an App.
func ParseApp(s string) (App, error) {
	switch App(s) {
	case AppInvidious, AppPiped, AppDemo:
		return App(s), nil
	default:
		return "", fmt.Errorf("unknown app kind: %q", s)
	}
}

// Name returns the human-readable backend name.
func (a App) Name() string {
	switch a {
	case AppInvidious:
		return "Invidious"
	case AppPiped:
		return "Piped"
	case AppDemo:
		return "Demo"
	default:
		return string(a)
	}
}
