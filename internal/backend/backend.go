// Package backend selects the concrete video-service client for a backend
// kind. There is exactly one client per kind; the session controller binds
// accounts to them and dispatches every call through the matching one.
package backend

import (
	"log/slog"

	"github.com/tubularapp/tubular/internal/backend/demo"
	"github.com/tubularapp/tubular/internal/backend/invidious"
	"github.com/tubularapp/tubular/internal/backend/piped"
	"github.com/tubularapp/tubular/internal/domain"
	"github.com/tubularapp/tubular/internal/keychain"
)

// Set holds one client per backend kind.
type Set struct {
	Invidious domain.VideosAPI
	Piped     domain.VideosAPI
	Demo      domain.VideosAPI
}

// NewSet creates the three clients sharing a keychain and logger.
func NewSet(keys keychain.Keychain, logger *slog.Logger) *Set {
	return &Set{
		Invidious: invidious.NewClient(keys, logger),
		Piped:     piped.NewClient(keys, logger),
		Demo:      demo.NewClient(logger),
	}
}

// ForApp returns the client for a backend kind. The invidious client is
// the default for the empty and unknown cases, so callers always get a
// concrete client; an unauthenticated call then fails with a backend
// error rather than a nil dereference.
func (s *Set) ForApp(app domain.App) domain.VideosAPI {
	switch app {
	case domain.AppPiped:
		return s.Piped
	case domain.AppDemo:
		return s.Demo
	default:
		return s.Invidious
	}
}
