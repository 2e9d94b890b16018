package domain

import (
	"context"
	"net/url"
	"time"
)

// ShareOptions tunes share-link generation.
type ShareOptions struct {
	// FrontendHost overrides the instance frontend (e.g. "www.youtube.com").
	FrontendHost string

	// Time is the playback offset embedded in the link; zero omits it.
	Time time.Duration
}

// VideosAPI is the capability surface every backend variant implements.
// The session controller binds exactly one account to each variant and
// dispatches all video-service calls through it; callers never see which
// backend answers.
type VideosAPI interface {
	// App identifies the backend variant.
	App() App

	// SetAccount rebinds the client to an account's identity and secrets,
	// fully replacing any prior binding. The instance is the account's
	// resolved home and supplies base and frontend URLs. Safe to call
	// repeatedly.
	SetAccount(account *Account, instance Instance)

	// SignedIn reports whether the variant holds live credentials for the
	// bound account. The demo backend always reports false.
	SignedIn() bool

	// Validate confirms the bound credentials against the backend. A result
	// arriving after the binding changed is discarded.
	Validate(ctx context.Context) error

	// ShareURL produces a deep link for the item. Nil means this
	// backend/account combination cannot produce one; that is an expected
	// outcome, not an error.
	ShareURL(item ContentItem, opts ShareOptions) *url.URL

	// Video returns metadata for a single video.
	Video(ctx context.Context, id string) (*Video, error)

	// Trending returns the trending feed for a country and category.
	Trending(ctx context.Context, country, category string) ([]Video, error)

	// SearchVideos performs a video search.
	SearchVideos(ctx context.Context, query string) ([]Video, error)
}
