// Package demo is the offline backend variant. It answers every call from
// a small deterministic catalog, never signs in and never touches the
// network, which makes it usable as a first-run playground and in tests.
package demo

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/tubularapp/tubular/internal/domain"
)

// Client implements domain.VideosAPI with canned data.
type Client struct {
	logger *slog.Logger
}

// NewClient creates the demo client
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{logger: logger}
}

// App identifies the backend variant.
func (c *Client) App() domain.App {
	return domain.AppDemo
}

// SetAccount is accepted for interface symmetry; the demo backend has no
// identity to bind.
func (c *Client) SetAccount(_ *domain.Account, _ domain.Instance) {}

// SignedIn always reports false; there is nothing to sign in to.
func (c *Client) SignedIn() bool {
	return false
}

// Validate reports ErrNotSignedIn; the demo backend has no credentials.
func (c *Client) Validate(_ context.Context) error {
	return domain.ErrNotSignedIn
}

// ShareURL always returns nil; demo content has no public home.
func (c *Client) ShareURL(_ domain.ContentItem, _ domain.ShareOptions) *url.URL {
	return nil
}

// Video returns a catalog entry by id
func (c *Client) Video(_ context.Context, id string) (*domain.Video, error) {
	for _, video := range catalog {
		if video.ID == id {
			v := video
			return &v, nil
		}
	}
	return nil, domain.ErrServerOffline
}

// Trending returns the whole catalog regardless of country or category
func (c *Client) Trending(_ context.Context, _, _ string) ([]domain.Video, error) {
	videos := make([]domain.Video, len(catalog))
	copy(videos, catalog)
	return videos, nil
}

// SearchVideos filters the catalog by a case-insensitive title match
func (c *Client) SearchVideos(_ context.Context, query string) ([]domain.Video, error) {
	query = strings.ToLower(query)
	var videos []domain.Video
	for _, video := range catalog {
		if strings.Contains(strings.ToLower(video.Title), query) {
			videos = append(videos, video)
		}
	}
	return videos, nil
}

// catalog is the fixed demo content. Published dates are pinned so output
// is stable across runs.
var catalog = []domain.Video{
	{
		ID:        "demo-aurora",
		Title:     "Aurora Timelapse over Tromsø",
		Author:    "Northern Skies",
		AuthorID:  "demo-channel-skies",
		Length:    4*time.Minute + 12*time.Second,
		Views:     1_204_533,
		Published: time.Date(2023, time.November, 3, 18, 0, 0, 0, time.UTC),
	},
	{
		ID:        "demo-sourdough",
		Title:     "Sourdough from Scratch in Five Days",
		Author:    "Flour & Water",
		AuthorID:  "demo-channel-bakery",
		Length:    16*time.Minute + 40*time.Second,
		Views:     845_102,
		Published: time.Date(2024, time.February, 11, 9, 30, 0, 0, time.UTC),
	},
	{
		ID:        "demo-marathon",
		Title:     "Training Log: First Marathon",
		Author:    "Slow Miles",
		AuthorID:  "demo-channel-running",
		Length:    11*time.Minute + 5*time.Second,
		Views:     98_761,
		Published: time.Date(2024, time.May, 27, 14, 15, 0, 0, time.UTC),
	},
	{
		ID:        "demo-synth",
		Title:     "Building a Modular Synth Case",
		Author:    "Patch Notes",
		AuthorID:  "demo-channel-synth",
		Length:    22*time.Minute + 58*time.Second,
		Views:     310_449,
		Published: time.Date(2023, time.August, 19, 20, 45, 0, 0, time.UTC),
	},
}
