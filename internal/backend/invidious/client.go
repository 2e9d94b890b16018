package invidious

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/tubularapp/tubular/internal/domain"
	"github.com/tubularapp/tubular/internal/keychain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Tubular/1.0"
)

// Client implements domain.VideosAPI for Invidious. Authentication is a
// bearer token pulled from the keychain when an account is bound.
type Client struct {
	mu        sync.Mutex
	account   *domain.Account
	instance  domain.Instance
	token     string
	validated bool

	keys       keychain.Keychain
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Invidious API client
func NewClient(keys keychain.Keychain, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		keys: keys,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// App identifies the backend variant.
func (c *Client) App() domain.App {
	return domain.AppInvidious
}

// SetAccount rebinds the client. Any prior token and validation state is
// dropped before the new account's secrets are loaded, so nothing from
// the previous binding can leak into subsequent calls.
func (c *Client) SetAccount(account *domain.Account, instance domain.Instance) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.account = account
	c.instance = instance
	c.token = ""
	c.validated = false

	if account == nil || account.Anonymous {
		return
	}
	if token, ok := c.keys.Get(account.ID, keychain.FieldToken); ok {
		c.token = token
	}
}

// SignedIn reports whether the bound token has been confirmed against the
// backend. A stored token alone is not enough; Validate must succeed
// first.
func (c *Client) SignedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.account != nil && !c.account.Anonymous && c.token != "" && c.validated
}

// Validate confirms the bound token against the authenticated feed
// endpoint. If the binding changed while the request was in flight the
// result is discarded.
func (c *Client) Validate(ctx context.Context) error {
	c.mu.Lock()
	account := c.account
	token := c.token
	base := c.instance.APIURL
	c.mu.Unlock()

	if account == nil || account.Anonymous || token == "" {
		return domain.ErrNotSignedIn
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/v1/auth/feed", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ErrServerOffline
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.account == nil || account.ID != c.account.ID {
		// Binding changed while the check was in flight; stale result.
		return nil
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		c.validated = true
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.validated = false
		return domain.ErrAuthFailed
	default:
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}

// ShareURL builds a frontend deep link. Invidious serves its frontend from
// the API host, so sharing works for every configured instance.
func (c *Client) ShareURL(item domain.ContentItem, opts domain.ShareOptions) *url.URL {
	c.mu.Lock()
	host := c.instance.FrontendHost()
	c.mu.Unlock()

	if opts.FrontendHost != "" {
		host = opts.FrontendHost
	}
	if host == "" {
		return nil
	}

	u := &url.URL{Scheme: "https", Host: host}
	switch item.Type {
	case domain.ContentTypeVideo:
		if item.Video == nil {
			return nil
		}
		u.Path = "/watch"
		query := url.Values{"v": {item.Video.ID}}
		if opts.Time > 0 {
			query.Set("t", strconv.Itoa(int(opts.Time.Seconds())))
		}
		u.RawQuery = query.Encode()
	case domain.ContentTypeChannel:
		if item.Channel == nil {
			return nil
		}
		u.Path = "/channel/" + item.Channel.ID
	case domain.ContentTypePlaylist:
		if item.Playlist == nil {
			return nil
		}
		u.Path = "/playlist"
		u.RawQuery = url.Values{"list": {item.Playlist.ID}}.Encode()
	default:
		return nil
	}
	return u
}

// doRequest performs an authenticated HTTP request
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	c.mu.Lock()
	base := c.instance.APIURL
	token := c.token
	c.mu.Unlock()

	if base == "" {
		return nil, domain.ErrNotSignedIn
	}

	reqURL := base + path
	if query != nil {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("invidious request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("invidious request failed", "error", err)
		return nil, domain.ErrServerOffline
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, domain.ErrAuthFailed
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("invidious request error", "status", resp.StatusCode)
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return body, nil
}

// Video returns metadata for a single video
func (c *Client) Video(ctx context.Context, id string) (*domain.Video, error) {
	body, err := c.doRequest(ctx, "/api/v1/videos/"+id, nil)
	if err != nil {
		return nil, err
	}

	var dto videoDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	video := mapVideo(dto)
	return &video, nil
}

// Trending returns the trending feed for a country and category
func (c *Client) Trending(ctx context.Context, country, category string) ([]domain.Video, error) {
	query := url.Values{}
	if country != "" {
		query.Set("region", country)
	}
	if category != "" && category != "default" {
		query.Set("type", category)
	}

	body, err := c.doRequest(ctx, "/api/v1/trending", query)
	if err != nil {
		return nil, err
	}

	var dtos []videoDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return mapVideos(dtos), nil
}

// SearchVideos performs a video search
func (c *Client) SearchVideos(ctx context.Context, query string) ([]domain.Video, error) {
	params := url.Values{
		"q":    {query},
		"type": {"video"},
	}

	body, err := c.doRequest(ctx, "/api/v1/search", params)
	if err != nil {
		return nil, err
	}

	var dtos []videoDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return mapVideos(dtos), nil
}
