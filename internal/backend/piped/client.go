package piped

import (
	"bytes"
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

// Client implements domain.VideosAPI for Piped. Authentication is either a
// stored token or a username/password pair exchanged for one at /login.
type Client struct {
	mu       sync.Mutex
	account  *domain.Account
	instance domain.Instance
	username string
	password string
	token    string

	keys       keychain.Keychain
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Piped API client
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
	return domain.AppPiped
}

// SetAccount rebinds the client, dropping the previous session token and
// loading the new account's secrets from the keychain.
func (c *Client) SetAccount(account *domain.Account, instance domain.Instance) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.account = account
	c.instance = instance
	c.username = ""
	c.password = ""
	c.token = ""

	if account == nil || account.Anonymous {
		return
	}
	if username, ok := c.keys.Get(account.ID, keychain.FieldUsername); ok {
		c.username = username
	}
	if password, ok := c.keys.Get(account.ID, keychain.FieldPassword); ok {
		c.password = password
	}
	if token, ok := c.keys.Get(account.ID, keychain.FieldToken); ok {
		c.token = token
	}
}

// SignedIn reports whether the client holds a live session token, either
// stored or obtained by Validate exchanging the credentials.
func (c *Client) SignedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.account != nil && !c.account.Anonymous && c.token != ""
}

// Validate logs in with the bound credentials when no token is held yet.
// A result arriving after the binding changed is discarded.
func (c *Client) Validate(ctx context.Context) error {
	c.mu.Lock()
	account := c.account
	base := c.instance.APIURL
	username := c.username
	password := c.password
	token := c.token
	c.mu.Unlock()

	if account == nil || account.Anonymous {
		return domain.ErrNotSignedIn
	}
	if token != "" {
		return nil
	}
	if username == "" || password == "" {
		return domain.ErrNotSignedIn
	}

	payload, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/login", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ErrServerOffline
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return domain.ErrAuthFailed
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var login loginResponse
	if err := json.Unmarshal(body, &login); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if login.Token == "" {
		return domain.ErrAuthFailed
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.account == nil || account.ID != c.account.ID {
		// Binding changed while the login was in flight; stale result.
		return nil
	}
	c.token = login.Token
	return nil
}

// ShareURL builds a frontend deep link. Piped serves its frontend from a
// separate host, so sharing requires a configured frontend URL.
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

// doRequest performs an HTTP GET, attaching the session token if held
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
		req.Header.Set("Authorization", token)
	}

	c.logger.Debug("piped request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("piped request failed", "error", err)
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
		c.logger.Error("piped request error", "status", resp.StatusCode)
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return body, nil
}

// Video returns metadata for a single video
func (c *Client) Video(ctx context.Context, id string) (*domain.Video, error) {
	body, err := c.doRequest(ctx, "/streams/"+id, nil)
	if err != nil {
		return nil, err
	}

	var dto streamDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	video := mapStream(id, dto)
	return &video, nil
}

// Trending returns the trending feed for a country. Piped has no category
// dimension; the parameter is ignored.
func (c *Client) Trending(ctx context.Context, country, _ string) ([]domain.Video, error) {
	query := url.Values{}
	if country != "" {
		query.Set("region", country)
	}

	body, err := c.doRequest(ctx, "/trending", query)
	if err != nil {
		return nil, err
	}

	var dtos []itemDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return mapItems(dtos), nil
}

// SearchVideos performs a video search
func (c *Client) SearchVideos(ctx context.Context, query string) ([]domain.Video, error) {
	params := url.Values{
		"q":      {query},
		"filter": {"videos"},
	}

	body, err := c.doRequest(ctx, "/search", params)
	if err != nil {
		return nil, err
	}

	var page searchPageDTO
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return mapItems(page.Items), nil
}
