// Package manifest fetches the shared directory of public instances and
// derives session-only public accounts from it.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/tubularapp/tubular/internal/domain"
)

const fetchTimeout = 10 * time.Second

// entry is a single public instance in the manifest document
type entry struct {
	Country     string `json:"country"`
	App         string `json:"app"`
	Name        string `json:"name,omitempty"`
	URL         string `json:"url"`
	FrontendURL string `json:"frontendUrl,omitempty"`
}

// document is the manifest root
type document struct {
	Instances []entry `json:"instances"`
}

// Manifest fetches public instances from a remote directory.
type Manifest struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a manifest client for the given directory URL.
func New(url string, logger *slog.Logger) *Manifest {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manifest{
		url:        url,
		httpClient: &http.Client{Timeout: fetchTimeout},
		logger:     logger,
	}
}

// InstancesForCountry fetches the manifest and returns the public
// instances scoped to a country code.
func (m *Manifest) InstancesForCountry(ctx context.Context, country string) ([]domain.Instance, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("manifest fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	country = strings.ToUpper(country)
	var instances []domain.Instance
	for _, e := range doc.Instances {
		if strings.ToUpper(e.Country) != country {
			continue
		}
		app, err := domain.ParseApp(e.App)
		if err != nil {
			m.logger.Warn("manifest entry with unknown app, skipping", "app", e.App, "url", e.URL)
			continue
		}
		instance := domain.NewInstance(app, e.Name, e.URL)
		instance.FrontendURL = e.FrontendURL
		if err := instance.Validate(); err != nil {
			m.logger.Warn("manifest entry invalid, skipping", "url", e.URL, "error", err)
			continue
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

// PublicAccount picks one public instance for the country and derives the
// session-only identity used to browse it. The account is marked public so
// activating it never moves the durable last-used markers.
func (m *Manifest) PublicAccount(ctx context.Context, country string) (domain.Instance, domain.Account, error) {
	instances, err := m.InstancesForCountry(ctx, country)
	if err != nil {
		return domain.Instance{}, domain.Account{}, err
	}
	if len(instances) == 0 {
		return domain.Instance{}, domain.Account{}, fmt.Errorf("no public instances for country %q", country)
	}

	instance := instances[rand.Intn(len(instances))]
	account := instance.AnonymousAccount()
	account.Name = "Public - " + instance.Description()
	account.Public = true
	return instance, account, nil
}
