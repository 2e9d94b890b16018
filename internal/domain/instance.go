package domain

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Instance is a configured backend deployment: where the API lives and
// which backend software answers there.
type Instance struct {
	ID            string `json:"id"`
	App           App    `json:"app"`
	Name          string `json:"name"`
	APIURL        string `json:"apiUrl"`
	FrontendURL   string `json:"frontendUrl,omitempty"`
	ProxiesVideos bool   `json:"proxiesVideos"`
}

// NewInstance creates an Instance with a freshly generated id.
func NewInstance(app App, name, apiURL string) Instance {
	return Instance{
		ID:     uuid.NewString(),
		App:    app,
		Name:   name,
		APIURL: strings.TrimRight(apiURL, "/"),
	}
}

// Validate checks structural requirements. The demo backend has no real
// API endpoint, so its URL is not required.
func (i Instance) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("instance id is required")
	}
	if _, err := ParseApp(string(i.App)); err != nil {
		return err
	}
	if i.App == AppDemo {
		return nil
	}
	u, err := url.Parse(i.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API URL %q for %s instance", i.APIURL, i.App.Name())
	}
	return nil
}

// AnonymousAccount derives the placeholder identity used to browse this
// instance without signing in.
func (i Instance) AnonymousAccount() Account {
	return Account{
		ID:         "anonymous-" + i.ID,
		InstanceID: i.ID,
		Name:       "Anonymous",
		URL:        i.APIURL,
		Anonymous:  true,
	}
}

// FrontendHost returns the host used for share links. Invidious serves its
// frontend from the API URL; Piped needs a separately configured frontend.
// Empty means sharing is unsupported for this instance.
func (i Instance) FrontendHost() string {
	raw := i.FrontendURL
	if i.App == AppInvidious {
		raw = i.APIURL
	}
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}

// Description returns a short label for pickers and logs.
func (i Instance) Description() string {
	if i.App == AppDemo {
		return "Demo"
	}
	if i.Name == "" {
		return fmt.Sprintf("%s - %s", i.App.Name(), i.APIURL)
	}
	return fmt.Sprintf("%s - %s (%s)", i.App.Name(), i.Name, i.APIURL)
}
