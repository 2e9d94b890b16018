package piped

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tubularapp/tubular/internal/domain"
	"github.com/tubularapp/tubular/internal/keychain"
	"github.com/tubularapp/tubular/internal/log"
)

func newTestClient(t *testing.T, apiURL string) (*Client, *keychain.Memory, domain.Instance, domain.Account) {
	t.Helper()
	keys := keychain.NewMemory()
	client := NewClient(keys, log.NullLogger())
	instance := domain.NewInstance(domain.AppPiped, "test", apiURL)
	account := domain.NewAccount(instance, "bob")
	return client, keys, instance, account
}

func TestValidateExchangesCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var login loginRequest
		if err := json.NewDecoder(r.Body).Decode(&login); err != nil {
			t.Errorf("decode login body: %v", err)
		}
		if login.Username != "bob" || login.Password != "hunter2" {
			t.Errorf("login body = %+v", login)
		}
		json.NewEncoder(w).Encode(loginResponse{Token: "session-token"})
	}))
	defer server.Close()

	client, keys, instance, account := newTestClient(t, server.URL)
	keys.Set(account.ID, keychain.FieldUsername, "bob")
	keys.Set(account.ID, keychain.FieldPassword, "hunter2")
	client.SetAccount(&account, instance)

	if client.SignedIn() {
		t.Error("SignedIn before login should be false")
	}
	if err := client.Validate(context.Background()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !client.SignedIn() {
		t.Error("SignedIn after login should be true")
	}
}

func TestValidateSkipsLoginWithStoredToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected when a token is already held")
	}))
	defer server.Close()

	client, keys, instance, account := newTestClient(t, server.URL)
	keys.Set(account.ID, keychain.FieldToken, "stored-token")
	client.SetAccount(&account, instance)

	if err := client.Validate(context.Background()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !client.SignedIn() {
		t.Error("stored token should count as signed in")
	}
}

func TestValidateBadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client, keys, instance, account := newTestClient(t, server.URL)
	keys.Set(account.ID, keychain.FieldUsername, "bob")
	keys.Set(account.ID, keychain.FieldPassword, "wrong")
	client.SetAccount(&account, instance)

	if err := client.Validate(context.Background()); !errors.Is(err, domain.ErrAuthFailed) {
		t.Errorf("Validate = %v, want ErrAuthFailed", err)
	}
	if client.SignedIn() {
		t.Error("failed login must not sign in")
	}
}

func TestValidateWithoutCredentials(t *testing.T) {
	client, _, instance, account := newTestClient(t, "https://piped.example")
	client.SetAccount(&account, instance)

	if err := client.Validate(context.Background()); !errors.Is(err, domain.ErrNotSignedIn) {
		t.Errorf("Validate = %v, want ErrNotSignedIn", err)
	}
}

func TestValidateDiscardsStaleLogin(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		json.NewEncoder(w).Encode(loginResponse{Token: "late-token"})
	}))
	defer server.Close()

	client, keys, instance, account := newTestClient(t, server.URL)
	keys.Set(account.ID, keychain.FieldUsername, "bob")
	keys.Set(account.ID, keychain.FieldPassword, "hunter2")
	client.SetAccount(&account, instance)

	done := make(chan error, 1)
	go func() { done <- client.Validate(context.Background()) }()

	<-started
	other := domain.NewAccount(instance, "carol")
	client.SetAccount(&other, instance)
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("stale Validate: %v", err)
	}
	if client.SignedIn() {
		t.Error("late login token leaked into the new binding")
	}
}

func TestShareURLRequiresFrontend(t *testing.T) {
	client, _, _, _ := newTestClient(t, "https://pipedapi.example")
	video := domain.VideoItem(&domain.Video{ID: "abc123"})

	// The API host serves no frontend, so without a configured frontend
	// URL there is nothing to link to.
	instance := domain.NewInstance(domain.AppPiped, "bare", "https://pipedapi.example")
	account := domain.NewAccount(instance, "bob")
	client.SetAccount(&account, instance)
	if u := client.ShareURL(video, domain.ShareOptions{}); u != nil {
		t.Errorf("ShareURL without frontend = %s, want nil", u)
	}

	instance.FrontendURL = "https://piped.example"
	client.SetAccount(&account, instance)
	u := client.ShareURL(video, domain.ShareOptions{Time: time.Minute})
	if u == nil || u.String() != "https://piped.example/watch?t=60&v=abc123" {
		t.Errorf("ShareURL = %v", u)
	}

	u = client.ShareURL(video, domain.ShareOptions{FrontendHost: "other.example"})
	if u == nil || u.Host != "other.example" {
		t.Errorf("ShareURL with override = %v", u)
	}
}

func TestVideo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/streams/abc123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(streamDTO{
			Title:       "First",
			Uploader:    "Alice",
			UploaderURL: "/channel/UC42",
			Duration:    125,
			Views:       9001,
			UploadDate:  "2023-11-14",
		})
	}))
	defer server.Close()

	client, _, instance, account := newTestClient(t, server.URL)
	client.SetAccount(&account, instance)

	video, err := client.Video(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Video: %v", err)
	}
	if video.ID != "abc123" {
		t.Errorf("ID = %q, the caller-supplied id must be kept", video.ID)
	}
	if video.Author != "Alice" || video.AuthorID != "UC42" {
		t.Errorf("author = %q/%q", video.Author, video.AuthorID)
	}
	if video.Length != 125*time.Second {
		t.Errorf("Length = %v", video.Length)
	}
	want := time.Date(2023, 11, 14, 0, 0, 0, 0, time.UTC)
	if !video.Published.Equal(want) {
		t.Errorf("Published = %v, want %v", video.Published, want)
	}
}

func TestTrendingAttachesToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if got := r.URL.Query().Get("region"); got != "DE" {
			t.Errorf("region = %q, want DE", got)
		}
		json.NewEncoder(w).Encode([]itemDTO{
			{URL: "/watch?v=v1", Title: "One", UploaderURL: "/channel/UC1", Uploaded: 1700000000000},
			{URL: "/playlist?list=PL1", Title: "Not a video"},
		})
	}))
	defer server.Close()

	client, keys, instance, account := newTestClient(t, server.URL)
	keys.Set(account.ID, keychain.FieldToken, "session-token")
	client.SetAccount(&account, instance)

	videos, err := client.Trending(context.Background(), "DE", "default")
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if gotAuth != "session-token" {
		t.Errorf("Authorization = %q, want the raw token", gotAuth)
	}
	if len(videos) != 1 || videos[0].ID != "v1" || videos[0].AuthorID != "UC1" {
		t.Errorf("Trending = %+v", videos)
	}
	if got := videos[0].Published; got != time.UnixMilli(1700000000000).UTC() {
		t.Errorf("Published = %v", got)
	}
}

func TestSearchVideos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("filter"); got != "videos" {
			t.Errorf("filter = %q, want videos", got)
		}
		json.NewEncoder(w).Encode(searchPageDTO{
			Items: []itemDTO{
				{URL: "/watch?v=v1", Title: "Hit"},
			},
			Nextpage: "opaque",
		})
	}))
	defer server.Close()

	client, _, instance, account := newTestClient(t, server.URL)
	client.SetAccount(&account, instance)

	videos, err := client.SearchVideos(context.Background(), "gophers")
	if err != nil {
		t.Fatalf("SearchVideos: %v", err)
	}
	if len(videos) != 1 || videos[0].Title != "Hit" {
		t.Errorf("SearchVideos = %+v", videos)
	}
}
