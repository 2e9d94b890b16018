// Package session owns the single "current account" of the running
// process. Every switch re-binds the matching backend client before
// anything observable changes, so callers of the uniform video interface
// never see a half-configured state.
package session

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/tubularapp/tubular/internal/backend"
	"github.com/tubularapp/tubular/internal/domain"
	"github.com/tubularapp/tubular/internal/keychain"
	"github.com/tubularapp/tubular/internal/store"
)

// Controller is the only component allowed to mutate the current account.
// All mutation goes through SetCurrent under one mutex, making a switch
// atomic from an observer's perspective.
type Controller struct {
	mu       sync.Mutex
	store    *store.Store
	keys     keychain.Keychain
	backends *backend.Set
	logger   *slog.Logger

	current *domain.Account
	public  *domain.Account

	// Session-only instances (from the public manifest) that must not be
	// persisted to the registry. Consulted before the durable store.
	sessionInstances map[string]domain.Instance

	listeners []func()
}

// NewController creates the session controller.
func NewController(st *store.Store, keys keychain.Keychain, backends *backend.Set, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		store:            st,
		keys:             keys,
		backends:         backends,
		logger:           logger,
		sessionInstances: make(map[string]domain.Instance),
	}
}

// OnChange registers a listener invoked after every completed account
// switch. Listeners run outside the controller lock, after all side
// effects of the switch.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Configure resolves the initial account on startup: the durable last-used
// account, else an anonymous account on the last-used instance, else an
// anonymous account on the first registered instance, else none.
func (c *Controller) Configure() error {
	if account := c.store.LastUsedAccount(); account != nil {
		return c.SetCurrent(account)
	}
	if instance, ok := c.store.LastUsedInstance(); ok {
		account := instance.AnonymousAccount()
		return c.SetCurrent(&account)
	}
	if instances := c.store.Instances(); len(instances) > 0 {
		account := instances[0].AnonymousAccount()
		return c.SetCurrent(&account)
	}
	return nil
}

// SetCurrent switches the session to the given account; nil clears it.
// Setting the already-current account is a no-op. The bound instance is
// resolved and the backend client re-bound before anything is persisted,
// so a resolution failure leaves the previous session fully intact.
func (c *Controller) SetCurrent(account *domain.Account) error {
	c.mu.Lock()

	if account.Equal(c.current) {
		c.mu.Unlock()
		return nil
	}

	if account != nil {
		instance, ok := c.resolveInstanceLocked(account.InstanceID)
		if !ok {
			c.mu.Unlock()
			return fmt.Errorf("account %s: %w", account.ID, domain.ErrInstanceNotFound)
		}

		client := c.backends.ForApp(instance.App)
		client.SetAccount(account, instance)

		if err := c.store.SetLastAccountIsPublic(account.Public); err != nil {
			c.mu.Unlock()
			return err
		}
		if !account.Public {
			lastID := account.ID
			if account.Anonymous {
				lastID = ""
			}
			if err := c.store.SetLastAccountID(lastID); err != nil {
				c.mu.Unlock()
				return err
			}
			if err := c.store.SetLastInstanceID(account.InstanceID); err != nil {
				c.mu.Unlock()
				return err
			}
		}

		c.logger.Info("switched account",
			"account", account.ID,
			"instance", instance.Description(),
			"anonymous", account.Anonymous,
			"public", account.Public)
	}

	c.current = account
	listeners := make([]func(), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return nil
}

// Current returns the current account, nil when unset.
func (c *Controller) Current() *domain.Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// IsEmpty reports whether no account is current.
func (c *Controller) IsEmpty() bool {
	return c.Current() == nil
}

// App returns the backend kind of the current account's instance,
// defaulting to Invidious when nothing is resolvable.
func (c *Controller) App() domain.App {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return domain.AppInvidious
	}
	instance, ok := c.resolveInstanceLocked(c.current.InstanceID)
	if !ok {
		return domain.AppInvidious
	}
	return instance.App
}

// IsDemo reports whether the current account lives on the demo backend.
func (c *Controller) IsDemo() bool {
	return c.App() == domain.AppDemo
}

// API returns the active backend client. With no current account this is
// the Invidious client, whose calls fail with backend authentication
// errors instead of a missing-client failure.
func (c *Controller) API() domain.VideosAPI {
	return c.backends.ForApp(c.App())
}

// SignedIn reports whether a real (non-anonymous) account is current and
// its backend client confirms live credentials.
func (c *Controller) SignedIn() bool {
	current := c.Current()
	if current == nil || current.Anonymous {
		return false
	}
	return c.API().SignedIn()
}

// All returns every stored account.
func (c *Controller) All() []domain.Account {
	return c.store.Accounts()
}

// LastUsed returns the durably recorded last-used account, nil when unset
// or stale.
func (c *Controller) LastUsed() *domain.Account {
	return c.store.LastUsedAccount()
}

// Any returns the last-used account, or failing that a random stored one.
func (c *Controller) Any() *domain.Account {
	if account := c.LastUsed(); account != nil {
		return account
	}
	accounts := c.store.Accounts()
	if len(accounts) == 0 {
		return nil
	}
	account := accounts[rand.Intn(len(accounts))]
	return &account
}

// Find looks up a stored account by id. Nil means not found.
func (c *Controller) Find(id string) *domain.Account {
	return c.store.FindAccount(id)
}

// Add creates an account on the instance, stores the record and forwards
// the credentials to the keychain keyed by the new account id.
func (c *Controller) Add(instance domain.Instance, name, username, password string) (domain.Account, error) {
	account := domain.NewAccount(instance, name)
	if err := c.store.AppendAccount(account); err != nil {
		return domain.Account{}, err
	}
	if err := c.SetCredentials(account, username, password); err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

// Remove deletes the account record and purges its secrets. Unknown
// accounts are a no-op. Removing the current account clears the session.
func (c *Controller) Remove(account domain.Account) error {
	if err := c.store.RemoveAccount(account.ID); err != nil {
		return err
	}
	if current := c.Current(); current != nil && current.ID == account.ID {
		return c.SetCurrent(nil)
	}
	return nil
}

// SetToken stores a bearer token for the account.
func (c *Controller) SetToken(account domain.Account, token string) error {
	return c.keys.Set(account.ID, keychain.FieldToken, token)
}

// SetCredentials stores a username/password pair for the account.
func (c *Controller) SetCredentials(account domain.Account, username, password string) error {
	if err := c.keys.Set(account.ID, keychain.FieldUsername, username); err != nil {
		return err
	}
	return c.keys.Set(account.ID, keychain.FieldPassword, password)
}

// GetCredentials fetches the stored username/password pair. Missing
// fields come back empty.
func (c *Controller) GetCredentials(account domain.Account) domain.Credentials {
	username, _ := c.keys.Get(account.ID, keychain.FieldUsername)
	password, _ := c.keys.Get(account.ID, keychain.FieldPassword)
	return domain.Credentials{Username: username, Password: password}
}

// HasSecrets reports whether the keychain holds any secret for the
// account.
func (c *Controller) HasSecrets(account domain.Account) bool {
	if _, ok := c.keys.Get(account.ID, keychain.FieldUsername); ok {
		return true
	}
	if _, ok := c.keys.Get(account.ID, keychain.FieldToken); ok {
		return true
	}
	return false
}

// RemoveDefaultsCredentials clears the legacy plaintext credential fields
// on the durable account record. Only migration calls this.
func (c *Controller) RemoveDefaultsCredentials(account domain.Account) error {
	stored := c.store.FindAccount(account.ID)
	if stored == nil {
		return nil
	}
	stored.Username = ""
	stored.Password = ""
	stored.LegacyName = ""
	return c.store.UpdateAccount(*stored)
}

// SetPublicAccount registers a session-only public identity sourced from
// the instance manifest. Its instance is kept in memory, never persisted,
// and activating it does not move the durable last-used markers. With
// asCurrent false the identity is held available without switching to it.
func (c *Controller) SetPublicAccount(instance domain.Instance, account domain.Account, asCurrent bool) error {
	account.Public = true

	c.mu.Lock()
	c.sessionInstances[instance.ID] = instance
	c.public = &account
	c.mu.Unlock()

	if !asCurrent {
		return nil
	}
	return c.SetCurrent(&account)
}

// PublicAccount returns the session-only public identity, nil when none
// was activated.
func (c *Controller) PublicAccount() *domain.Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.public
}

func (c *Controller) resolveInstance(id string) (domain.Instance, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolveInstanceLocked(id)
}

// resolveInstanceLocked resolves an instance id against the session
// overlay, then the durable registry. An empty id means the account lives
// on the demo backend, which needs no configured instance.
func (c *Controller) resolveInstanceLocked(id string) (domain.Instance, bool) {
	if id == "" {
		return domain.Instance{App: domain.AppDemo}, true
	}
	if instance, ok := c.sessionInstances[id]; ok {
		return instance, true
	}
	return c.store.FindInstance(id)
}
