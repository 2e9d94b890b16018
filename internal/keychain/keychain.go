// Package keychain stores per-account secrets separately from the durable
// configuration records. Secrets are addressed by (account id, field name)
// and a missing field is an empty result, never an error.
package keychain

import (
	"sync"

	"github.com/zalando/go-keyring"
)

// Field names used by the session controller.
const (
	FieldUsername = "username"
	FieldPassword = "password"
	FieldToken    = "token"
)

var accountFields = []string{FieldUsername, FieldPassword, FieldToken}

// Keychain is per-account, per-field secret storage. All operations are
// idempotent.
type Keychain interface {
	// Set stores a secret field for an account.
	Set(accountID, field, value string) error

	// Get retrieves a secret field. ok is false when the field was never
	// set.
	Get(accountID, field string) (value string, ok bool)

	// RemoveAccount purges every field stored for an account.
	RemoveAccount(accountID string) error
}

// OS stores secrets in the operating system keyring, scoped by service
// name so multiple installs do not collide.
type OS struct {
	service string
}

// NewOS creates an OS-keyring-backed Keychain.
func NewOS(service string) *OS {
	if service == "" {
		service = "tubular"
	}
	return &OS{service: service}
}

func (o *OS) key(accountID, field string) string {
	return accountID + "/" + field
}

func (o *OS) Set(accountID, field, value string) error {
	return keyring.Set(o.service, o.key(accountID, field), value)
}

func (o *OS) Get(accountID, field string) (string, bool) {
	value, err := keyring.Get(o.service, o.key(accountID, field))
	if err != nil {
		return "", false
	}
	return value, true
}

func (o *OS) RemoveAccount(accountID string) error {
	for _, field := range accountFields {
		if err := keyring.Delete(o.service, o.key(accountID, field)); err != nil && err != keyring.ErrNotFound {
			return err
		}
	}
	return nil
}

// Memory is an in-process Keychain used in tests and on systems without a
// usable keyring service.
type Memory struct {
	mu      sync.RWMutex
	secrets map[string]string
}

// NewMemory creates an empty in-memory Keychain.
func NewMemory() *Memory {
	return &Memory{secrets: make(map[string]string)}
}

func (m *Memory) Set(accountID, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[accountID+"/"+field] = value
	return nil
}

func (m *Memory) Get(accountID, field string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.secrets[accountID+"/"+field]
	return value, ok
}

func (m *Memory) RemoveAccount(accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, field := range accountFields {
		delete(m.secrets, accountID+"/"+field)
	}
	return nil
}
