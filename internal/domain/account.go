package domain

import "github.com/google/uuid"

// Account is a user identity bound to an Instance. Secrets never live on
// this record; they are held in the keychain keyed by the account id. The
// Username/Password fields only exist to describe the legacy layout that
// predates the keychain and are cleared by migration.
type Account struct {
	ID         string `json:"id"`
	InstanceID string `json:"instanceId,omitempty"`
	Name       string `json:"name"`
	URL        string `json:"url,omitempty"`
	Anonymous  bool   `json:"anonymous,omitempty"`
	Public     bool   `json:"public,omitempty"`

	// Legacy plaintext fields, migrated into the keychain on startup.
	// LegacyName held the Invidious login name before credentials moved
	// out of the durable record.
	Username   string `json:"username,omitempty"`
	Password   string `json:"password,omitempty"`
	LegacyName string `json:"legacyName,omitempty"`
}

// NewAccount creates an Account bound to the given instance.
func NewAccount(instance Instance, name string) Account {
	return Account{
		ID:         uuid.NewString(),
		InstanceID: instance.ID,
		Name:       name,
		URL:        instance.APIURL,
	}
}

// IsNil reports whether the pointer represents the "no account" state.
func (a *Account) IsNil() bool {
	return a == nil
}

// Equal compares accounts by identity. Two nil pointers are equal, matching
// the "no account set" state comparing equal to itself.
func (a *Account) Equal(b *Account) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

// NeedsMigration reports whether the record still carries plaintext
// credential fields from the legacy layout.
func (a Account) NeedsMigration() bool {
	return a.Username != "" || a.Password != "" || a.LegacyName != ""
}

// Credentials is a username/password pair fetched from the keychain.
// Either field may be empty; absence of a secret is a valid state.
type Credentials struct {
	Username string
	Password string
}
