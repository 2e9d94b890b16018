package domain

import "testing"

func TestAccountEqual(t *testing.T) {
	a := &Account{ID: "1"}
	b := &Account{ID: "1", Name: "other record, same identity"}
	c := &Account{ID: "2"}

	if !a.Equal(b) {
		t.Error("accounts with the same id must compare equal")
	}
	if a.Equal(c) {
		t.Error("accounts with different ids must not compare equal")
	}

	var none *Account
	if !none.Equal(nil) {
		t.Error("the empty state must compare equal to itself")
	}
	if none.Equal(a) || a.Equal(nil) {
		t.Error("nil never equals a real account")
	}
}

func TestNeedsMigration(t *testing.T) {
	tests := []struct {
		name    string
		account Account
		want    bool
	}{
		{"clean", Account{ID: "1", Name: "alice"}, false},
		{"legacy username", Account{ID: "1", Username: "tok"}, true},
		{"legacy password", Account{ID: "1", Password: "pw"}, true},
		{"legacy name", Account{ID: "1", LegacyName: "alice"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.account.NeedsMigration(); got != tt.want {
				t.Errorf("NeedsMigration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewAccountBindsInstance(t *testing.T) {
	instance := NewInstance(AppInvidious, "home", "https://inv.example")
	account := NewAccount(instance, "alice")

	if account.ID == "" {
		t.Error("NewAccount must assign an id")
	}
	if account.InstanceID != instance.ID || account.URL != instance.APIURL {
		t.Errorf("account = %+v", account)
	}
	if account.Anonymous || account.Public {
		t.Error("new accounts are personal, non-anonymous identities")
	}
}
