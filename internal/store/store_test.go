package store

import (
	"testing"

	"github.com/tubularapp/tubular/internal/domain"
	"github.com/tubularapp/tubular/internal/keychain"
)

func newTestStore(t *testing.T) (*Store, *keychain.Memory) {
	t.Helper()
	keys := keychain.NewMemory()
	s, err := NewStore(t.TempDir(), keys)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, keys
}

func TestAddInstanceGeneratesID(t *testing.T) {
	s, _ := newTestStore(t)

	inst, err := s.AddInstance(domain.Instance{App: domain.AppInvidious, APIURL: "https://inv.example"})
	if err != nil {
		t.Fatalf("AddInstance: %v", err)
	}
	if inst.ID == "" {
		t.Error("expected generated instance id")
	}

	found, ok := s.FindInstance(inst.ID)
	if !ok {
		t.Fatal("instance not found after add")
	}
	if found.APIURL != "https://inv.example" {
		t.Errorf("unexpected APIURL %q", found.APIURL)
	}
}

func TestAddInstanceRejectsInvalidURL(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.AddInstance(domain.Instance{App: domain.AppPiped, APIURL: "not a url"}); err == nil {
		t.Error("expected error for invalid API URL")
	}

	// The demo backend has no API endpoint, so no URL is required.
	if _, err := s.AddInstance(domain.Instance{App: domain.AppDemo}); err != nil {
		t.Errorf("demo instance without URL should be valid, got %v", err)
	}
}

func TestRemoveInstanceCascades(t *testing.T) {
	s, keys := newTestStore(t)

	inv, err := s.AddInstance(domain.NewInstance(domain.AppInvidious, "", "https://inv.example"))
	if err != nil {
		t.Fatalf("AddInstance: %v", err)
	}
	piped, err := s.AddInstance(domain.NewInstance(domain.AppPiped, "", "https://piped.example"))
	if err != nil {
		t.Fatalf("AddInstance: %v", err)
	}

	bound := domain.NewAccount(inv, "alice")
	other := domain.NewAccount(piped, "bob")
	if err := s.AppendAccount(bound); err != nil {
		t.Fatalf("AppendAccount: %v", err)
	}
	if err := s.AppendAccount(other); err != nil {
		t.Fatalf("AppendAccount: %v", err)
	}
	keys.Set(bound.ID, keychain.FieldToken, "tok")

	if err := s.RemoveInstance(inv.ID); err != nil {
		t.Fatalf("RemoveInstance: %v", err)
	}

	if s.FindAccount(bound.ID) != nil {
		t.Error("account bound to removed instance still discoverable")
	}
	if _, ok := keys.Get(bound.ID, keychain.FieldToken); ok {
		t.Error("secrets of cascaded account were not purged")
	}
	if s.FindAccount(other.ID) == nil {
		t.Error("account on another instance was removed")
	}
	if _, ok := s.FindInstance(inv.ID); ok {
		t.Error("instance still present after removal")
	}
}

func TestRemoveInstanceUnknown(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.RemoveInstance("nope"); err != domain.ErrInstanceNotFound {
		t.Errorf("expected ErrInstanceNotFound, got %v", err)
	}
}

func TestRemoveAccountIdempotent(t *testing.T) {
	s, _ := newTestStore(t)

	inst, _ := s.AddInstance(domain.NewInstance(domain.AppInvidious, "", "https://inv.example"))
	account := domain.NewAccount(inst, "alice")
	if err := s.AppendAccount(account); err != nil {
		t.Fatalf("AppendAccount: %v", err)
	}

	if err := s.RemoveAccount(account.ID); err != nil {
		t.Fatalf("RemoveAccount: %v", err)
	}
	// Second removal of the same id is a no-op, not an error.
	if err := s.RemoveAccount(account.ID); err != nil {
		t.Errorf("second RemoveAccount: %v", err)
	}
	if err := s.RemoveAccount("never-existed"); err != nil {
		t.Errorf("RemoveAccount of unknown id: %v", err)
	}
}

func TestLastUsedAccount(t *testing.T) {
	s, _ := newTestStore(t)

	if s.LastUsedAccount() != nil {
		t.Error("fresh store should have no last-used account")
	}

	inst, _ := s.AddInstance(domain.NewInstance(domain.AppInvidious, "", "https://inv.example"))
	account := domain.NewAccount(inst, "alice")
	s.AppendAccount(account)

	if err := s.SetLastAccountID(account.ID); err != nil {
		t.Fatalf("SetLastAccountID: %v", err)
	}
	got := s.LastUsedAccount()
	if got == nil || got.ID != account.ID {
		t.Fatalf("LastUsedAccount = %v, want %s", got, account.ID)
	}

	// A stale id is tolerated, not an error.
	s.RemoveAccount(account.ID)
	if s.LastUsedAccount() != nil {
		t.Error("stale last-used id should resolve to nil")
	}
}

func TestAccountsKeepInsertionOrder(t *testing.T) {
	s, _ := newTestStore(t)

	inst, _ := s.AddInstance(domain.NewInstance(domain.AppInvidious, "", "https://inv.example"))
	names := []string{"first", "second", "third"}
	for _, name := range names {
		if err := s.AppendAccount(domain.NewAccount(inst, name)); err != nil {
			t.Fatalf("AppendAccount: %v", err)
		}
	}

	accounts := s.Accounts()
	if len(accounts) != len(names) {
		t.Fatalf("got %d accounts, want %d", len(accounts), len(names))
	}
	for i, name := range names {
		if accounts[i].Name != name {
			t.Errorf("accounts[%d].Name = %q, want %q", i, accounts[i].Name, name)
		}
	}
}

func TestUpdateAccount(t *testing.T) {
	s, _ := newTestStore(t)

	inst, _ := s.AddInstance(domain.NewInstance(domain.AppPiped, "", "https://piped.example"))
	account := domain.NewAccount(inst, "alice")
	account.Username = "legacy-user"
	s.AppendAccount(account)

	account.Username = ""
	if err := s.UpdateAccount(account); err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}

	got := s.FindAccount(account.ID)
	if got == nil || got.Username != "" {
		t.Errorf("legacy field not cleared, got %+v", got)
	}

	// Unknown id is a no-op.
	if err := s.UpdateAccount(domain.Account{ID: "ghost"}); err != nil {
		t.Errorf("UpdateAccount unknown id: %v", err)
	}
}

func TestLastAccountIsPublic(t *testing.T) {
	s, _ := newTestStore(t)

	if s.LastAccountIsPublic() {
		t.Error("fresh store should not report a public last account")
	}
	if err := s.SetLastAccountIsPublic(true); err != nil {
		t.Fatalf("SetLastAccountIsPublic: %v", err)
	}
	if !s.LastAccountIsPublic() {
		t.Error("flag not persisted")
	}
}
