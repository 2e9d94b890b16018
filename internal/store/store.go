package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/tubularapp/tubular/internal/domain"
	"github.com/tubularapp/tubular/internal/keychain"
)

// Bucket names
var (
	bucketInstances = []byte("instances")
	bucketAccounts  = []byte("accounts")
	bucketState     = []byte("state")
)

// State keys
const (
	keyLastAccountID       = "last_account_id"
	keyLastInstanceID      = "last_instance_id"
	keyLastAccountIsPublic = "last_account_is_public"
)

// Store is the durable home of instances, accounts and last-used state,
// backed by BoltDB. Ordered lists are stored whole under a single key so
// insertion order survives round trips. Secrets never pass through here;
// removals delegate secret purging to the keychain.
type Store struct {
	db   *bolt.DB
	keys keychain.Keychain
}

// NewStore opens (or creates) the database under dataDir. An empty dataDir
// gives a memory-only store with no persistence, used by tests.
func NewStore(dataDir string, keys keychain.Keychain) (*Store, error) {
	if keys == nil {
		keys = keychain.NewMemory()
	}

	if dataDir == "" {
		db, err := openMemory()
		if err != nil {
			return nil, err
		}
		return &Store{db: db, keys: keys}, nil
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dataDir, "tubular.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	if err := createBuckets(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, keys: keys}, nil
}

// openMemory opens a throwaway database backed by a temp file. Bolt has no
// true in-memory mode; the file is unlinked immediately.
func openMemory() (*bolt.DB, error) {
	f, err := os.CreateTemp("", "tubular-mem-*.db")
	if err != nil {
		return nil, err
	}
	path := f.Name()
	f.Close()

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}
	os.Remove(path)

	if err := createBuckets(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func createBuckets(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketInstances, bucketAccounts, bucketState} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *Store) get(bucket []byte, key string, dest interface{}) bool {
	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	return json.Unmarshal(data, dest) == nil
}

func (s *Store) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put([]byte(key), data)
	})
}

// === Instances ===

// Instances returns all configured instances in insertion order.
func (s *Store) Instances() []domain.Instance {
	var instances []domain.Instance
	s.get(bucketInstances, "list", &instances)
	return instances
}

// FindInstance looks up an instance by id.
func (s *Store) FindInstance(id string) (domain.Instance, bool) {
	for _, inst := range s.Instances() {
		if inst.ID == id {
			return inst, true
		}
	}
	return domain.Instance{}, false
}

// AddInstance appends an instance, generating an id when absent.
func (s *Store) AddInstance(inst domain.Instance) (domain.Instance, error) {
	if inst.ID == "" {
		inst.ID = uuid.NewString()
	}
	if err := inst.Validate(); err != nil {
		return domain.Instance{}, err
	}

	instances := s.Instances()
	for _, existing := range instances {
		if existing.ID == inst.ID {
			return domain.Instance{}, fmt.Errorf("instance %s already exists", inst.ID)
		}
	}

	instances = append(instances, inst)
	if err := s.set(bucketInstances, "list", instances); err != nil {
		return domain.Instance{}, err
	}
	return inst, nil
}

// RemoveInstance deletes an instance and cascades to every account bound
// to it, including their keychain secrets.
func (s *Store) RemoveInstance(id string) error {
	instances := s.Instances()
	index := -1
	for i, inst := range instances {
		if inst.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return domain.ErrInstanceNotFound
	}

	for _, account := range s.Accounts() {
		if account.InstanceID == id {
			if err := s.RemoveAccount(account.ID); err != nil {
				return err
			}
		}
	}

	instances = append(instances[:index], instances[index+1:]...)
	return s.set(bucketInstances, "list", instances)
}

// LastUsedInstance resolves the durably stored last-used instance id.
// A stale or unset id yields (zero, false).
func (s *Store) LastUsedInstance() (domain.Instance, bool) {
	var id string
	if !s.get(bucketState, keyLastInstanceID, &id) || id == "" {
		return domain.Instance{}, false
	}
	return s.FindInstance(id)
}

// === Accounts ===

// Accounts returns all stored accounts in insertion order.
func (s *Store) Accounts() []domain.Account {
	var accounts []domain.Account
	s.get(bucketAccounts, "list", &accounts)
	return accounts
}

// FindAccount looks up an account by id. Nil means not found.
func (s *Store) FindAccount(id string) *domain.Account {
	for _, account := range s.Accounts() {
		if account.ID == id {
			a := account
			return &a
		}
	}
	return nil
}

// AppendAccount adds an account record. Secrets are written separately
// through the keychain by the caller.
func (s *Store) AppendAccount(account domain.Account) error {
	accounts := s.Accounts()
	for _, existing := range accounts {
		if existing.ID == account.ID {
			return fmt.Errorf("account %s already exists", account.ID)
		}
	}
	accounts = append(accounts, account)
	return s.set(bucketAccounts, "list", accounts)
}

// UpdateAccount replaces the stored record with the same id. Unknown ids
// are a no-op.
func (s *Store) UpdateAccount(account domain.Account) error {
	accounts := s.Accounts()
	for i, existing := range accounts {
		if existing.ID == account.ID {
			accounts[i] = account
			return s.set(bucketAccounts, "list", accounts)
		}
	}
	return nil
}

// RemoveAccount purges the account's secrets and removes the record.
// Removal is idempotent: an unknown id is a no-op.
func (s *Store) RemoveAccount(id string) error {
	accounts := s.Accounts()
	for i, account := range accounts {
		if account.ID == id {
			if err := s.keys.RemoveAccount(id); err != nil {
				return fmt.Errorf("failed to purge account secrets: %w", err)
			}
			accounts = append(accounts[:i], accounts[i+1:]...)
			return s.set(bucketAccounts, "list", accounts)
		}
	}
	return nil
}

// LastUsedAccount resolves the durably stored last-used account id.
// A stale or unset id yields nil.
func (s *Store) LastUsedAccount() *domain.Account {
	var id string
	if !s.get(bucketState, keyLastAccountID, &id) || id == "" {
		return nil
	}
	return s.FindAccount(id)
}

// === Last-used state ===

// SetLastAccountID records the last-used account id; empty clears it.
func (s *Store) SetLastAccountID(id string) error {
	return s.set(bucketState, keyLastAccountID, id)
}

// SetLastInstanceID records the last-used instance id.
func (s *Store) SetLastInstanceID(id string) error {
	return s.set(bucketState, keyLastInstanceID, id)
}

// LastAccountIsPublic reports whether the previous session ended on a
// public account.
func (s *Store) LastAccountIsPublic() bool {
	var isPublic bool
	s.get(bucketState, keyLastAccountIsPublic, &isPublic)
	return isPublic
}

// SetLastAccountIsPublic records the public-account flag.
func (s *Store) SetLastAccountIsPublic(isPublic bool) error {
	return s.set(bucketState, keyLastAccountIsPublic, isPublic)
}
