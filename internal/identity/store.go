package identity

import (
	"errors"

	"github.com/julianstephens/tokumei/internal/constants"
	"github.com/julianstephens/tokumei/internal/keyring"
	"github.com/julianstephens/tokumei/internal/storage"
)

// Store persists the identity token under a fixed name.
type Store interface {
	// Get returns the stored token; ok is false when none has been stored.
	Get() (userID string, ok bool, err error)
	Set(userID string) error
}

// KVStore keeps the token in the local key/value table.
type KVStore struct {
	kv storage.KV
}

func NewKVStore(kv storage.KV) *KVStore {
	return &KVStore{kv: kv}
}

func (s *KVStore) Get() (string, bool, error) {
	userID, ok, err := s.kv.Get(constants.IdentityKey)
	if err != nil || !ok || userID == "" {
		return "", false, err
	}
	return userID, true, nil
}

func (s *KVStore) Set(userID string) error {
	return s.kv.Set(constants.IdentityKey, userID)
}

// KeyringStore keeps the token in the OS keyring.
type KeyringStore struct{}

func (KeyringStore) Get() (string, bool, error) {
	userID, err := keyring.GetIdentity()
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return userID, true, nil
}

func (KeyringStore) Set(userID string) error {
	return keyring.SetIdentity(userID)
}

// NewStore returns the store for the configured backend.
func NewStore(backend constants.IdentityBackend, kv storage.KV) Store {
	if backend == constants.IdentityBackendKeyring {
		return KeyringStore{}
	}
	return NewKVStore(kv)
}
