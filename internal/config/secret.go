package config

import (
	"errors"

	"github.com/warpdl/ariarpc/common"
	"github.com/zalando/go-keyring"
)

const secretUser = "rpc-secret"

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
)

// SecretStore keeps the daemon's RPC secret in the OS keyring.
type SecretStore struct {
	Service string
	User    string
}

func NewSecretStore() *SecretStore {
	return &SecretStore{
		Service: common.AppName,
		User:    secretUser,
	}
}

// Get returns the stored secret, or "" when none is stored.
func (s *SecretStore) Get() (string, error) {
	secret, err := keyringGet(s.Service, s.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return secret, err
}

func (s *SecretStore) Set(secret string) error {
	return keyringSet(s.Service, s.User, secret)
}

// Delete removes the stored secret. Deleting a missing secret is not an
// error.
func (s *SecretStore) Delete() error {
	err := keyringDelete(s.Service, s.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// ResolveSecret returns the secret from cfg, falling back to store when the
// file and environment leave it empty.
func ResolveSecret(cfg *Config, store *SecretStore) (string, error) {
	if cfg.RPC.Secret != "" {
		return cfg.RPC.Secret, nil
	}
	if store == nil {
		return "", nil
	}
	return store.Get()
}
