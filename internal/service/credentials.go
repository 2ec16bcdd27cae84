package service

import (
	"context"
	"errors"
	"fmt"

	domainauth "github.com/ousseynou98/frontsurete-sub001/internal/domain/auth"
	"github.com/ousseynou98/frontsurete-sub001/internal/ports"
)

// StorageKeys names the well-known storage entries. Changing them orphans issued sessions.
type StorageKeys struct {
	Token          string
	Identity       string
	LegacyIdentity string
}

// DefaultStorageKeys returns the keys used since the first release.
func DefaultStorageKeys() StorageKeys {
	return StorageKeys{Token: "token", Identity: "user", LegacyIdentity: "userInfo"}
}

func (k StorageKeys) withDefaults() StorageKeys {
	d := DefaultStorageKeys()
	if k.Token == "" {
		k.Token = d.Token
	}
	if k.Identity == "" {
		k.Identity = d.Identity
	}
	if k.LegacyIdentity == "" {
		k.LegacyIdentity = d.LegacyIdentity
	}
	return k
}

// CredentialStoreOptions groups dependencies for CredentialStore.
type CredentialStoreOptions struct {
	Storage ports.Storage
	Keys    StorageKeys
	// Namespace identifies the storage scope; defaults to the storage's own Namespace() if it has one.
	Namespace string
}

// CredentialStore reads and writes the session credential and cached identity.
// It never caches: every call goes to storage.
type CredentialStore struct {
	storage   ports.Storage
	keys      StorageKeys
	namespace string
}

// NewCredentialStore constructs a CredentialStore over a client's storage.
func NewCredentialStore(opts CredentialStoreOptions) (*CredentialStore, error) {
	if opts.Storage == nil {
		return nil, errors.New("storage is required")
	}
	ns := opts.Namespace
	if ns == "" {
		if named, ok := opts.Storage.(interface{ Namespace() string }); ok {
			ns = named.Namespace()
		}
	}
	if ns == "" {
		ns = "default"
	}
	return &CredentialStore{storage: opts.Storage, keys: opts.Keys.withDefaults(), namespace: ns}, nil
}

// Namespace identifies the storage scope of this store.
func (s *CredentialStore) Namespace() string { return s.namespace }

// ReadToken returns the stored bearer token. An empty stored value counts as absent.
func (s *CredentialStore) ReadToken(ctx context.Context) (string, bool, error) {
	tok, ok, err := s.storage.Get(ctx, s.keys.Token)
	if err != nil {
		return "", false, fmt.Errorf("read token: %w", err)
	}
	if !ok || tok == "" {
		return "", false, nil
	}
	return tok, true, nil
}

// ReadRawIdentity returns the stored identity blob, preferring the primary key over the legacy one.
func (s *CredentialStore) ReadRawIdentity(ctx context.Context) (domainauth.RawIdentity, bool, error) {
	for _, key := range []string{s.keys.Identity, s.keys.LegacyIdentity} {
		v, ok, err := s.storage.Get(ctx, key)
		if err != nil {
			return nil, false, fmt.Errorf("read identity %q: %w", key, err)
		}
		if ok && v != "" {
			return domainauth.RawIdentity(v), true, nil
		}
	}
	return nil, false, nil
}

// Save stores a fresh credential and identity, dropping any legacy identity entry.
func (s *CredentialStore) Save(ctx context.Context, token string, raw domainauth.RawIdentity) error {
	if token == "" {
		return errors.New("token is required")
	}
	if err := s.storage.Set(ctx, s.keys.Token, token); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	if len(raw) > 0 {
		if err := s.storage.Set(ctx, s.keys.Identity, string(raw)); err != nil {
			return fmt.Errorf("write identity: %w", err)
		}
	} else if err := s.storage.Delete(ctx, s.keys.Identity); err != nil {
		return fmt.Errorf("drop identity: %w", err)
	}
	if err := s.storage.Delete(ctx, s.keys.LegacyIdentity); err != nil {
		return fmt.Errorf("drop legacy identity: %w", err)
	}
	return nil
}

// Clear removes the credential and both identity entries. Clearing an empty store is a no-op.
func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, s.keys.Token, s.keys.Identity, s.keys.LegacyIdentity); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
