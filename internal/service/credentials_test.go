package service

import (
	"context"
	"errors"
	"testing"

	domainauth "github.com/ousseynou98/frontsurete-sub001/internal/domain/auth"
	mockauth "github.com/ousseynou98/frontsurete-sub001/internal/mocks/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, seed map[string]string) (*CredentialStore, *mockauth.MemoryStorage) {
	t.Helper()
	storage := mockauth.NewMemoryStorage(seed)
	store, err := NewCredentialStore(CredentialStoreOptions{Storage: storage})
	require.NoError(t, err)
	return store, storage
}

func TestNewCredentialStore(t *testing.T) {
	_, err := NewCredentialStore(CredentialStoreOptions{})
	require.Error(t, err)

	store, _ := newStore(t, nil)
	assert.Equal(t, "default", store.Namespace())

	named, err := NewCredentialStore(CredentialStoreOptions{Storage: mockauth.NewMemoryStorage(nil), Namespace: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "abc", named.Namespace())
}

func TestCredentialStore_ReadToken(t *testing.T) {
	ctx := context.Background()

	store, _ := newStore(t, map[string]string{"token": "abc"})
	tok, ok, err := store.ReadToken(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	empty, _ := newStore(t, map[string]string{"token": ""})
	_, ok, err = empty.ReadToken(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	missing, _ := newStore(t, nil)
	_, ok, err = missing.ReadToken(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCredentialStore_ReadTokenError(t *testing.T) {
	store, storage := newStore(t, map[string]string{"token": "abc"})
	storage.GetErr = errors.New("storage offline")

	_, _, err := store.ReadToken(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.GetErr)
}

func TestCredentialStore_ReadRawIdentity(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		seed  map[string]string
		want  string
		found bool
	}{
		{name: "primary", seed: map[string]string{"user": `{"name":"a"}`, "userInfo": `{"name":"b"}`}, want: `{"name":"a"}`, found: true},
		{name: "legacy fallback", seed: map[string]string{"userInfo": `{"name":"b"}`}, want: `{"name":"b"}`, found: true},
		{name: "empty primary falls back", seed: map[string]string{"user": "", "userInfo": `{"name":"b"}`}, want: `{"name":"b"}`, found: true},
		{name: "none", seed: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newStore(t, tt.seed)
			raw, found, err := store.ReadRawIdentity(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, string(raw))
		})
	}
}

func TestCredentialStore_SaveAndClear(t *testing.T) {
	ctx := context.Background()
	store, storage := newStore(t, map[string]string{"userInfo": `{"name":"old"}`})

	require.Error(t, store.Save(ctx, "", nil))

	require.NoError(t, store.Save(ctx, "tok", domainauth.RawIdentity(`{"name":"new"}`)))
	assert.Equal(t, []string{"token", "user"}, storage.Keys())

	require.NoError(t, store.Save(ctx, "tok2", nil))
	assert.Equal(t, []string{"token"}, storage.Keys())

	require.NoError(t, store.Clear(ctx))
	assert.Empty(t, storage.Keys())
	require.NoError(t, store.Clear(ctx))
	assert.Empty(t, storage.Keys())
}

func TestCredentialStore_CustomKeys(t *testing.T) {
	storage := mockauth.NewMemoryStorage(map[string]string{"jwt": "t", "profile": "{}"})
	store, err := NewCredentialStore(CredentialStoreOptions{Storage: storage, Keys: StorageKeys{Token: "jwt", Identity: "profile"}})
	require.NoError(t, err)

	tok, ok, err := store.ReadToken(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "t", tok)

	require.NoError(t, store.Clear(context.Background()))
	assert.Empty(t, storage.Keys())
}
