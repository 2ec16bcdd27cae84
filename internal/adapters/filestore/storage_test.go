package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	s, err := New(path)
	require.NoError(t, err)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "token", "tok123"))
	require.NoError(t, s.Set(ctx, "user", `{"name":"Awa"}`))

	// A second instance sees the same file.
	other, err := New(path)
	require.NoError(t, err)
	v, ok, err := other.Get(ctx, "user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"name":"Awa"}`, v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStorage_DeleteIdempotent(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "storage.json"))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, "token"))
	require.NoError(t, s.Set(ctx, "token", "tok"))
	require.NoError(t, s.Delete(ctx, "token", "user"))
	require.NoError(t, s.Delete(ctx, "token", "user"))

	_, ok, err := s.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))

	s, err := New(path)
	require.NoError(t, err)
	_, _, err = s.Get(context.Background(), "token")
	require.Error(t, err)
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}
