package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/ousseynou98/frontsurete-sub001/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionQuery_AuthenticatedWithIdentity(t *testing.T) {
	store, _ := newStore(t, map[string]string{
		"token": "abc",
		"user":  `{"firstname":"Jane","lastname":"Doe","role":"DSM"}`,
	})
	q := NewSessionQuery(SessionQueryOptions{Credentials: store})

	sess, err := q.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.True(t, sess.Authenticated)
	require.NotNil(t, sess.Identity)
	assert.Equal(t, "Jane Doe", sess.Identity.DisplayName)
	assert.Equal(t, domainauth.RoleDSM, sess.Identity.Role)
	assert.Equal(t, domainauth.DefaultEmail, sess.Identity.Email)
}

func TestSessionQuery_NoToken(t *testing.T) {
	store, _ := newStore(t, map[string]string{"user": `{"name":"ghost"}`})
	q := NewSessionQuery(SessionQueryOptions{Credentials: store})

	sess, err := q.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.False(t, sess.Authenticated)
	assert.Nil(t, sess.Identity)
}

func TestSessionQuery_LegacyIdentity(t *testing.T) {
	store, _ := newStore(t, map[string]string{"token": "abc", "userInfo": `{"name":"Legacy","role":"rso_formateur"}`})
	q := NewSessionQuery(SessionQueryOptions{Credentials: store})

	sess, err := q.CurrentSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess.Identity)
	assert.Equal(t, "Legacy", sess.Identity.DisplayName)
	assert.Equal(t, domainauth.RoleRSO, sess.Identity.Role)
}

func TestSessionQuery_MalformedIdentity(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	store, _ := newStore(t, map[string]string{"token": "abc", "user": "not json"})
	q := NewSessionQuery(SessionQueryOptions{Credentials: store, Logger: logger})

	sess, err := q.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.True(t, sess.Authenticated)
	assert.Nil(t, sess.Identity)
	assert.Contains(t, buf.String(), "identity payload rejected")
}

func TestSessionQuery_ReflectsStorageChanges(t *testing.T) {
	ctx := context.Background()
	store, storage := newStore(t, nil)
	q := NewSessionQuery(SessionQueryOptions{Credentials: store})

	sess, err := q.CurrentSession(ctx)
	require.NoError(t, err)
	assert.False(t, sess.Authenticated)

	require.NoError(t, storage.Set(ctx, "token", "abc"))
	sess, err = q.CurrentSession(ctx)
	require.NoError(t, err)
	assert.True(t, sess.Authenticated)

	require.NoError(t, store.Clear(ctx))
	sess, err = q.CurrentSession(ctx)
	require.NoError(t, err)
	assert.False(t, sess.Authenticated)
}

func TestSessionQuery_StorageError(t *testing.T) {
	store, storage := newStore(t, map[string]string{"token": "abc"})
	storage.GetErr = errors.New("boom")
	q := NewSessionQuery(SessionQueryOptions{Credentials: store})

	_, err := q.CurrentSession(context.Background())
	require.Error(t, err)
}

func TestSessionQuery_TokenExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	sign := func(exp time.Time) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		}).SignedString([]byte("k"))
		require.NoError(t, err)
		return tok
	}

	tests := []struct {
		name       string
		token      string
		check      bool
		wantAuthed bool
	}{
		{name: "expired jwt with check", token: sign(now.Add(-time.Minute)), check: true, wantAuthed: false},
		{name: "expired jwt without check", token: sign(now.Add(-time.Minute)), check: false, wantAuthed: true},
		{name: "valid jwt", token: sign(now.Add(time.Hour)), check: true, wantAuthed: true},
		{name: "opaque token", token: "opaque-token", check: true, wantAuthed: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newStore(t, map[string]string{"token": tt.token})
			q := NewSessionQuery(SessionQueryOptions{
				Credentials:      store,
				CheckTokenExpiry: tt.check,
				Now:              func() time.Time { return now },
			})
			sess, err := q.CurrentSession(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantAuthed, sess.Authenticated)
		})
	}
}
