package service

import (
	"context"
	"errors"
	"testing"

	domainauth "github.com/ousseynou98/frontsurete-sub001/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuard(t *testing.T, policy domainauth.Policy, seed map[string]string) (*Guard, *CredentialStore) {
	t.Helper()
	store, _ := newStore(t, seed)
	g, err := NewGuard(GuardOptions{Policy: policy, Sessions: NewSessionQuery(SessionQueryOptions{Credentials: store})})
	require.NoError(t, err)
	return g, store
}

func TestGuard_Private(t *testing.T) {
	policy := domainauth.PrivatePolicy("/login")

	g, _ := newGuard(t, policy, nil)
	d, sess := g.Evaluate(context.Background())
	assert.Equal(t, domainauth.RedirectTo("/login"), d)
	assert.False(t, sess.Authenticated)

	g, _ = newGuard(t, policy, map[string]string{"token": "t", "user": "{broken"})
	d, sess = g.Evaluate(context.Background())
	assert.Equal(t, domainauth.Allow(), d)
	assert.True(t, sess.Authenticated)
	assert.Nil(t, sess.Identity)
}

func TestGuard_PublicOnly(t *testing.T) {
	policy := domainauth.PublicOnlyPolicy("/dashboard")

	g, _ := newGuard(t, policy, nil)
	d, _ := g.Evaluate(context.Background())
	assert.Equal(t, domainauth.Allow(), d)

	g, _ = newGuard(t, policy, map[string]string{"token": "t"})
	d, sess := g.Evaluate(context.Background())
	assert.Equal(t, domainauth.RedirectTo("/dashboard"), d)
	assert.False(t, sess.Authenticated, "a redirected evaluation carries no session data")
}

func TestGuard_ReadsStorageAtDecisionTime(t *testing.T) {
	g, store := newGuard(t, domainauth.PrivatePolicy("/login"), map[string]string{"token": "t"})
	ctx := context.Background()

	d, _ := g.Evaluate(ctx)
	assert.Equal(t, domainauth.DecisionAllow, d.Kind)

	require.NoError(t, store.Clear(ctx))
	d, _ = g.Evaluate(ctx)
	assert.Equal(t, domainauth.RedirectTo("/login"), d)
}

type failingSessions struct{}

func (failingSessions) CurrentSession(context.Context) (domainauth.Session, error) {
	return domainauth.Session{}, errors.New("storage unavailable")
}

func TestGuard_PendingWhenUndecidable(t *testing.T) {
	g, err := NewGuard(GuardOptions{Policy: domainauth.PrivatePolicy("/login"), Sessions: failingSessions{}})
	require.NoError(t, err)
	d, sess := g.Evaluate(context.Background())
	assert.Equal(t, domainauth.Pending(), d)
	assert.False(t, sess.Authenticated)

	ok, _ := newGuard(t, domainauth.PrivatePolicy("/login"), map[string]string{"token": "t"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d, _ = ok.Evaluate(ctx)
	assert.Equal(t, domainauth.Pending(), d)
}

func TestNewGuard_Validation(t *testing.T) {
	_, err := NewGuard(GuardOptions{Policy: domainauth.PrivatePolicy("/login")})
	require.Error(t, err)

	store, _ := newStore(t, nil)
	_, err = NewGuard(GuardOptions{Sessions: NewSessionQuery(SessionQueryOptions{Credentials: store})})
	require.Error(t, err)
}
