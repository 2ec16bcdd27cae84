package httpx

import (
	"context"

	domainauth "github.com/ousseynou98/frontsurete-sub001/internal/domain/auth"
	"github.com/ousseynou98/frontsurete-sub001/internal/service"
)

// Unexported context key types avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same keys.
type (
	sessionKey     struct{}
	credentialsKey struct{}
	navigatorKey   struct{}
	clientIDKey    struct{}
)

// SetSessionInContext returns a child context that carries the session a guard admitted.
func SetSessionInContext(ctx context.Context, session domainauth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session stored by a guard, if any.
func SessionFromContext(ctx context.Context) (domainauth.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(domainauth.Session)
	return s, ok
}

// IdentityFromContext returns the admitted identity, or nil for anonymous-but-authenticated sessions.
func IdentityFromContext(ctx context.Context) *domainauth.Identity {
	if s, ok := SessionFromContext(ctx); ok {
		return s.Identity
	}
	return nil
}

func withCredentials(ctx context.Context, store *service.CredentialStore, clientID string) context.Context {
	ctx = context.WithValue(ctx, credentialsKey{}, store)
	return context.WithValue(ctx, clientIDKey{}, clientID)
}

// CredentialsFromContext returns the credential store of the calling browser.
func CredentialsFromContext(ctx context.Context) (*service.CredentialStore, bool) {
	s, ok := ctx.Value(credentialsKey{}).(*service.CredentialStore)
	return s, ok && s != nil
}

// ClientIDFromContext returns the browser's client id.
func ClientIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey{}).(string)
	return id
}

func withNavigator(ctx context.Context, nav *ResponseNavigator) context.Context {
	return context.WithValue(ctx, navigatorKey{}, nav)
}

// NavigatorFromContext returns the navigator bound to the current response.
func NavigatorFromContext(ctx context.Context) (*ResponseNavigator, bool) {
	n, ok := ctx.Value(navigatorKey{}).(*ResponseNavigator)
	return n, ok && n != nil
}
