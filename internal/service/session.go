package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/ousseynou98/frontsurete-sub001/internal/domain/auth"
)

// CredentialReader is the read side of the credential store.
type CredentialReader interface {
	ReadToken(ctx context.Context) (string, bool, error)
	ReadRawIdentity(ctx context.Context) (domainauth.RawIdentity, bool, error)
}

// SessionQueryOptions groups dependencies for SessionQuery.
type SessionQueryOptions struct {
	Credentials CredentialReader
	// CheckTokenExpiry treats JWT-shaped tokens with a past exp claim as absent.
	// Opaque tokens are never expired locally.
	CheckTokenExpiry bool
	Now              func() time.Time
	Logger           *slog.Logger
}

// SessionQuery answers "is there a usable session, and as whom?" from storage alone.
type SessionQuery struct {
	creds       CredentialReader
	checkExpiry bool
	now         func() time.Time
	logger      *slog.Logger
}

// NewSessionQuery constructs a SessionQuery.
func NewSessionQuery(opts SessionQueryOptions) *SessionQuery {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionQuery{creds: opts.Credentials, checkExpiry: opts.CheckTokenExpiry, now: now, logger: logger}
}

// CurrentSession re-reads storage on every call.
// Only a failure to read the token is returned as an error; identity problems downgrade to
// an authenticated session without identity.
func (q *SessionQuery) CurrentSession(ctx context.Context) (domainauth.Session, error) {
	token, ok, err := q.creds.ReadToken(ctx)
	if err != nil {
		return domainauth.Session{}, err
	}
	if !ok {
		return domainauth.Session{}, nil
	}
	if q.checkExpiry && tokenExpired(token, q.now()) {
		return domainauth.Session{}, nil
	}

	sess := domainauth.Session{Authenticated: true}

	raw, found, err := q.creds.ReadRawIdentity(ctx)
	if err != nil {
		q.logger.WarnContext(ctx, "identity unreadable, continuing without identity", "error", err)
		return sess, nil
	}
	if !found {
		return sess, nil
	}

	identity, err := domainauth.NormalizeIdentity(raw)
	if err != nil {
		q.logger.WarnContext(ctx, "identity payload rejected", "error", err)
		return sess, nil
	}
	sess.Identity = identity
	return sess, nil
}

// tokenExpired reports whether token is a JWT whose exp claim is not after now.
// The signature is not checked: this is a local hint, the server stays authoritative.
func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
