package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainauth "github.com/ousseynou98/frontsurete-sub001/internal/domain/auth"
	"github.com/ousseynou98/frontsurete-sub001/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.LoginProvider
	Logger   *slog.Logger
}

// AuthService runs the login and logout flows against one client's credential store.
type AuthService struct {
	provider ports.LoginProvider
	logger   *slog.Logger
}

var errNoToken = errors.New("login provider returned no token")

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Provider == nil {
		return nil, errors.New("login provider is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{provider: opts.Provider, logger: logger.With("component", "auth_service")}, nil
}

// LoginResult is the session established by a successful login.
type LoginResult struct {
	Session domainauth.Session
}

// Login authenticates with the provider and persists the credential and identity into store.
// Nothing is written when authentication fails.
func (s *AuthService) Login(ctx context.Context, store *CredentialStore, in ports.LoginInput) (*LoginResult, error) {
	if store == nil {
		return nil, errors.New("credential store is required")
	}
	in.Email = strings.TrimSpace(in.Email)

	res, err := s.provider.Authenticate(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if res.Token == "" {
		return nil, errNoToken
	}

	if err := store.Save(ctx, res.Token, res.RawIdentity); err != nil {
		return nil, fmt.Errorf("save credentials: %w", err)
	}

	sess := domainauth.Session{Authenticated: true}
	identity, err := domainauth.NormalizeIdentity(res.RawIdentity)
	if err != nil {
		s.logger.WarnContext(ctx, "login returned an unusable identity", "error", err)
	} else {
		sess.Identity = identity
	}

	s.logger.InfoContext(ctx, "login succeeded", "namespace", store.Namespace(), "role", sessionRole(sess))
	return &LoginResult{Session: sess}, nil
}

// Logout clears the credential store. Logging out without a session is a no-op.
func (s *AuthService) Logout(ctx context.Context, store *CredentialStore) error {
	if store == nil {
		return nil
	}
	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.logger.InfoContext(ctx, "logout", "namespace", store.Namespace())
	return nil
}

func sessionRole(sess domainauth.Session) string {
	if sess.Identity == nil {
		return ""
	}
	return string(sess.Identity.Role)
}
