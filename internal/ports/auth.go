package ports

// Package ports defines interfaces (hexagonal ports) for session-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/ousseynou98/frontsurete-sub001/internal/domain/auth"
)

// Storage is the durable client-side key/value boundary (one namespace per client).
type Storage interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Delete removes keys. Absent keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// Navigator is the navigation boundary of a single client.
type Navigator interface {
	// Location returns the path the client is currently on.
	Location() string
	// Navigate moves the client to path. Navigating to the current location is a no-op.
	Navigate(path string)
}

// Credentials is the slice of the credential store the API pipeline depends on.
type Credentials interface {
	ReadToken(ctx context.Context) (string, bool, error)
	Clear(ctx context.Context) error
	// Namespace identifies the storage scope, used to collapse concurrent teardowns.
	Namespace() string
}

// SessionQuerier answers whether a usable session exists.
type SessionQuerier interface {
	CurrentSession(ctx context.Context) (domainauth.Session, error)
}

// LoginInput carries the credentials typed on the login form.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is what a successful login hands to the credential store.
type LoginResult struct {
	Token       string
	RawIdentity domainauth.RawIdentity
}

// LoginProvider exchanges user credentials for a bearer token and identity payload.
type LoginProvider interface {
	Authenticate(ctx context.Context, in LoginInput) (LoginResult, error)
}
