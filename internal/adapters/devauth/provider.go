package devauth

// Package devauth provides a simple, config-driven LoginProvider for local development.
// It accepts any password for the configured email and mints a short-lived HS256 token.

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/ousseynou98/frontsurete-sub001/internal/errors"
	"github.com/ousseynou98/frontsurete-sub001/internal/ports"
)

// Config controls the dev auth provider behavior.
// Email is required; everything else has a default.
type Config struct {
	Email           string
	FirstName       string
	LastName        string
	Role            string
	SessionDuration time.Duration // default 8h when zero
	// SigningKey signs issued tokens; a random key is generated when empty.
	SigningKey []byte
}

// Provider implements ports.LoginProvider for local development.
type Provider struct {
	email    string
	identity []byte
	duration time.Duration
	key      []byte
	now      func() time.Time
}

var _ ports.LoginProvider = (*Provider)(nil)

type devUser struct {
	FirstName string `json:"firstname,omitempty"`
	LastName  string `json:"lastname,omitempty"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	email := strings.TrimSpace(cfg.Email)
	if email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = 8 * time.Hour
	}
	key := cfg.SigningKey
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("dev auth: generate signing key: %w", err)
		}
	}
	identity, err := json.Marshal(devUser{
		FirstName: cfg.FirstName,
		LastName:  cfg.LastName,
		Email:     email,
		Role:      cfg.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("dev auth: encode identity: %w", err)
	}
	return &Provider{email: email, identity: identity, duration: dur, key: key, now: time.Now}, nil
}

// Authenticate accepts the configured email with any non-empty password.
func (p *Provider) Authenticate(_ context.Context, in ports.LoginInput) (ports.LoginResult, error) {
	if !strings.EqualFold(strings.TrimSpace(in.Email), p.email) || in.Password == "" {
		return ports.LoginResult{}, apperrors.Unauthorized("Identifiants invalides")
	}

	now := p.now()
	claims := jwt.RegisteredClaims{
		Subject:   p.email,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.duration)),
		Issuer:    "frontsurete-dev",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.key)
	if err != nil {
		return ports.LoginResult{}, fmt.Errorf("dev auth: sign token: %w", err)
	}
	return ports.LoginResult{Token: token, RawIdentity: append([]byte(nil), p.identity...)}, nil
}
