package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeAPI authenticates against the backend login endpoint.
	AuthModeAPI AuthMode = "api"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "api", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: api, mock)", v)
	}
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	Email           string        `env:"EMAIL"            envDefault:"dev@example.com"`
	FirstName       string        `env:"FIRST_NAME"       envDefault:"Dev"`
	LastName        string        `env:"LAST_NAME"        envDefault:"User"`
	Role            string        `env:"ROLE"             envDefault:"admin"`
	SessionDuration time.Duration `env:"SESSION_DURATION" envDefault:"8h"`
	SigningKey      string        `env:"SIGNING_KEY"`
}

// StorageKeysConfig names the entries the session lives under in client storage.
type StorageKeysConfig struct {
	Token          string `env:"TOKEN"           envDefault:"token"`
	Identity       string `env:"IDENTITY"        envDefault:"user"`
	LegacyIdentity string `env:"LEGACY_IDENTITY" envDefault:"userInfo"`
}

// Sanitize falls back to the historical key names for blank entries.
func (k *StorageKeysConfig) Sanitize() {
	k.Token = defaultString(k.Token, "token")
	k.Identity = defaultString(k.Identity, "user")
	k.LegacyIdentity = defaultString(k.LegacyIdentity, "userInfo")
}

func defaultString(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which login provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"api"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// LoginPath is the public login page; rejected sessions land here.
	LoginPath string `env:"AUTH_LOGIN_PATH" envDefault:"/login"`

	// DashboardPath is where authenticated users are sent from public-only pages.
	DashboardPath string `env:"AUTH_DASHBOARD_PATH" envDefault:"/dashboard"`

	// AdminRoles may open the admin area. Values are normalized like identity roles.
	AdminRoles []string `env:"AUTH_ADMIN_ROLES" envDefault:"admin" envSeparator:","`

	// CheckTokenExpiry treats a JWT whose exp claim has passed as no session.
	CheckTokenExpiry bool `env:"SESSION_CHECK_TOKEN_EXPIRY" envDefault:"false"`

	StorageKeys StorageKeysConfig `envPrefix:"SESSION_KEY_"`
}

// Sanitize normalizes paths, drops empty role entries and restores blank storage keys.
func (a *AuthConfig) Sanitize() {
	a.LoginPath = normalizePath(a.LoginPath, "/login")
	a.DashboardPath = normalizePath(a.DashboardPath, "/dashboard")
	a.StorageKeys.Sanitize()

	roles := a.AdminRoles[:0]
	for _, r := range a.AdminRoles {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	if len(roles) == 0 {
		roles = append(roles, "admin")
	}
	a.AdminRoles = roles

	a.DevAuth.Email = strings.TrimSpace(a.DevAuth.Email)
	if a.DevAuth.SessionDuration <= 0 {
		a.DevAuth.SessionDuration = 8 * time.Hour
	}
}

// normalizePath trims p and guarantees a single leading slash.
func normalizePath(p, fallback string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return fallback
	}
	return "/" + strings.TrimLeft(p, "/")
}
