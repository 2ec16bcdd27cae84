package auth

// Package auth contains domain-level types for sessions, identities and roles.
// It is pure and free of framework/adapter concerns.

import "strings"

// Role represents an application's authorization role.
// Keep string form so roles introduced server-side survive a round-trip untouched.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleChefSurete Role = "chef_surete"
	RoleRSO        Role = "rso"
	RoleDSM        Role = "dsm"
)

// DefaultRole is used when a raw identity carries no role at all.
const DefaultRole = RoleUser

// roleAliases maps lower-cased, trimmed legacy spellings to canonical roles.
var roleAliases = map[string]Role{
	"rso_formateur": RoleRSO,
	"chef surete":   RoleChefSurete,
	"chef_surete":   RoleChefSurete,
}

// NormalizeRole lower-cases and trims raw, then applies the alias table.
// Unmapped values pass through so roles added server-side keep working.
func NormalizeRole(raw string) Role {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return DefaultRole
	}
	if r, ok := roleAliases[v]; ok {
		return r
	}
	return Role(v)
}

// IsKnown reports whether r belongs to the canonical role set.
func (r Role) IsKnown() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleChefSurete, RoleRSO, RoleDSM:
		return true
	default:
		return false
	}
}

// Identity is the display-ready profile derived from a stored raw payload.
// Every field is populated; see the Default* constants.
type Identity struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatar_url"`
	Role        Role   `json:"role"`
}

// Session is the answer to "is there a usable session, and as whom?".
// Identity may be nil while Authenticated is true (token present, profile unreadable).
type Session struct {
	Authenticated bool      `json:"authenticated"`
	Identity      *Identity `json:"identity,omitempty"`
}

// HasRole reports whether the session carries one of the given roles.
func (s Session) HasRole(roles ...Role) bool {
	if !s.Authenticated || s.Identity == nil {
		return false
	}
	for _, r := range roles {
		if s.Identity.Role == r {
			return true
		}
	}
	return false
}
