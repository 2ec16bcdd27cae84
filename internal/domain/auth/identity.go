package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Defaults applied to every normalized identity.
const (
	DefaultDisplayName = "Utilisateur"
	DefaultEmail       = "non-renseigne@frontsurete.local"
	DefaultAvatarURL   = "/static/images/avatar/default.png"
)

// ErrMalformedIdentity is returned when a stored payload is not a JSON object.
var ErrMalformedIdentity = errors.New("malformed identity payload")

// RawIdentity is the untrusted identity blob as written by the login flow.
// It must only be consumed through NormalizeIdentity.
type RawIdentity []byte

// rawFields lists the accepted spellings; the payload has no guaranteed shape.
type rawFields struct {
	FirstName  flexString      `json:"firstname"`
	FirstName2 flexString      `json:"firstName"`
	FirstName3 flexString      `json:"first_name"`
	LastName   flexString      `json:"lastname"`
	LastName2  flexString      `json:"lastName"`
	LastName3  flexString      `json:"last_name"`
	Name       flexString      `json:"name"`
	Username   flexString      `json:"username"`
	Email      flexString      `json:"email"`
	Avatar     flexString      `json:"avatar"`
	AvatarURL  flexString      `json:"avatarUrl"`
	Photo      flexString      `json:"photo"`
	Role       json.RawMessage `json:"role"`
}

// flexString accepts any JSON scalar and keeps only string values.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
	}
	return nil
}

// NormalizeIdentity parses raw into an Identity.
// A nil/empty payload or JSON null yields (nil, nil): there is simply no identity.
// Anything that is not a JSON object yields ErrMalformedIdentity.
func NormalizeIdentity(raw RawIdentity) (*Identity, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '{' {
		return nil, ErrMalformedIdentity
	}

	var f rawFields
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedIdentity, err)
	}

	return &Identity{
		DisplayName: displayName(f),
		Email:       firstNonEmpty(DefaultEmail, f.Email),
		AvatarURL:   firstNonEmpty(DefaultAvatarURL, f.Avatar, f.AvatarURL, f.Photo),
		Role:        NormalizeRole(rawRole(f.Role)),
	}, nil
}

func displayName(f rawFields) string {
	first := firstNonEmpty("", f.FirstName, f.FirstName2, f.FirstName3)
	last := firstNonEmpty("", f.LastName, f.LastName2, f.LastName3)
	if full := strings.TrimSpace(first + " " + last); full != "" {
		return full
	}
	return firstNonEmpty(DefaultDisplayName, f.Name, f.Username)
}

// rawRole resolves role as {"name": ...}, then a plain string, then the default.
func rawRole(msg json.RawMessage) string {
	if len(msg) == 0 {
		return string(DefaultRole)
	}
	var obj struct {
		Name flexString `json:"name"`
	}
	if err := json.Unmarshal(msg, &obj); err == nil && obj.Name != "" {
		return string(obj.Name)
	}
	var s string
	if err := json.Unmarshal(msg, &s); err == nil && s != "" {
		return s
	}
	return string(DefaultRole)
}

func firstNonEmpty(fallback string, values ...flexString) string {
	for _, v := range values {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return fallback
}
