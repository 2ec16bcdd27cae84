// Package apilogin authenticates users against the backend's login endpoint.
package apilogin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ousseynou98/frontsurete-sub001/internal/apiclient"
	domainauth "github.com/ousseynou98/frontsurete-sub001/internal/domain/auth"
	"github.com/ousseynou98/frontsurete-sub001/internal/ports"
)

// DefaultPath is the backend login endpoint, relative to the API base URL.
const DefaultPath = "auth/login"

var _ ports.LoginProvider = (*Provider)(nil)

// Provider posts credentials to the backend and returns the issued token and user payload.
type Provider struct {
	client *apiclient.Client
	path   string
}

// New builds a Provider. client must be unbound (see apiclient.Client.With) so that a
// rejected login never tears down an existing session.
func New(client *apiclient.Client, path string) (*Provider, error) {
	if client == nil {
		return nil, errors.New("api client is required")
	}
	if path == "" {
		path = DefaultPath
	}
	return &Provider{client: client, path: path}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

// Authenticate implements ports.LoginProvider.
func (p *Provider) Authenticate(ctx context.Context, in ports.LoginInput) (ports.LoginResult, error) {
	var resp loginResponse
	if err := p.client.PostJSON(ctx, p.path, loginRequest(in), &resp); err != nil {
		return ports.LoginResult{}, err
	}
	if resp.Token == "" {
		return ports.LoginResult{}, fmt.Errorf("login response from %s carries no token", p.path)
	}
	return ports.LoginResult{Token: resp.Token, RawIdentity: domainauth.RawIdentity(resp.User)}, nil
}
