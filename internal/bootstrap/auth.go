package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ousseynou98/frontsurete-sub001/config"
	"github.com/ousseynou98/frontsurete-sub001/internal/adapters/apilogin"
	"github.com/ousseynou98/frontsurete-sub001/internal/adapters/devauth"
	"github.com/ousseynou98/frontsurete-sub001/internal/apiclient"
	"github.com/ousseynou98/frontsurete-sub001/internal/ports"
	"github.com/ousseynou98/frontsurete-sub001/internal/service"
)

// AuthConfig contains configuration for the auth service.
type AuthConfig struct {
	Auth config.AuthConfig
	// API is the unbound client used for login calls.
	API *apiclient.Client
	// APILoginPath is the backend login endpoint, relative to the API base URL.
	APILoginPath string
	Logger       *slog.Logger
}

// BuildAuthService creates an auth service backed by the configured login provider.
func BuildAuthService(cfg AuthConfig) (*service.AuthService, error) {
	prov, err := BuildLoginProvider(cfg)
	if err != nil {
		return nil, err
	}
	return service.NewAuthService(service.AuthServiceOptions{
		Provider: prov,
		Logger:   cfg.Logger,
	})
}

// BuildLoginProvider picks the login provider for the configured auth mode.
//
//nolint:ireturn // callers only need the port.
func BuildLoginProvider(cfg AuthConfig) (ports.LoginProvider, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		return buildDevAuthProvider(cfg)
	case config.AuthModeAPI, "":
		if cfg.API == nil {
			return nil, errors.New("api auth mode requires an api client")
		}
		prov, err := apilogin.New(cfg.API, cfg.APILoginPath)
		if err != nil {
			return nil, fmt.Errorf("create api login provider: %w", err)
		}
		return prov, nil
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
}

func buildDevAuthProvider(cfg AuthConfig) (*devauth.Provider, error) {
	dev := cfg.Auth.DevAuth
	prov, err := devauth.NewProvider(devauth.Config{
		Email:           dev.Email,
		FirstName:       dev.FirstName,
		LastName:        dev.LastName,
		Role:            dev.Role,
		SessionDuration: dev.SessionDuration,
		SigningKey:      []byte(dev.SigningKey),
	})
	if err != nil {
		return nil, fmt.Errorf("create dev auth provider: %w", err)
	}
	if cfg.Logger != nil {
		cfg.Logger.Warn("dev auth enabled, do not use in production", "email", dev.Email, "role", dev.Role)
	}
	return prov, nil
}
