package bootstrap

import (
	"io"
	"log/slog"
	"testing"

	"github.com/ousseynou98/frontsurete-sub001/config"
	"github.com/ousseynou98/frontsurete-sub001/internal/adapters/apilogin"
	"github.com/ousseynou98/frontsurete-sub001/internal/adapters/devauth"
	"github.com/ousseynou98/frontsurete-sub001/internal/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLoginProvider(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api, err := apiclient.New(apiclient.Options{BaseURL: "http://api.test/"})
	require.NoError(t, err)

	t.Run("mock mode uses dev auth", func(t *testing.T) {
		prov, err := BuildLoginProvider(AuthConfig{
			Auth: config.AuthConfig{
				Mode:    config.AuthModeMock,
				DevAuth: config.DevAuthConfig{Email: "dev@example.com", Role: "admin"},
			},
			Logger: logger,
		})
		require.NoError(t, err)
		assert.IsType(t, &devauth.Provider{}, prov)
	})

	t.Run("mock mode without email fails", func(t *testing.T) {
		_, err := BuildLoginProvider(AuthConfig{Auth: config.AuthConfig{Mode: config.AuthModeMock}})
		require.Error(t, err)
	})

	t.Run("api mode posts to the backend", func(t *testing.T) {
		prov, err := BuildLoginProvider(AuthConfig{
			Auth:         config.AuthConfig{Mode: config.AuthModeAPI},
			API:          api,
			APILoginPath: "auth/login",
		})
		require.NoError(t, err)
		assert.IsType(t, &apilogin.Provider{}, prov)
	})

	t.Run("api mode requires a client", func(t *testing.T) {
		_, err := BuildLoginProvider(AuthConfig{Auth: config.AuthConfig{Mode: config.AuthModeAPI}})
		require.Error(t, err)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := BuildLoginProvider(AuthConfig{Auth: config.AuthConfig{Mode: config.AuthMode("ldap")}, API: api})
		require.ErrorContains(t, err, "unsupported auth mode")
	})
}

func TestBuildAuthService(t *testing.T) {
	svc, err := BuildAuthService(AuthConfig{
		Auth: config.AuthConfig{
			Mode:    config.AuthModeMock,
			DevAuth: config.DevAuthConfig{Email: "dev@example.com"},
		},
	})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}
