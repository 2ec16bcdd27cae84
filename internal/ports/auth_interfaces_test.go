package ports_test

import (
	"testing"

	"github.com/ousseynou98/frontsurete-sub001/internal/adapters/filestore"
	redisadapter "github.com/ousseynou98/frontsurete-sub001/internal/adapters/redis"
	"github.com/ousseynou98/frontsurete-sub001/internal/mocks"
	mockauth "github.com/ousseynou98/frontsurete-sub001/internal/mocks/auth"
	"github.com/ousseynou98/frontsurete-sub001/internal/ports"
	"github.com/ousseynou98/frontsurete-sub001/internal/service"
)

// This test only verifies that adapters and mocks conform to the ports at compile time.
func TestImplementationsSatisfyPorts(t *testing.T) {
	t.Helper()

	var _ ports.Storage = (*mockauth.MemoryStorage)(nil)
	var _ ports.Storage = (*mocks.MockStorage)(nil)
	var _ ports.Storage = (*redisadapter.Storage)(nil)
	var _ ports.Storage = (*filestore.Storage)(nil)
	var _ ports.Navigator = (*mockauth.RecordingNavigator)(nil)
	var _ ports.Navigator = (*mocks.MockNavigator)(nil)
	var _ ports.Credentials = (*service.CredentialStore)(nil)
	var _ ports.SessionQuerier = (*service.SessionQuery)(nil)
}
