package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/ousseynou98/frontsurete-sub001/internal/apiclient"
	mockauth "github.com/ousseynou98/frontsurete-sub001/internal/mocks/auth"
	"github.com/ousseynou98/frontsurete-sub001/internal/ports"
	"github.com/ousseynou98/frontsurete-sub001/internal/service"
	"github.com/ousseynou98/frontsurete-sub001/internal/testutil"
	"github.com/stretchr/testify/require"
)

const testClientID = "6f1c1c2e-1a2b-4c3d-8e9f-000000000001"

// routerHarness wires the full router against in-memory browser storage and a fake backend.
type routerHarness struct {
	t       *testing.T
	mu      sync.Mutex
	stores  map[string]*mockauth.MemoryStorage
	handler http.Handler
}

func newRouterHarness(t *testing.T, backend map[string]http.HandlerFunc, provider ports.LoginProvider) *routerHarness {
	t.Helper()
	if backend == nil {
		backend = map[string]http.HandlerFunc{}
	}
	srv := testutil.JSONServer(t, backend)
	api, err := apiclient.New(apiclient.Options{BaseURL: srv.URL + "/api"})
	require.NoError(t, err)
	if provider == nil {
		provider = &mockauth.StubLoginProvider{Token: "tok", RawIdentity: []byte(`{"name":"Jane"}`)}
	}
	authSvc, err := service.NewAuthService(service.AuthServiceOptions{Provider: provider})
	require.NoError(t, err)
	renderer, err := NewTemplateRenderer(TemplateRendererConfig{})
	require.NoError(t, err)

	h := &routerHarness{t: t, stores: map[string]*mockauth.MemoryStorage{}}
	h.handler = NewRouter(RouterServices{
		Auth:     authSvc,
		API:      api,
		Storage:  func(id string) (ports.Storage, error) { return h.storage(id), nil },
		Renderer: renderer,
	})
	return h
}

// storage returns the storage of a client id, creating it on first use.
func (h *routerHarness) storage(id string) *mockauth.MemoryStorage {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.stores[id]
	if !ok {
		s = mockauth.NewMemoryStorage(nil)
		h.stores[id] = s
	}
	return s
}

func (h *routerHarness) seed(pairs map[string]string) *mockauth.MemoryStorage {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := mockauth.NewMemoryStorage(pairs)
	h.stores[testClientID] = s
	return s
}

func (h *routerHarness) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func browserRequest(method, target string, form url.Values) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("Accept", "text/html")
	req.AddCookie(&http.Cookie{Name: DefaultClientCookie, Value: testClientID})
	return req
}
