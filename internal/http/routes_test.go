package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
	domainauth "github.com/ousseynou98/frontsurete-sub001/internal/domain/auth"
	apperrors "github.com/ousseynou98/frontsurete-sub001/internal/errors"
	mockauth "github.com/ousseynou98/frontsurete-sub001/internal/mocks/auth"
	"github.com/ousseynou98/frontsurete-sub001/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dashboardBackend() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"GET /api/me": func(w http.ResponseWriter, _ *http.Request) {
			testutil.RespondJSON(w, http.StatusOK, map[string]any{"firstname": "Jane", "lastname": "Doe", "email": "jane@port.fr"})
		},
		"GET /api/dashboard/summary": func(w http.ResponseWriter, _ *http.Request) {
			testutil.RespondJSON(w, http.StatusOK, DashboardSummary{OpenIncidents: 7, Sites: 3, UpcomingCommittees: 2})
		},
	}
}

func TestRouter_LoginPageForAnonymous(t *testing.T) {
	h := newRouterHarness(t, nil, nil)

	rec := h.do(browserRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="password"`)
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestRouter_LoginPageRedirectsAuthenticated(t *testing.T) {
	h := newRouterHarness(t, nil, nil)
	h.seed(map[string]string{"token": "tok"})

	rec := h.do(browserRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	assert.NotContains(t, rec.Body.String(), `name="password"`)
}

func TestRouter_DashboardRequiresSession(t *testing.T) {
	h := newRouterHarness(t, dashboardBackend(), nil)

	rec := h.do(browserRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	req := browserRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Hx-Request", "true")
	rec = h.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Hx-Redirect"))
	assert.Empty(t, rec.Body.String())
}

func TestRouter_DashboardRendersForSession(t *testing.T) {
	h := newRouterHarness(t, dashboardBackend(), nil)
	h.seed(map[string]string{"token": "tok", "user": `{"firstname":"Jane","lastname":"Doe","role":"DSM"}`})

	rec := h.do(browserRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<dd>7</dd>")
	assert.Contains(t, body, "Jane Doe (dsm)")
	assert.Contains(t, body, "jane@port.fr")
}

func TestRouter_DashboardWithUnreadableIdentity(t *testing.T) {
	h := newRouterHarness(t, dashboardBackend(), nil)
	h.seed(map[string]string{"token": "tok", "user": "{oops"})

	rec := h.do(browserRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Déconnexion")
}

func TestRouter_RejectedCredentialTearsDown(t *testing.T) {
	backend := dashboardBackend()
	backend["GET /api/dashboard/summary"] = func(w http.ResponseWriter, _ *http.Request) {
		testutil.RespondJSON(w, http.StatusUnauthorized, map[string]any{"message": "token revoked"})
	}
	h := newRouterHarness(t, backend, nil)
	storage := h.seed(map[string]string{"token": "tok", "user": `{"name":"Jane"}`})

	rec := h.do(browserRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.NotContains(t, rec.Body.String(), "Tableau de bord")
	assert.Empty(t, storage.Keys())

	rec = h.do(browserRequest(http.MethodGet, "/auth/status", nil))
	var status domainauth.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Authenticated)
}

func TestRouter_BackendErrorIsNormalized(t *testing.T) {
	backend := dashboardBackend()
	backend["GET /api/dashboard/summary"] = func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}
	h := newRouterHarness(t, backend, nil)
	storage := h.seed(map[string]string{"token": "tok"})

	rec := h.do(browserRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(apperrors.ErrCodeRequestFailed), body["error"])
	assert.Equal(t, []string{"token"}, storage.Keys())
}

func TestRouter_PendingWhenStorageFails(t *testing.T) {
	h := newRouterHarness(t, dashboardBackend(), nil)
	storage := h.seed(map[string]string{"token": "tok", "user": `{"name":"Secret Agent"}`})
	storage.GetErr = errors.New("redis down")

	rec := h.do(browserRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `hx-trigger="load delay:2s"`)
	assert.Contains(t, body, `hx-get="/dashboard"`)
	assert.NotContains(t, body, "Secret Agent")
	assert.NotContains(t, body, "<dd>")
}

func TestRouter_AdminRequiresRole(t *testing.T) {
	backend := map[string]http.HandlerFunc{
		"GET /api/users": func(w http.ResponseWriter, _ *http.Request) {
			testutil.RespondJSON(w, http.StatusOK, []map[string]any{
				{"name": "Alice", "role": "Chef Surete"},
				{"username": "bob", "role": map[string]any{"name": "rso_formateur"}},
				{"name": 42},
			})
		},
	}

	h := newRouterHarness(t, backend, nil)
	h.seed(map[string]string{"token": "tok", "user": `{"role":"rso"}`})
	rec := h.do(browserRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	h.seed(nil)
	rec = h.do(browserRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	h.seed(map[string]string{"token": "tok", "user": `{"name":"Root","role":{"name":"ADMIN"}}`})
	rec = h.do(browserRequest(http.MethodGet, "/admin", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<td>chef_surete</td>")
	assert.Contains(t, body, "<td>bob</td>")
	assert.Contains(t, body, "<td>rso</td>")
	assert.Contains(t, body, "<td>Utilisateur</td>")
}

func TestRouter_LoginFlow(t *testing.T) {
	h := newRouterHarness(t, nil, &mockauth.StubLoginProvider{
		Token:       "fresh",
		RawIdentity: []byte(`{"firstname":"Jane","role":"admin"}`),
	})
	storage := h.seed(map[string]string{"userInfo": `{"name":"old"}`})

	form := url.Values{"email": {"jane@port.fr"}, "password": {"secret"}}
	rec := h.do(browserRequest(http.MethodPost, "/login", form))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	assert.Equal(t, []string{"token", "user"}, storage.Keys())
	tok, _, _ := storage.Get(t.Context(), "token")
	assert.Equal(t, "fresh", tok)
}

func TestRouter_LoginValidation(t *testing.T) {
	h := newRouterHarness(t, nil, nil)
	storage := h.seed(nil)

	rec := h.do(browserRequest(http.MethodPost, "/login", url.Values{"email": {"not-an-email"}}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Adresse e-mail invalide.")
	assert.Contains(t, body, "Ce champ est obligatoire.")
	assert.Contains(t, body, `value="not-an-email"`)
	assert.Empty(t, storage.Keys())
}

func TestRouter_LoginRejected(t *testing.T) {
	h := newRouterHarness(t, nil, &mockauth.StubLoginProvider{Err: apperrors.Unauthorized("bad credentials")})
	storage := h.seed(nil)

	rec := h.do(browserRequest(http.MethodPost, "/login", url.Values{"email": {"a@b.fr"}, "password": {"x"}}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Identifiants invalides.")
	assert.Empty(t, storage.Keys())
}

func TestRouter_Logout(t *testing.T) {
	h := newRouterHarness(t, nil, nil)
	storage := h.seed(map[string]string{"token": "tok", "user": "{}", "userInfo": "{}"})

	rec := h.do(browserRequest(http.MethodPost, "/logout", url.Values{}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Empty(t, storage.Keys())

	req := browserRequest(http.MethodPost, "/logout", url.Values{})
	req.Header.Set("Accept", "application/json")
	rec = h.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success","redirect_to":"/login"}`, rec.Body.String())
}

func TestRouter_Status(t *testing.T) {
	h := newRouterHarness(t, nil, nil)
	h.seed(map[string]string{"token": "tok123", "user": `{"firstname":"Jane","lastname":"Doe","role":"DSM"}`})

	rec := h.do(browserRequest(http.MethodGet, "/auth/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"authenticated": true,
		"identity": {
			"display_name": "Jane Doe",
			"email": "non-renseigne@frontsurete.local",
			"avatar_url": "/static/images/avatar/default.png",
			"role": "dsm"
		}
	}`, rec.Body.String())
}

func TestRouter_AssignsClientCookie(t *testing.T) {
	h := newRouterHarness(t, nil, nil)

	rec := h.do(browserRequest(http.MethodGet, "/auth/status", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testClientID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	req := browserRequest(http.MethodGet, "/auth/status", nil)
	req.Header.Del("Cookie")
	req.AddCookie(&http.Cookie{Name: DefaultClientCookie, Value: "forged"})
	rec = h.do(req)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.NotEqual(t, "forged", cookies[0].Value)
	_, err := uuid.Parse(cookies[0].Value)
	assert.NoError(t, err)
}

func TestRouter_RootRedirects(t *testing.T) {
	h := newRouterHarness(t, nil, nil)

	rec := h.do(browserRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	h.seed(map[string]string{"token": "tok"})
	rec = h.do(browserRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestRouter_Healthz(t *testing.T) {
	h := newRouterHarness(t, nil, nil)

	rec := h.do(browserRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, healthResponse, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
}

func TestReadyHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	readyHandler(func(context.Context) error { return errors.New("redis down") })(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	readyHandler(func(context.Context) error { return nil })(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
