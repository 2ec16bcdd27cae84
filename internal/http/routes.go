package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ousseynou98/frontsurete-sub001/internal/apiclient"
	domainauth "github.com/ousseynou98/frontsurete-sub001/internal/domain/auth"
	"github.com/ousseynou98/frontsurete-sub001/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth     AuthServiceInterface
	API      *apiclient.Client
	Storage  StorageFactory
	Keys     service.StorageKeys
	Renderer *TemplateRenderer

	LoginPath        string
	DashboardPath    string
	AdminRoles       []domainauth.Role
	CheckTokenExpiry bool

	CookieDomain    string
	ClientCookieTTL time.Duration
	MetricsEnabled  bool
	// Ready checks the storage backend for GET /readyz (optional).
	Ready  func(ctx context.Context) error
	Logger *slog.Logger
}

func (s RouterServices) withDefaults() RouterServices {
	if s.LoginPath == "" {
		s.LoginPath = "/login"
	}
	if s.DashboardPath == "" {
		s.DashboardPath = "/dashboard"
	}
	if len(s.AdminRoles) == 0 {
		s.AdminRoles = []domainauth.Role{domainauth.RoleAdmin}
	}
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	return s
}

// NewRouter creates and configures the HTTP router.
// Session routes run behind client storage and navigation; each page then gets its guard.
func NewRouter(services RouterServices) http.Handler {
	services = services.withDefaults()
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readyHandler(services.Ready))
	if services.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	session := func(h http.Handler) http.Handler {
		h = Navigation()(h)
		return ClientStorage(ClientStorageOptions{
			Open:         services.Storage,
			Keys:         services.Keys,
			CookieDomain: services.CookieDomain,
			CookieTTL:    services.ClientCookieTTL,
			Logger:       services.Logger,
		})(h)
	}
	guard := func(p domainauth.Policy, h http.HandlerFunc) http.Handler {
		return session(RequireGuard(GuardConfig{
			Policy:           p,
			CheckTokenExpiry: services.CheckTokenExpiry,
			Renderer:         services.Renderer,
			Logger:           services.Logger,
		})(h))
	}

	private := domainauth.PrivatePolicy(services.LoginPath)
	publicOnly := domainauth.PublicOnlyPolicy(services.DashboardPath)
	admin := domainauth.RequireRolesPolicy(services.LoginPath, services.DashboardPath, services.AdminRoles...)

	authHandlers := &AuthHandlers{
		Svc:              services.Auth,
		Renderer:         services.Renderer,
		LoginPath:        services.LoginPath,
		DashboardPath:    services.DashboardPath,
		CheckTokenExpiry: services.CheckTokenExpiry,
		Logger:           services.Logger,
	}
	pages := &DashboardHandlers{
		API:           services.API,
		Renderer:      services.Renderer,
		LoginPath:     services.LoginPath,
		DashboardPath: services.DashboardPath,
		Logger:        services.Logger,
	}

	mux.Handle("GET "+services.LoginPath, guard(publicOnly, authHandlers.LoginPage))
	mux.Handle("POST "+services.LoginPath, guard(publicOnly, authHandlers.Login))
	mux.Handle("POST /logout", session(http.HandlerFunc(authHandlers.Logout)))
	mux.Handle("GET /auth/status", session(http.HandlerFunc(authHandlers.Status)))

	mux.Handle("GET "+services.DashboardPath, guard(private, pages.Dashboard))
	mux.Handle("GET /admin", guard(admin, pages.Admin))
	mux.Handle("GET /{$}", guard(private, func(w http.ResponseWriter, r *http.Request) {
		redirectTo(w, r, services.DashboardPath)
	}))

	return BrowserDetection()(mux)
}
