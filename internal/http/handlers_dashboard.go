package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ousseynou98/frontsurete-sub001/internal/apiclient"
	domainauth "github.com/ousseynou98/frontsurete-sub001/internal/domain/auth"
	"golang.org/x/sync/errgroup"
)

// DashboardHandlers serves the authenticated pages. Every backend call goes through the
// API client bound to the browser's credentials and response navigator.
type DashboardHandlers struct {
	API           *apiclient.Client
	Renderer      *TemplateRenderer
	LoginPath     string
	DashboardPath string
	Logger        *slog.Logger
}

func (h *DashboardHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// DashboardSummary is the backend's dashboard counters.
type DashboardSummary struct {
	OpenIncidents      int `json:"open_incidents"`
	Sites              int `json:"sites"`
	UpcomingCommittees int `json:"upcoming_committees"`
}

// DashboardView is the dashboard page model.
type DashboardView struct {
	Summary DashboardSummary
	Profile *domainauth.Identity
}

// client binds the API client to the current browser. ok is false when the request did
// not pass through the storage and navigation middleware.
func (h *DashboardHandlers) client(r *http.Request) (*apiclient.Client, *ResponseNavigator, bool) {
	creds, ok := CredentialsFromContext(r.Context())
	if !ok {
		return nil, nil, false
	}
	nav, ok := NavigatorFromContext(r.Context())
	if !ok {
		return nil, nil, false
	}
	return h.API.With(creds, nav), nav, true
}

func (h *DashboardHandlers) page(r *http.Request, title string, data any) PageData {
	return PageData{
		Title:         title,
		Identity:      IdentityFromContext(r.Context()),
		LoginPath:     h.LoginPath,
		DashboardPath: h.DashboardPath,
		Data:          data,
	}
}

// Dashboard fetches the profile and summary concurrently.
// GET /dashboard.
func (h *DashboardHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	api, nav, ok := h.client(r)
	if !ok {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "storage_unavailable", Err: errors.New("client storage missing")})
		return
	}

	var (
		view DashboardView
		me   json.RawMessage
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error { return api.GetJSON(ctx, "me", &me) })
	g.Go(func() error { return api.GetJSON(ctx, "dashboard/summary", &view.Summary) })
	if err := g.Wait(); err != nil {
		h.fail(w, r, nav, err)
		return
	}

	if profile, err := domainauth.NormalizeIdentity(domainauth.RawIdentity(me)); err != nil {
		h.logger().WarnContext(r.Context(), "profile payload rejected", "error", err)
	} else {
		view.Profile = profile
	}

	if err := h.Renderer.Render(w, r, PageDashboard, http.StatusOK, h.page(r, "Tableau de bord", view)); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Admin lists users for role-gated administration.
// GET /admin.
func (h *DashboardHandlers) Admin(w http.ResponseWriter, r *http.Request) {
	api, nav, ok := h.client(r)
	if !ok {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "storage_unavailable", Err: errors.New("client storage missing")})
		return
	}

	var raw []json.RawMessage
	if err := api.GetJSON(r.Context(), "users", &raw); err != nil {
		h.fail(w, r, nav, err)
		return
	}
	users := make([]domainauth.Identity, 0, len(raw))
	for _, item := range raw {
		id, err := domainauth.NormalizeIdentity(domainauth.RawIdentity(item))
		if err != nil || id == nil {
			continue
		}
		users = append(users, *id)
	}

	if err := h.Renderer.Render(w, r, PageAdmin, http.StatusOK, h.page(r, "Administration", users)); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// fail reports a backend failure unless the pipeline already redirected the browser.
func (h *DashboardHandlers) fail(w http.ResponseWriter, r *http.Request, nav *ResponseNavigator, err error) {
	if nav.Navigated() {
		return
	}
	h.logger().WarnContext(r.Context(), "backend call failed", "path", r.URL.Path, "error", err)
	WriteAppError(w, err)
}
