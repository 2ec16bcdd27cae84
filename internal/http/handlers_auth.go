package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/ousseynou98/frontsurete-sub001/internal/errors"
	"github.com/ousseynou98/frontsurete-sub001/internal/http/validation"
	"github.com/ousseynou98/frontsurete-sub001/internal/ports"
	"github.com/ousseynou98/frontsurete-sub001/internal/service"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	Login(ctx context.Context, store *service.CredentialStore, in ports.LoginInput) (*service.LoginResult, error)
	Logout(ctx context.Context, store *service.CredentialStore) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc              AuthServiceInterface
	Renderer         *TemplateRenderer
	LoginPath        string
	DashboardPath    string
	CheckTokenExpiry bool
	Logger           *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// loginForm is the submitted login form.
type loginForm struct {
	Email    string `form:"email" validate:"required,email,max=254"`
	Password string `form:"password" validate:"required,max=512"`
}

func (h *AuthHandlers) page(data PageData) PageData {
	data.Title = "Connexion"
	data.LoginPath = h.LoginPath
	data.DashboardPath = h.DashboardPath
	return data
}

// LoginPage renders the login form.
// GET /login.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if err := h.Renderer.Render(w, r, PageLogin, http.StatusOK, h.page(PageData{})); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Login validates the form, authenticates against the backend and stores the credential.
// POST /login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	store, ok := CredentialsFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "storage_unavailable", Err: errors.New("client storage missing")})
		return
	}
	if err := r.ParseForm(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_form", Err: err})
		return
	}
	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	fv := validation.New()
	if err := fv.Struct(form); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "validation_failed", Err: err})
		return
	}
	if !fv.Valid() {
		h.renderLogin(w, r, http.StatusUnprocessableEntity, PageData{FieldErrors: fv.Errors(), Form: loginForm{Email: form.Email}})
		return
	}

	_, err := h.Svc.Login(r.Context(), store, ports.LoginInput{Email: form.Email, Password: form.Password})
	if err != nil {
		status, msg := loginFailure(err)
		h.logger().InfoContext(r.Context(), "login rejected", "code", apperrors.GetCode(err), "error", err)
		h.renderLogin(w, r, status, PageData{Error: msg, Form: loginForm{Email: form.Email}})
		return
	}
	redirectTo(w, r, h.DashboardPath)
}

func (h *AuthHandlers) renderLogin(w http.ResponseWriter, r *http.Request, status int, data PageData) {
	if err := h.Renderer.Render(w, r, PageLogin, status, h.page(data)); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// loginFailure maps a login error to the status and message shown on the form.
func loginFailure(err error) (int, string) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return http.StatusBadGateway, "Le service d'authentification est indisponible."
	}
	switch appErr.Code {
	case apperrors.ErrCodeUnauthorized, apperrors.ErrCodeForbidden:
		return http.StatusUnauthorized, "Identifiants invalides."
	case apperrors.ErrCodeValidation:
		return http.StatusUnprocessableEntity, appErr.Message
	default:
		return http.StatusBadGateway, "Le service d'authentification est indisponible."
	}
}

// Logout clears the browser's credential store and sends it to the login page.
// POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if store, ok := CredentialsFromContext(r.Context()); ok {
		if err := h.Svc.Logout(r.Context(), store); err != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", err)
		}
	}

	// AJAX requests get a JSON payload; regular and htmx requests are redirected
	if strings.Contains(r.Header.Get("Accept"), "application/json") && !IsHTMX(r) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": h.LoginPath,
		})
		return
	}
	redirectTo(w, r, h.LoginPath)
}

// Status returns the current authentication status.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	store, ok := CredentialsFromContext(r.Context())
	if !ok {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	sess, err := service.NewSessionQuery(service.SessionQueryOptions{
		Credentials:      store,
		CheckTokenExpiry: h.CheckTokenExpiry,
		Logger:           h.logger(),
	}).CurrentSession(r.Context())
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusServiceUnavailable, ErrCode: "session_pending", Err: errors.New("session state is not available yet")})
		return
	}
	WriteJSON(w, http.StatusOK, sess)
}
