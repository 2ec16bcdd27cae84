package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/ousseynou98/frontsurete-sub001/internal/domain/auth"
	"github.com/ousseynou98/frontsurete-sub001/internal/service"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// browserRequestKey is an unexported context key type for browser request detection.
type browserRequestKey struct{}

// BrowserDetection returns a middleware that detects browser requests vs API requests.
func BrowserDetection() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), browserRequestKey{}, isBrowserRequest(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsBrowserRequest returns true if the current request is from a browser.
func IsBrowserRequest(r *http.Request) bool {
	if val, ok := r.Context().Value(browserRequestKey{}).(bool); ok {
		return val
	}
	return isBrowserRequest(r)
}

// isBrowserRequest treats htmx requests and anything accepting text/html (or no Accept
// header at all) as a browser.
func isBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/static/") {
		return false
	}
	if IsHTMX(r) {
		return true
	}
	accept := r.Header.Get("Accept")
	if accept == "" {
		return true
	}
	return strings.Contains(accept, "text/html")
}

// GuardConfig configures RequireGuard.
type GuardConfig struct {
	Policy           domainauth.Policy
	CheckTokenExpiry bool
	Renderer         *TemplateRenderer
	Logger           *slog.Logger
}

// RequireGuard evaluates the policy once per request against the browser's storage.
//   - Allow: the session is stored in the request context and next runs.
//   - RedirectTo: the navigator redirects; next never runs.
//   - Pending: 503 with a placeholder that retries; nothing privileged is written.
func RequireGuard(cfg GuardConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			creds, ok := CredentialsFromContext(r.Context())
			if !ok {
				WriteError(w, ErrorParams{
					Code:    http.StatusInternalServerError,
					ErrCode: "storage_unavailable",
					Err:     errors.New("client storage middleware is not installed"),
				})
				return
			}
			guard, err := service.NewGuard(service.GuardOptions{
				Policy: cfg.Policy,
				Sessions: service.NewSessionQuery(service.SessionQueryOptions{
					Credentials:      creds,
					CheckTokenExpiry: cfg.CheckTokenExpiry,
					Logger:           logger,
				}),
				Logger: logger,
			})
			if err != nil {
				WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "guard_misconfigured", Err: err})
				return
			}

			decision, sess := guard.Evaluate(r.Context())
			switch decision.Kind {
			case domainauth.DecisionAllow:
				next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), sess)))
			case domainauth.DecisionRedirect:
				redirectTo(w, r, decision.Target)
			default:
				renderPending(w, r, cfg.Renderer)
			}
		})
	}
}

// redirectTo navigates through the request's navigator when one is installed.
// A redirect onto the current path would loop, so it is answered with 403 instead.
func redirectTo(w http.ResponseWriter, r *http.Request, target string) {
	if nav, ok := NavigatorFromContext(r.Context()); ok {
		if nav.Location() == target {
			WriteError(w, ErrorParams{
				Code:    http.StatusForbidden,
				ErrCode: "insufficient_permissions",
				Err:     errors.New("insufficient permissions"),
			})
			return
		}
		nav.Navigate(target)
		return
	}
	if IsHTMX(r) {
		SetHXRedirect(w, target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func renderPending(w http.ResponseWriter, r *http.Request, renderer *TemplateRenderer) {
	w.Header().Set("Retry-After", "2")
	w.Header().Set("Cache-Control", "no-store")
	if !IsBrowserRequest(r) || renderer == nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusServiceUnavailable,
			ErrCode: "session_pending",
			Err:     errors.New("session state is not available yet"),
		})
		return
	}
	data := PageData{Title: "Chargement", RetryPath: r.URL.RequestURI()}
	if err := renderer.Render(w, r, PagePending, http.StatusServiceUnavailable, data); err != nil {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
	}
}
