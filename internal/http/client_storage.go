package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ousseynou98/frontsurete-sub001/internal/ports"
	"github.com/ousseynou98/frontsurete-sub001/internal/service"
)

// DefaultClientCookie names the cookie carrying the browser's storage namespace.
const DefaultClientCookie = "fs_client"

// StorageFactory opens the durable storage of one browser.
type StorageFactory func(clientID string) (ports.Storage, error)

// ClientStorageOptions configures ClientStorage.
type ClientStorageOptions struct {
	Open         StorageFactory
	Keys         service.StorageKeys
	CookieName   string
	CookieDomain string
	// CookieTTL should match the storage TTL so the cookie never outlives its namespace.
	CookieTTL time.Duration
	Logger    *slog.Logger
}

// ClientStorage assigns every browser a client id cookie and exposes that browser's
// credential store through CredentialsFromContext.
func ClientStorage(opts ClientStorageOptions) func(http.Handler) http.Handler {
	name := opts.CookieName
	if name == "" {
		name = DefaultClientCookie
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.Open == nil {
				WriteError(w, ErrorParams{
					Code:    http.StatusInternalServerError,
					ErrCode: "storage_unavailable",
					Err:     errors.New("client storage is not configured"),
				})
				return
			}

			clientID, fresh := clientIDFromRequest(r, name)
			// Refresh on every request so the cookie slides along with the storage TTL.
			setClientCookie(w, r, clientCookieParams{Name: name, Value: clientID, Domain: opts.CookieDomain, TTL: opts.CookieTTL})
			if fresh {
				logger.DebugContext(r.Context(), "assigned client id", "client_id", clientID)
			}

			storage, err := opts.Open(clientID)
			if err != nil {
				logger.ErrorContext(r.Context(), "open client storage failed", "error", err)
				WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "storage_unavailable", Err: err})
				return
			}
			store, err := service.NewCredentialStore(service.CredentialStoreOptions{Storage: storage, Keys: opts.Keys})
			if err != nil {
				WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "storage_unavailable", Err: err})
				return
			}

			next.ServeHTTP(w, r.WithContext(withCredentials(r.Context(), store, clientID)))
		})
	}
}

// clientIDFromRequest returns the cookie's id, or a new one when missing or not a UUID.
func clientIDFromRequest(r *http.Request, name string) (string, bool) {
	if c, err := r.Cookie(name); err == nil {
		if id, perr := uuid.Parse(c.Value); perr == nil {
			return id.String(), false
		}
	}
	return uuid.NewString(), true
}

// clientCookieParams groups values needed to set the client cookie (≤3 params rule).
type clientCookieParams struct {
	Name   string
	Value  string
	Domain string
	TTL    time.Duration
}

func setClientCookie(w http.ResponseWriter, r *http.Request, p clientCookieParams) {
	c := &http.Cookie{
		Name:     p.Name,
		Value:    p.Value,
		Path:     "/",
		Domain:   p.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
	if p.TTL > 0 {
		c.MaxAge = int(p.TTL.Seconds())
	}
	http.SetCookie(w, c)
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
