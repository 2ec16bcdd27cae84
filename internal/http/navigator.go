package httpx

import (
	"net/http"
	"sync"

	"github.com/ousseynou98/frontsurete-sub001/internal/ports"
)

var _ ports.Navigator = (*ResponseNavigator)(nil)

// ResponseNavigator is the navigation boundary of one browser request.
// Location is the request path until Navigate is called. The first effective
// Navigate writes a redirect (303, or Hx-Redirect for htmx requests); everything the
// handler writes afterwards is discarded so the protected view never renders.
// Safe for concurrent use by goroutines spawned within the handler.
type ResponseNavigator struct {
	http.ResponseWriter
	r *http.Request

	mu          sync.Mutex
	location    string
	navigated   bool
	wroteHeader bool
}

func newResponseNavigator(w http.ResponseWriter, r *http.Request) *ResponseNavigator {
	return &ResponseNavigator{ResponseWriter: w, r: r, location: r.URL.Path}
}

// Location returns the current path.
func (n *ResponseNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

// Navigate redirects to path. Navigating to the current location is a no-op.
func (n *ResponseNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if path == n.location {
		return
	}
	n.location = path
	if n.navigated {
		return
	}
	n.navigated = true
	if n.wroteHeader {
		// Too late to redirect this response; the rest of it is dropped.
		return
	}
	n.wroteHeader = true
	if IsHTMX(n.r) {
		SetHXRedirect(n.ResponseWriter, path)
		n.ResponseWriter.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(n.ResponseWriter, n.r, path, http.StatusSeeOther)
}

// Navigated reports whether a redirect has been issued.
func (n *ResponseNavigator) Navigated() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.navigated
}

// WriteHeader implements http.ResponseWriter.
func (n *ResponseNavigator) WriteHeader(status int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.navigated || n.wroteHeader {
		return
	}
	n.wroteHeader = true
	n.ResponseWriter.WriteHeader(status)
}

// Write implements http.ResponseWriter.
func (n *ResponseNavigator) Write(b []byte) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.navigated {
		return len(b), nil
	}
	n.wroteHeader = true
	return n.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (n *ResponseNavigator) Unwrap() http.ResponseWriter { return n.ResponseWriter }

// Navigation wraps every response in a ResponseNavigator available via NavigatorFromContext.
func Navigation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nav := newResponseNavigator(w, r)
			next.ServeHTTP(nav, r.WithContext(withNavigator(r.Context(), nav)))
		})
	}
}
