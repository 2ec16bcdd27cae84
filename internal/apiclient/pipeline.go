package apiclient

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	jmespath "github.com/jmespath-community/go-jmespath"
	apperrors "github.com/ousseynou98/frontsurete-sub001/internal/errors"
	obserrors "github.com/ousseynou98/frontsurete-sub001/internal/observability/errors"
	"github.com/ousseynou98/frontsurete-sub001/internal/observability/metrics"
	"github.com/ousseynou98/frontsurete-sub001/internal/ports"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// Stage names of the built-in pipeline.
const (
	StageAttachCredential = "attach-credential"
	StageRecordMetrics    = "record-metrics"
	StageRejectSession    = "reject-session"
	StageNormalizeError   = "normalize-error"
)

// Call is the state threaded through the pipeline for one request.
type Call struct {
	Request *http.Request
	// Response is nil when the request never got a response.
	Response *http.Response
	// Body holds the fully read response body.
	Body []byte
	// Err is the error returned to the caller once every stage ran.
	Err error
}

// Stage is one named step around an outbound call. Any hook may be nil.
// OnRequest runs before dispatch; OnSuccess for 2xx responses; OnError for everything else,
// including transport failures (Response == nil).
type Stage struct {
	Name      string
	OnRequest func(ctx context.Context, c *Call) error
	OnSuccess func(ctx context.Context, c *Call) error
	OnError   func(ctx context.Context, c *Call) error
}

// AttachCredential reads the token at dispatch time and sets a Bearer Authorization header.
// Without a token the request goes out unauthenticated.
func AttachCredential(creds ports.Credentials) Stage {
	return Stage{
		Name: StageAttachCredential,
		OnRequest: func(ctx context.Context, c *Call) error {
			if creds == nil {
				return nil
			}
			tok, ok, err := creds.ReadToken(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}).SetAuthHeader(c.Request)
			return nil
		},
	}
}

// RecordMetrics counts every call by method and outcome.
func RecordMetrics() Stage {
	record := func(_ context.Context, c *Call) error {
		class := "none"
		switch {
		case c.Response != nil:
			class = metrics.StatusClass(c.Response.StatusCode)
		case c.Err != nil:
			class = obserrors.Classify(c.Err)
		}
		metrics.APIRequestsTotal.WithLabelValues(c.Request.Method, class).Inc()
		return nil
	}
	return Stage{Name: StageRecordMetrics, OnSuccess: record, OnError: record}
}

// TeardownOptions configures RejectSession.
type TeardownOptions struct {
	Credentials ports.Credentials
	Navigator   ports.Navigator
	LoginPath   string
	// Group collapses concurrent teardowns of one namespace into a single clear.
	Group  *singleflight.Group
	Logger *slog.Logger
}

// RejectSession clears the credential store and navigates to the login page when the API
// answers 401 and the client is not already on the login page.
// Clearing is idempotent and navigating to the current page is a no-op, so concurrent
// rejections converge to the same end state.
func RejectSession(opts TeardownOptions) Stage {
	group := opts.Group
	if group == nil {
		group = &singleflight.Group{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return Stage{
		Name: StageRejectSession,
		OnError: func(ctx context.Context, c *Call) error {
			if c.Response == nil || c.Response.StatusCode != http.StatusUnauthorized {
				return nil
			}
			if opts.Credentials == nil {
				return nil
			}
			if opts.Navigator != nil && opts.Navigator.Location() == opts.LoginPath {
				return nil
			}

			// The clear must finish even if the caller gives up on the request.
			clearCtx := context.WithoutCancel(ctx)
			_, err, shared := group.Do(opts.Credentials.Namespace(), func() (any, error) {
				metrics.SessionTeardownsTotal.Inc()
				return nil, opts.Credentials.Clear(clearCtx)
			})
			if err != nil {
				logger.ErrorContext(ctx, "clear rejected session failed", "error", err)
			} else if !shared {
				logger.InfoContext(ctx, "session rejected by API, credentials cleared",
					"path", c.Request.URL.Path)
			}

			if opts.Navigator != nil {
				opts.Navigator.Navigate(opts.LoginPath)
			}
			return nil
		},
	}
}

// DefaultErrorMessageExpr extracts a message from common API error bodies.
const DefaultErrorMessageExpr = "message || error.message || error || detail"

// NormalizeError turns a non-2xx response into an *apperrors.AppError.
// A JSON object body is treated as structured; anything else gets the generic marker.
// Transport failures are left untouched.
func NormalizeError(messageExpr string) Stage {
	if messageExpr == "" {
		messageExpr = DefaultErrorMessageExpr
	}
	return Stage{
		Name: StageNormalizeError,
		OnError: func(_ context.Context, c *Call) error {
			if c.Response == nil {
				return nil
			}
			var details map[string]any
			if err := json.Unmarshal(c.Body, &details); err != nil || details == nil {
				c.Err = apperrors.FromResponse(c.Response.StatusCode, "", nil)
				return nil
			}
			c.Err = apperrors.FromResponse(c.Response.StatusCode, extractMessage(messageExpr, details), details)
			return nil
		},
	}
}

func extractMessage(expr string, body map[string]any) string {
	v, err := jmespath.Search(expr, body)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// ValidateErrorExpr reports whether expr is a valid JMESPath expression.
func ValidateErrorExpr(expr string) error {
	_, err := jmespath.Compile(expr)
	return err
}
