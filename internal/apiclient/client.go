// Package apiclient calls the backend REST API on behalf of one client session.
// Every call runs through a pipeline of named stages; see pipeline.go.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ousseynou98/frontsurete-sub001/internal/ports"
	"golang.org/x/sync/singleflight"
)

const maxBodyBytes = 4 << 20

// ErrResponseTooLarge is returned when a successful response body exceeds the read limit.
var ErrResponseTooLarge = errors.New("api response too large")

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	// LoginPath is where a rejected session is sent.
	LoginPath string
	// ErrorMessageExpr is a JMESPath expression locating the message in error bodies.
	ErrorMessageExpr string
	// Stages are appended after the built-in stages.
	Stages []Stage
	Logger *slog.Logger
}

// Client is safe for concurrent use. Use With to bind it to a client's credentials and navigator.
type Client struct {
	baseURL     *url.URL
	http        *http.Client
	loginPath   string
	messageExpr string
	extra       []Stage
	logger      *slog.Logger
	teardowns   *singleflight.Group

	creds ports.Credentials
	nav   ports.Navigator
}

// New builds an unbound Client. Calls made before With carry no credential and never tear down.
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("api base url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	expr := opts.ErrorMessageExpr
	if expr == "" {
		expr = DefaultErrorMessageExpr
	}
	if err := ValidateErrorExpr(expr); err != nil {
		return nil, fmt.Errorf("invalid error message expression: %w", err)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	loginPath := opts.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:     u,
		http:        hc,
		loginPath:   loginPath,
		messageExpr: expr,
		extra:       opts.Stages,
		logger:      logger,
		teardowns:   &singleflight.Group{},
	}, nil
}

// With returns a copy bound to a client's credentials and navigator.
// Copies share the teardown group so concurrent 401s on one namespace collapse.
func (c *Client) With(creds ports.Credentials, nav ports.Navigator) *Client {
	cp := *c
	cp.creds = creds
	cp.nav = nav
	return &cp
}

// Stages returns the pipeline in execution order.
func (c *Client) Stages() []Stage {
	stages := []Stage{
		AttachCredential(c.creds),
		RejectSession(TeardownOptions{
			Credentials: c.creds,
			Navigator:   c.nav,
			LoginPath:   c.loginPath,
			Group:       c.teardowns,
			Logger:      c.logger,
		}),
		NormalizeError(c.messageExpr),
		RecordMetrics(),
	}
	return append(stages, c.extra...)
}

// GetJSON issues GET path and decodes the response into out (which may be nil).
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// PostJSON issues POST path with in encoded as JSON and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPost, path, in, out)
}

// Delete issues DELETE path.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do runs one request through the pipeline.
// Non-2xx responses come back as *apperrors.AppError; transport failures are returned wrapped.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	req, err := c.newRequest(ctx, method, path, in)
	if err != nil {
		return err
	}
	call := &Call{Request: req}
	stages := c.Stages()

	for _, s := range stages {
		if s.OnRequest == nil {
			continue
		}
		if err := s.OnRequest(ctx, call); err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		call.Err = fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
		runHooks(ctx, call, stages, errorHook, c.logger)
		return call.Err
	}
	call.Response = resp
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if cerr := resp.Body.Close(); cerr != nil {
		c.logger.DebugContext(ctx, "close response body", "error", cerr)
	}
	if readErr == nil && len(body) > maxBodyBytes {
		body = body[:maxBodyBytes]
		readErr = fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, maxBodyBytes)
	}
	call.Body = body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		runHooks(ctx, call, stages, errorHook, c.logger)
		return call.Err
	}

	if readErr != nil {
		return fmt.Errorf("%s %s: read response body: %w", method, req.URL.Path, readErr)
	}
	runHooks(ctx, call, stages, successHook, c.logger)
	if call.Err != nil {
		return call.Err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type hook func(ctx context.Context, c *Call) error

func errorHook(s Stage) hook   { return s.OnError }
func successHook(s Stage) hook { return s.OnSuccess }

func runHooks(ctx context.Context, call *Call, stages []Stage, pick func(Stage) hook, logger *slog.Logger) {
	for _, s := range stages {
		fn := pick(s)
		if fn == nil {
			continue
		}
		if err := fn(ctx, call); err != nil {
			logger.WarnContext(ctx, "pipeline stage failed", "stage", s.Name, "error", err)
		}
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, in any) (*http.Request, error) {
	ref, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api path %q: %w", path, err)
	}
	if ref.IsAbs() || ref.Host != "" {
		return nil, fmt.Errorf("api path %q must be relative", path)
	}
	target := c.baseURL.ResolveReference(ref)

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
