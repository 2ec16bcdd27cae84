package config

import (
	"strings"
	"time"
)

// APIConfig configures the backend REST API client.
type APIConfig struct {
	// BaseURL is the root every API path is resolved against.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:3000/api/"`

	// Timeout bounds a single API call.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`

	// LoginPath is the backend endpoint credentials are posted to (relative to BaseURL).
	LoginPath string `env:"LOGIN_PATH" envDefault:"auth/login"`

	// ErrorMessageExpr is a JMESPath expression that locates the message in error bodies.
	// Empty uses the client's built-in expression.
	ErrorMessageExpr string `env:"ERROR_MESSAGE_EXPR"`
}

// Sanitize applies guardrails to API client configuration values.
func (a *APIConfig) Sanitize() {
	a.BaseURL = strings.TrimSpace(a.BaseURL)
	if a.Timeout <= 0 {
		a.Timeout = 15 * time.Second
	}
	a.LoginPath = strings.TrimLeft(strings.TrimSpace(a.LoginPath), "/")
	if a.LoginPath == "" {
		a.LoginPath = "auth/login"
	}
	a.ErrorMessageExpr = strings.TrimSpace(a.ErrorMessageExpr)
}
