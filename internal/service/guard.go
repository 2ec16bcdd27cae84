package service

import (
	"context"
	"errors"
	"log/slog"

	domainauth "github.com/ousseynou98/frontsurete-sub001/internal/domain/auth"
	"github.com/ousseynou98/frontsurete-sub001/internal/observability/metrics"
	"github.com/ousseynou98/frontsurete-sub001/internal/ports"
)

// GuardOptions groups dependencies for Guard.
type GuardOptions struct {
	Policy   domainauth.Policy
	Sessions ports.SessionQuerier
	Logger   *slog.Logger
}

// Guard evaluates a policy against the current session. It never touches the network.
type Guard struct {
	policy   domainauth.Policy
	sessions ports.SessionQuerier
	logger   *slog.Logger
}

// NewGuard constructs a Guard.
func NewGuard(opts GuardOptions) (*Guard, error) {
	if opts.Sessions == nil {
		return nil, errors.New("session querier is required")
	}
	if opts.Policy.Allow == nil {
		return nil, errors.New("guard policy needs an Allow predicate")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{policy: opts.Policy, sessions: opts.Sessions, logger: logger}, nil
}

// Policy returns the guard's policy.
func (g *Guard) Policy() domainauth.Policy { return g.policy }

// Evaluate re-reads the session and returns the decision together with the session it was based on.
// When the session cannot be read the decision stays Pending.
func (g *Guard) Evaluate(ctx context.Context) (domainauth.Decision, domainauth.Session) {
	decision, sess := g.evaluate(ctx)
	metrics.GuardDecisionsTotal.WithLabelValues(g.policy.Name, decision.Kind.String()).Inc()
	return decision, sess
}

func (g *Guard) evaluate(ctx context.Context) (domainauth.Decision, domainauth.Session) {
	if err := ctx.Err(); err != nil {
		return domainauth.Pending(), domainauth.Session{}
	}
	sess, err := g.sessions.CurrentSession(ctx)
	if err != nil {
		g.logger.WarnContext(ctx, "guard could not read session", "policy", g.policy.Name, "error", err)
		return domainauth.Pending(), domainauth.Session{}
	}
	decision := g.policy.Decide(sess)
	if decision.Kind != domainauth.DecisionAllow {
		sess = domainauth.Session{}
	}
	return decision, sess
}
