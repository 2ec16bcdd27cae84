package auth

// DecisionKind is the state of a guard evaluation.
type DecisionKind int

const (
	// DecisionPending means no decision could be made yet; nothing privileged may be shown.
	DecisionPending DecisionKind = iota
	// DecisionAllow lets the protected view render.
	DecisionAllow
	// DecisionRedirect sends the caller elsewhere.
	DecisionRedirect
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionAllow:
		return "allow"
	case DecisionRedirect:
		return "redirect"
	default:
		return "pending"
	}
}

// Decision is the transient outcome of one guard evaluation.
type Decision struct {
	Kind   DecisionKind
	Target string
}

// Pending returns the initial decision.
func Pending() Decision { return Decision{Kind: DecisionPending} }

// Allow returns an allow decision.
func Allow() Decision { return Decision{Kind: DecisionAllow} }

// RedirectTo returns a redirect decision to path.
func RedirectTo(path string) Decision { return Decision{Kind: DecisionRedirect, Target: path} }

// Policy parametrizes a guard: when Allow rejects the session, the caller is sent to RedirectTo(session).
type Policy struct {
	Name       string
	Allow      func(Session) bool
	RedirectTo func(Session) string
}

// Decide maps a session to a terminal decision.
func (p Policy) Decide(s Session) Decision {
	if p.Allow != nil && p.Allow(s) {
		return Allow()
	}
	if p.RedirectTo == nil {
		return Pending()
	}
	return RedirectTo(p.RedirectTo(s))
}

// Policy names, used as metric labels.
const (
	PolicyPrivate      = "private"
	PolicyPublicOnly   = "public_only"
	PolicyRequireRoles = "require_roles"
)

// PrivatePolicy admits authenticated sessions and sends everyone else to loginPath.
func PrivatePolicy(loginPath string) Policy {
	return Policy{
		Name:       PolicyPrivate,
		Allow:      func(s Session) bool { return s.Authenticated },
		RedirectTo: func(Session) string { return loginPath },
	}
}

// PublicOnlyPolicy admits anonymous callers and sends authenticated ones to dashboardPath.
func PublicOnlyPolicy(dashboardPath string) Policy {
	return Policy{
		Name:       PolicyPublicOnly,
		Allow:      func(s Session) bool { return !s.Authenticated },
		RedirectTo: func(Session) string { return dashboardPath },
	}
}

// RequireRolesPolicy admits sessions carrying one of roles. Anonymous callers go to
// loginPath; authenticated callers without the role go to dashboardPath.
func RequireRolesPolicy(loginPath, dashboardPath string, roles ...Role) Policy {
	allowed := append([]Role(nil), roles...)
	return Policy{
		Name:  PolicyRequireRoles,
		Allow: func(s Session) bool { return s.HasRole(allowed...) },
		RedirectTo: func(s Session) string {
			if !s.Authenticated {
				return loginPath
			}
			return dashboardPath
		},
	}
}
