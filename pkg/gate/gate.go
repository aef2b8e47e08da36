// Package gate guards entry to flows that need a signed-in user.
package gate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/assist/internal/logging"
	"github.com/aretw0/assist/pkg/domain"
	"github.com/aretw0/assist/pkg/ports"
)

// Route names used as redirect targets.
const (
	RouteHome      = "/"
	RouteRegister  = "/register"
	RouteLogin     = "/login"
	RouteHelpForm  = "/helpForm"
	RouteCreateNGO = "/create-ngo"
)

// Policy describes what a protected flow requires and where to send users who lack it.
type Policy struct {
	// AuthEntry is the redirect target when the requirement is not met.
	AuthEntry string
	// Notice is shown to the user on redirect.
	Notice string
	// Message travels with the deferred intent and is shown on the auth entry screen.
	Message string
	// Satisfied reports whether the session meets the requirement.
	Satisfied func(domain.Session) bool
}

// ApplyPolicy guards the "apply for help" action of a program card: a token is enough.
var ApplyPolicy = Policy{
	AuthEntry: RouteRegister,
	Notice:    "Please login or register to apply for help",
	Message:   "You need to register/login to apply for help",
	Satisfied: func(s domain.Session) bool { return s.Authenticated() },
}

// HelpRequestPolicy guards the help form itself, which needs the user id for the request body.
var HelpRequestPolicy = Policy{
	AuthEntry: RouteLogin,
	Notice:    "Please login to submit a help request",
	Satisfied: func(s domain.Session) bool { return s.UserID != "" },
}

// Decision is the verdict of one gate check.
type Decision struct {
	Allowed  bool
	Redirect string
	Notice   string
	Intent   domain.DeferredIntent
}

// Gate checks the session on every entry. It never caches the verdict.
type Gate struct {
	sessions ports.SessionContext
	policy   Policy
	inbox    *Inbox
	observer func(target string, d Decision)
	logger   *slog.Logger
}

// Option configures the Gate.
type Option func(*Gate)

// WithInbox parks the deferred intent of every redirect in inbox.
func WithInbox(inbox *Inbox) Option {
	return func(g *Gate) {
		g.inbox = inbox
	}
}

// WithObserver is called after every decision (metrics).
func WithObserver(fn func(target string, d Decision)) Option {
	return func(g *Gate) {
		g.observer = fn
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

// New creates a gate over the given session context.
func New(sessions ports.SessionContext, policy Policy, opts ...Option) *Gate {
	if policy.Satisfied == nil {
		policy.Satisfied = func(s domain.Session) bool { return s.Authenticated() }
	}
	if policy.AuthEntry == "" {
		policy.AuthEntry = RouteRegister
	}
	g := &Gate{
		sessions: sessions,
		policy:   policy,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Enter decides whether target may be entered now. data is the contextual payload
// (e.g. the selected program) that must survive a redirect through sign-in.
func (g *Gate) Enter(ctx context.Context, target string, data any) (Decision, error) {
	sess, err := g.sessions.GetSession(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to read session: %w", err)
	}

	var d Decision
	if g.policy.Satisfied(sess) {
		d = Decision{
			Allowed:  true,
			Redirect: target,
			Intent:   domain.DeferredIntent{Target: target, Data: data},
		}
	} else {
		d = Decision{
			Redirect: g.policy.AuthEntry,
			Notice:   g.policy.Notice,
			Intent:   domain.DeferredIntent{Target: target, Message: g.policy.Message, Data: data},
		}
		if g.inbox != nil {
			g.inbox.Put(d.Intent)
		}
	}

	g.logger.Debug("Gate decision", "target", target, "allowed", d.Allowed, "redirect", d.Redirect)
	if g.observer != nil {
		g.observer(target, d)
	}
	return d, nil
}
