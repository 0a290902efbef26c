package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Ryavnn/Employee-Management-system/credentials"
	"github.com/Ryavnn/Employee-Management-system/identity"
	"github.com/Ryavnn/Employee-Management-system/internal/errors"
	"github.com/Ryavnn/Employee-Management-system/roles"
)

// Guard decides, per activation of a protected view, whether to render it
// or redirect. Every activation re-validates the stored token with the
// identity service; cached role claims are never trusted on their own.
type Guard struct {
	store     credentials.Store
	ids       identity.Service
	timeout   time.Duration
	observers []func(Decision)
	now       func() time.Time
}

// Option configures a Guard
type Option func(*Guard)

// WithTimeout bounds each validation call. Expiry is treated as the service
// being unreachable, which fails closed.
func WithTimeout(d time.Duration) Option {
	return func(g *Guard) {
		g.timeout = d
	}
}

// WithObserver registers a function called with every terminal decision
func WithObserver(fn func(Decision)) Option {
	return func(g *Guard) {
		if fn != nil {
			g.observers = append(g.observers, fn)
		}
	}
}

// WithClock overrides the time source used to stamp decisions
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

// New creates a Guard over the given credential store and identity service
func New(store credentials.Store, ids identity.Service, opts ...Option) *Guard {
	g := &Guard{
		store: store,
		ids:   ids,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ValidateRequired reports a configuration error for a required role outside
// the closed role set. roles.Any is accepted.
func ValidateRequired(required roles.Role) error {
	if required == roles.Any || required.Valid() {
		return nil
	}
	return fmt.Errorf("[guard ValidateRequired] required role %q: %w", string(required), errors.ErrUnknownRole)
}

// Activate starts one validation cycle for clientID. It returns at once;
// the activation reports Pending until the identity check settles.
func (g *Guard) Activate(ctx context.Context, clientID string, required roles.Role) *Activation {
	a := newActivation(required)

	if err := ValidateRequired(required); err != nil {
		g.settle(a, Decision{Outcome: Forbidden, Reason: Misconfigured, Err: err})
		return a
	}

	if clientID == "" {
		g.settle(a, Decision{Outcome: Unauthenticated, Reason: NoCredential, Err: errors.ErrNoCredential})
		return a
	}

	cred, err := g.store.Get(ctx, clientID)
	if err != nil || cred.Token == "" {
		if err == nil {
			err = errors.ErrNoCredential
		}
		if !errors.Is(err, errors.ErrNoCredential) {
			log.Err(err).Str("client_id", clientID).Msg("Failed to read credential store")
		}
		g.settle(a, Decision{Outcome: Unauthenticated, Reason: NoCredential, Err: err})
		return a
	}

	var (
		vctx   context.Context
		cancel context.CancelFunc
	)
	if g.timeout > 0 {
		vctx, cancel = context.WithTimeout(ctx, g.timeout)
	} else {
		vctx, cancel = context.WithCancel(ctx)
	}
	a.cancel = cancel

	go g.validate(ctx, vctx, a, clientID, cred.Token)
	return a
}

// Check runs an activation to completion. If ctx ends first the activation
// is torn down and the returned decision is Pending.
func (g *Guard) Check(ctx context.Context, clientID string, required roles.Role) Decision {
	a := g.Activate(ctx, clientID, required)
	d, ok := a.Wait(ctx)
	if !ok {
		a.Teardown()
		return Decision{Outcome: Pending, Required: required}
	}
	return d
}

// validate performs the single identity call of an activation and applies
// its result unless the activation was torn down in the meantime.
func (g *Guard) validate(parent, vctx context.Context, a *Activation, clientID, token string) {
	defer a.cancel()
	defer a.finish()

	id, err := g.ids.CurrentUser(vctx, token)

	a.mu.Lock()
	defer a.mu.Unlock()

	// The caller went away: the result belongs to a context that no longer exists
	if a.tornDown || parent.Err() != nil {
		a.tornDown = true
		log.Debug().Str("client_id", clientID).Msg("Discarding identity result for torn down activation")
		return
	}

	if err == nil && (id == nil || !id.Role.Valid()) {
		err = fmt.Errorf("[guard validate] %w: unconfirmed role", errors.ErrMalformedResponse)
	}

	if err != nil {
		reason := CredentialInvalid
		if errors.Is(err, errors.ErrServiceUnreachable) || errors.Is(err, context.DeadlineExceeded) {
			reason = ServiceUnreachable
		}
		if clearErr := g.store.Clear(parent, clientID); clearErr != nil {
			log.Err(clearErr).Str("client_id", clientID).Msg("Failed to clear credential")
		}
		g.publish(a, Decision{Outcome: Unauthenticated, Reason: reason, Err: err})
		return
	}

	if !id.Role.Satisfies(a.required) {
		g.publish(a, Decision{
			Outcome:  Forbidden,
			Reason:   RoleMismatch,
			Role:     id.Role,
			Identity: id,
			Err:      errors.ErrRoleMismatch,
		})
		return
	}

	g.publish(a, Decision{Outcome: Authorized, Role: id.Role, Identity: id})
}

// settle publishes a decision reached without a validation call
func (g *Guard) settle(a *Activation, d Decision) {
	a.mu.Lock()
	g.publish(a, d)
	a.mu.Unlock()
	a.finish()
}

// publish records the terminal decision. Callers hold a.mu.
func (g *Guard) publish(a *Activation, d Decision) {
	d.Required = a.required
	d.DecidedAt = g.now()
	a.decision = d
	a.settled = true

	event := log.Debug()
	if d.Outcome != Authorized {
		event = log.Info()
	}
	event.Str("outcome", d.Outcome.String()).
		Str("reason", d.Reason.String()).
		Str("required_role", d.Required.String()).
		Str("role", string(d.Role)).
		AnErr("cause", d.Err).
		Msg("Access decision")

	for _, fn := range g.observers {
		fn(d)
	}
}
