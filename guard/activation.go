package guard

import (
	"context"
	"sync"

	"github.com/Ryavnn/Employee-Management-system/roles"
)

// Activation is a single guarded view activation. It issues at most one
// identity validation and settles on exactly one terminal decision, unless
// it is torn down first, in which case the late result is dropped.
type Activation struct {
	required roles.Role
	cancel   context.CancelFunc
	done     chan struct{}
	doneOnce sync.Once

	mu       sync.Mutex
	decision Decision
	settled  bool
	tornDown bool
}

func newActivation(required roles.Role) *Activation {
	return &Activation{
		required: required,
		cancel:   func() {},
		done:     make(chan struct{}),
		decision: Decision{Outcome: Pending, Required: required},
	}
}

func (a *Activation) finish() {
	a.doneOnce.Do(func() { close(a.done) })
}

// State returns Pending until the activation settles
func (a *Activation) State() Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.decision.Outcome
}

// Done is closed once the activation has settled or its result was discarded
func (a *Activation) Done() <-chan struct{} {
	return a.done
}

// Decision returns the terminal decision, if there is one
func (a *Activation) Decision() (Decision, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.settled {
		return Decision{Outcome: Pending, Required: a.required}, false
	}
	return a.decision, true
}

// Wait blocks until the activation settles or ctx ends. ok is false when no
// terminal decision was reached.
func (a *Activation) Wait(ctx context.Context) (d Decision, ok bool) {
	select {
	case <-a.done:
		return a.Decision()
	case <-ctx.Done():
		return a.Decision()
	}
}

// Teardown abandons the activation. An identity result arriving afterwards
// is discarded without touching the credential store. Teardown after the
// activation settled has no effect.
func (a *Activation) Teardown() {
	a.mu.Lock()
	if !a.settled {
		a.tornDown = true
	}
	cancel := a.cancel
	a.mu.Unlock()
	cancel()
}

// TornDown reports whether the activation was abandoned before settling
func (a *Activation) TornDown() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tornDown
}
