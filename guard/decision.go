package guard

import (
	"time"

	"github.com/Ryavnn/Employee-Management-system/credentials"
	"github.com/Ryavnn/Employee-Management-system/roles"
)

// Outcome is the observable state of an activation
type Outcome int

const (
	Pending         Outcome = iota // validation outstanding
	Authorized                     // render the protected view
	Unauthenticated                // redirect to login
	Forbidden                      // redirect to the unauthorized page
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Authorized:
		return "authorized"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Terminal reports whether the outcome ends an activation
func (o Outcome) Terminal() bool {
	return o != Pending
}

// Reason explains a non-authorized outcome
type Reason int

const (
	ReasonNone Reason = iota
	NoCredential
	CredentialInvalid
	ServiceUnreachable
	RoleMismatch
	Misconfigured // required role outside the closed set
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case NoCredential:
		return "no_credential"
	case CredentialInvalid:
		return "credential_invalid"
	case ServiceUnreachable:
		return "service_unreachable"
	case RoleMismatch:
		return "role_mismatch"
	case Misconfigured:
		return "misconfigured"
	default:
		return "unknown"
	}
}

// Decision is the result of one activation. It is derived per activation
// and never cached.
type Decision struct {
	Outcome  Outcome
	Reason   Reason
	Required roles.Role

	// Role is the role confirmed by the identity service. Empty unless the
	// outcome is Authorized or Forbidden.
	Role     roles.Role
	Identity *credentials.Identity

	Err       error // underlying cause, for logging only
	DecidedAt time.Time
}

// Authorized reports whether the wrapped view may be rendered
func (d Decision) Authorized() bool {
	return d.Outcome == Authorized
}
