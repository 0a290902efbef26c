package roles

import (
	"fmt"
	"strings"

	"github.com/Ryavnn/Employee-Management-system/internal/errors"
)

// Role is one of the closed set of workforce roles a user can hold
type Role string

const (
	// Any is used as a required role when any authenticated role is accepted
	Any Role = ""

	HR       Role = "hr"       // HR staff: manage employees and managers
	Manager  Role = "manager"  // Line managers: manage their team's tasks
	Employee Role = "employee" // Regular employees
)

var all = []Role{HR, Manager, Employee}

var dashboards = map[Role]string{
	HR:       "/dashboard-hr",
	Manager:  "/dashboard-manager",
	Employee: "/dashboard-employee",
}

// All returns every recognised role
func All() []Role {
	out := make([]Role, len(all))
	copy(out, all)
	return out
}

// Parse converts a raw role value into a Role. Only the exact lower case
// values are accepted; anything else is ErrUnknownRole.
func Parse(raw string) (Role, error) {
	r := Role(strings.TrimSpace(raw))
	if !r.Valid() {
		return Any, fmt.Errorf("[roles Parse] %q: %w", raw, errors.ErrUnknownRole)
	}
	return r, nil
}

// MustParse is Parse for static configuration; it panics on unknown values
func MustParse(raw string) Role {
	r, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return r
}

// Valid reports whether r is one of the recognised roles. Any is not valid.
func (r Role) Valid() bool {
	_, ok := dashboards[r]
	return ok
}

// Satisfies reports whether a confirmed role meets a required role
func (r Role) Satisfies(required Role) bool {
	if !r.Valid() {
		return false
	}
	return required == Any || required == r
}

func (r Role) String() string {
	if r == Any {
		return "any"
	}
	return string(r)
}

// Dashboard returns the landing route for the role
func Dashboard(r Role) (string, bool) {
	path, ok := dashboards[r]
	return path, ok
}
