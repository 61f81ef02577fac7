// Package policy gates every entity operation by the authenticated caller's
// identity. It replaces per-row checks scattered across call sites with a
// single rule table evaluated before each repository operation.
package policy

import "errors"

// ErrDenied is returned for any operation not matched by a permissive rule.
// It is terminal: callers must not retry.
var ErrDenied = errors.New("permission denied")

type Entity string

const (
	EntityAccount  Entity = "account"
	EntityCourse   Entity = "course"
	EntityLesson   Entity = "lesson"
	EntityProgress Entity = "progress"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Request describes one attempted operation: who is acting, on what kind of
// record, and who owns the target row (empty for unowned entities).
type Request struct {
	Entity   Entity
	Action   Action
	CallerID string // empty when unauthenticated
	OwnerID  string
}

func (r Request) authenticated() bool { return r.CallerID != "" }
func (r Request) ownedByCaller() bool { return r.authenticated() && r.CallerID == r.OwnerID }

type (
	rule func(Request) bool

	Authorizer interface {
		// Authorize returns ErrDenied unless a permissive rule matches req.
		Authorize(req Request) error
	}

	authorizer struct {
		rules map[Entity]map[Action]rule
	}
)

var _ Authorizer = (*authorizer)(nil)

func ownerOnly(req Request) bool { return req.ownedByCaller() }
func anyAuthed(req Request) bool { return req.authenticated() }

// NewAuthorizer returns the app's rule table:
// - account: read/update only by its owner; never created or deleted here
//   (creation goes through the unauthenticated registration path).
// - course, lesson: readable by any authenticated caller; no write rule
//   exists, so all writes are denied (authoring happens out-of-band).
// - progress: read/create/update only by the owning account; no delete rule.
func NewAuthorizer() Authorizer {
	return &authorizer{
		rules: map[Entity]map[Action]rule{
			EntityAccount: {
				ActionRead:   ownerOnly,
				ActionUpdate: ownerOnly,
			},
			EntityCourse: {
				ActionRead: anyAuthed,
			},
			EntityLesson: {
				ActionRead: anyAuthed,
			},
			EntityProgress: {
				ActionRead:   ownerOnly,
				ActionCreate: ownerOnly,
				ActionUpdate: ownerOnly,
			},
		},
	}
}

func (a *authorizer) Authorize(req Request) error {
	actions, ok := a.rules[req.Entity]
	if !ok {
		return ErrDenied
	}
	allow, ok := actions[req.Action]
	if !ok || !allow(req) {
		return ErrDenied
	}
	return nil
}
