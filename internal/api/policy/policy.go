// Package policy decides, per resource kind and action, whether an actor may
// perform a request. Every check reads the actor's current role, so a revoked
// role takes effect on the next request.
package policy

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Kind string

const (
	KindCategory Kind = "category"
	KindGenre    Kind = "genre"
	KindTitle    Kind = "title"
	KindReview   Kind = "review"
	KindComment  Kind = "comment"
	KindUser     Kind = "user"
)

// Actor is the authenticated identity attached to a request. The zero value
// is the anonymous actor.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) Anonymous() bool {
	return a.ID == ""
}

func (a Actor) staff() bool {
	return a.Role == "moderator" || a.Role == "admin"
}

// Resource identifies the target of a request. OwnerID is empty for
// resources without an author (catalog entries) and for create actions.
type Resource struct {
	Kind    Kind
	OwnerID string
}

type Reason string

const (
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonForbidden       Reason = "forbidden"
)

// Decision is the result of a policy check. Reason is set only when Allowed
// is false.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(actor Actor) Decision {
	if actor.Anonymous() {
		return Decision{Reason: ReasonUnauthenticated}
	}
	return Decision{Reason: ReasonForbidden}
}

// Decide evaluates the access rules for one (actor, action, resource) triple.
//
//	read                      -> anyone, including anonymous
//	create review/comment     -> any authenticated actor
//	mutate review/comment     -> author, moderator or admin
//	mutate catalog entries    -> admin only
//	user administration       -> admin only; "self" is the caller's own record
func Decide(actor Actor, action Action, res Resource) Decision {
	if action == ActionRead && res.Kind != KindUser {
		return allow()
	}

	switch res.Kind {
	case KindCategory, KindGenre, KindTitle:
		if actor.Role == "admin" {
			return allow()
		}
		return deny(actor)

	case KindReview, KindComment:
		if actor.Anonymous() {
			return deny(actor)
		}
		if action == ActionCreate {
			return allow()
		}
		if actor.ID == res.OwnerID || actor.staff() {
			return allow()
		}
		return deny(actor)

	case KindUser:
		if actor.Anonymous() {
			return deny(actor)
		}
		// the caller always reads and updates their own profile
		if res.OwnerID != "" && actor.ID == res.OwnerID && action != ActionDelete {
			return allow()
		}
		if actor.Role == "admin" {
			return allow()
		}
		return deny(actor)
	}

	return deny(actor)
}
