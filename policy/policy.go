// Package policy is the authorization engine: a pure decision function over
// (actor, action, resource) with no storage access and no side effects. All
// rules live in Decide so they are enumerable and testable in isolation.
//
// Authorship is the sole ownership predicate for posts. There is no admin
// bypass here; if one is ever needed it belongs as an explicit capability
// check ahead of the author check, not scattered through handlers.
package policy

import "inkwell/model"

// Actor identifies who is performing an operation. The zero value is the
// anonymous actor.
type Actor struct {
	UserID string
	Role   model.Role
}

// Anonymous is the actor for unauthenticated requests.
var Anonymous = Actor{}

// Authenticated reports whether the actor carries a resolved identity.
func (a Actor) Authenticated() bool {
	return a.UserID != ""
}

// Action is the closed set of operations the engine rules on.
type Action int

const (
	ActionCreatePost Action = iota
	ActionReadPost
	ActionUpdatePost
	ActionDeletePost
	ActionCreateComment
	ActionUpdateComment
	ActionDeleteComment
	ActionReadCategory
	ActionUpdateProfile
)

// Resource carries the attributes the rules need. Only the fields relevant to
// the action are consulted.
type Resource struct {
	Post           *model.Post
	ProfileOwnerID string
}

// Decision is the outcome of an authorization check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// Decide evaluates the rule table. First match wins; anything not explicitly
// allowed is denied.
func Decide(actor Actor, action Action, res Resource) Decision {
	switch action {
	case ActionCreatePost:
		if actor.Authenticated() && actor.Role == model.RoleAuthor {
			return Allow
		}

	case ActionReadPost:
		if res.Post == nil {
			return Deny
		}
		if res.Post.Published {
			return Allow
		}
		// Draft preview for the owning author.
		if actor.Authenticated() && actor.UserID == res.Post.AuthorID {
			return Allow
		}

	case ActionUpdatePost, ActionDeletePost:
		// Ownership only; role grants no override.
		if res.Post != nil && actor.Authenticated() && actor.UserID == res.Post.AuthorID {
			return Allow
		}

	case ActionCreateComment:
		// Open to anonymous and authenticated actors alike.
		return Allow

	case ActionUpdateComment, ActionDeleteComment:
		// Comments are append-only through the API.
		return Deny

	case ActionReadCategory:
		return Allow

	case ActionUpdateProfile:
		if actor.Authenticated() && res.ProfileOwnerID != "" && res.ProfileOwnerID == actor.UserID {
			return Allow
		}
	}
	return Deny
}
