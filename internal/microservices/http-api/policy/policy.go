// Package policy holds the authorization rules for the API. Every rule is a
// pure function of the actor, the kind of operation and, for object-level
// rules, the author of the target record. A nil actor is an anonymous request.
package policy

import (
	"net/http"

	"yamdb/internal/microservices/http-api/models"
)

type Operation int

const (
	Read Operation = iota
	Write
)

// OperationFor classifies an HTTP method. Only GET, HEAD and OPTIONS are reads.
func OperationFor(method string) Operation {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return Read
	}
	return Write
}

type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) Allowed() bool {
	return d == Allow
}

// Authored is implemented by records with an owning user.
type Authored interface {
	AuthorUserID() string
}

func deny(actor *models.User) Decision {
	if actor == nil {
		return DenyUnauthenticated
	}
	return DenyForbidden
}

// AdminOrReadOnly gates catalog mutations.
func AdminOrReadOnly(actor *models.User, op Operation) Decision {
	if op == Read || actor.IsAdmin() {
		return Allow
	}
	return deny(actor)
}

// AdminOnly gates user management.
func AdminOnly(actor *models.User) Decision {
	if actor.IsAdmin() {
		return Allow
	}
	return deny(actor)
}

// AuthenticatedOrReadOnly is the coarse gate in front of review and comment writes.
func AuthenticatedOrReadOnly(actor *models.User, op Operation) Decision {
	if op == Read || actor != nil {
		return Allow
	}
	return DenyUnauthenticated
}

// OwnerOrModeratorOrAdminOrReadOnly is the object-level rule for reviews and comments.
func OwnerOrModeratorOrAdminOrReadOnly(actor *models.User, op Operation, target Authored) Decision {
	if op == Read {
		return Allow
	}
	if actor == nil {
		return DenyUnauthenticated
	}
	if target != nil && target.AuthorUserID() == actor.ID {
		return Allow
	}
	if actor.IsModerator() || actor.IsAdmin() {
		return Allow
	}
	return DenyForbidden
}
