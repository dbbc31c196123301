// Package policy decides who may create, read and mutate reservations.
//
// An actor relates to a reservation in exactly one of three ways: it owns it,
// it is an admin who does not own it, or it is some other user. Owners and
// admins may mutate; visibility on reads is narrowed by a Scope and never
// reported as an error.
package policy

import (
	"strings"

	"github.com/you/meeting-room-booking/services/reservation-service/internal/domain"
)

// Actor is the authenticated identity behind a request.
type Actor struct {
	ID      uint
	IsAdmin bool
}

type Relation int

const (
	RelationOther Relation = iota
	RelationOwner
	RelationAdmin
)

func (r Relation) String() string {
	switch r {
	case RelationOwner:
		return "owner"
	case RelationAdmin:
		return "admin"
	default:
		return "other"
	}
}

type Scope string

const (
	ScopeMine Scope = "mine"
	ScopeAll  Scope = "all"
)

// ParseScope maps a query value to a Scope; anything unrecognized is ScopeMine.
func ParseScope(s string) Scope {
	if strings.EqualFold(strings.TrimSpace(s), string(ScopeAll)) {
		return ScopeAll
	}
	return ScopeMine
}

// RelationTo classifies the actor against r. Ownership takes precedence over
// the admin flag.
func RelationTo(a Actor, r *domain.Reservation) Relation {
	switch {
	case r.OwnerID == a.ID:
		return RelationOwner
	case a.IsAdmin:
		return RelationAdmin
	default:
		return RelationOther
	}
}

// OwnerFor resolves the owner of a reservation the actor is creating. Only an
// admin may name another owner; a non-admin's request is silently replaced
// with their own id.
func OwnerFor(a Actor, requested *uint) uint {
	if a.IsAdmin && requested != nil {
		return *requested
	}
	return a.ID
}

// Visibility returns the store filter for a listing: either every reservation
// (all=true) or only those owned by ownerID.
func Visibility(a Actor, scope Scope) (ownerID uint, all bool) {
	if scope == ScopeAll && a.IsAdmin {
		return 0, true
	}
	return a.ID, false
}

func CanRead(a Actor, r *domain.Reservation, scope Scope) bool {
	ownerID, all := Visibility(a, scope)
	return all || r.OwnerID == ownerID
}

func CanMutate(a Actor, r *domain.Reservation) bool {
	return RelationTo(a, r) != RelationOther
}
