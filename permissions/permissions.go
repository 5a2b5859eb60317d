package permissions

import (
	"errors"

	"github.com/google/uuid"

	"github.com/that-that/waldo/models"
)

// ErrUnauthorized is returned whenever an actor fails a requirement. It is
// deliberately uniform so callers cannot distinguish "no such resource" from
// "not yours".
var ErrUnauthorized = errors.New("unauthorized")

// Actor is the authenticated principal a requirement is evaluated against.
type Actor struct {
	ID          uuid.UUID
	Role        models.Role
	Blacklisted bool
}

// Requirement is a closed set of authorization checks. Every mutating or
// ownership-scoped operation in the service goes through Evaluate with one
// of these; nothing bypasses it.
type Requirement interface {
	isRequirement()
}

// IsOwner allows the resource owner. Moderators and administrators pass
// regardless of ownership.
type IsOwner struct {
	OwnerID uuid.UUID
}

// RoleAtLeast allows actors whose role ranks at or above Min.
type RoleAtLeast struct {
	Min models.Role
}

func (IsOwner) isRequirement()     {}
func (RoleAtLeast) isRequirement() {}

// Evaluate checks actor against req. It has no side effects and is
// deterministic: the same inputs always produce the same outcome.
// A blacklisted actor is denied unconditionally.
func Evaluate(actor Actor, req Requirement) error {
	if actor.Blacklisted {
		return ErrUnauthorized
	}
	switch r := req.(type) {
	case IsOwner:
		if actor.ID == r.OwnerID || actor.Role.AtLeast(models.RoleModerator) {
			return nil
		}
	case RoleAtLeast:
		if actor.Role.AtLeast(r.Min) {
			return nil
		}
	}
	return ErrUnauthorized
}
