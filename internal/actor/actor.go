// Package actor carries the resolved caller identity through request context.
// Authentication happens upstream; handlers only ever see an already-resolved
// Actor. This package has no internal dependencies so it can be imported from
// anywhere without cycles.
package actor

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAgent    Role = "agent"
	RoleHospital Role = "hospital"
	RoleAgency   Role = "agency"
)

// Actor is the capability passed into every domain operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Owns reports whether the actor is the agent that created the claim.
func (a Actor) Owns(createdBy uuid.UUID) bool {
	return a.Role == RoleAgent && a.ID == createdBy
}

type ctxKey struct{}

// WithActor returns a context with the actor embedded.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext returns the actor from context. ok is false if no actor was
// resolved for this request.
func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok
}

func validRole(r Role) bool {
	switch r {
	case RoleAgent, RoleHospital, RoleAgency:
		return true
	}
	return false
}

// Middleware resolves the actor from the X-Actor-ID and X-Actor-Role headers
// set by the upstream auth layer. Requests without a valid actor are rejected
// before reaching any handler.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get("X-Actor-ID"))
		role := Role(r.Header.Get("X-Actor-Role"))
		if err != nil || !validRole(role) {
			http.Error(w, "Missing or invalid actor identity", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), Actor{ID: id, Role: role})))
	})
}
