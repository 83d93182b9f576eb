// Package actor carries the identity behind an administrative request through the context.
package actor

import (
	"context"
	"strings"
)

// SystemID identifies mutations not attributable to a person (imports, seeds, workers).
const SystemID = "system"

// Actor is the caller identity recorded on audit entries.
type Actor struct {
	ID      string
	Address string
}

type contextKey struct{}

// WithActor stores the actor on the context, defaulting a blank identity to SystemID.
func WithActor(ctx context.Context, a Actor) context.Context {
	a.ID = strings.TrimSpace(a.ID)
	if a.ID == "" {
		a.ID = SystemID
	}
	return context.WithValue(ctx, contextKey{}, a)
}

// FromContext returns the stored actor or the system actor when none was set.
func FromContext(ctx context.Context) Actor {
	if ctx != nil {
		if a, ok := ctx.Value(contextKey{}).(Actor); ok {
			return a
		}
	}
	return Actor{ID: SystemID}
}
