// Package projection pairs an aggregate with the persistence timestamps adapters expose.
package projection

import "time"

// Metadata captures persistence timestamps shared by projections.
type Metadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Projection represents an aggregate view plus persistence metadata.
type Projection[T any] struct {
	Entity   T
	Metadata Metadata
}

// New stamps a freshly stored entity with both timestamps set to at in UTC.
func New[T any](entity T, at time.Time) *Projection[T] {
	at = at.UTC()
	return &Projection[T]{Entity: entity, Metadata: Metadata{CreatedAt: at, UpdatedAt: at}}
}

// Restore rebuilds a projection from stored timestamps.
func Restore[T any](entity T, createdAt, updatedAt time.Time) *Projection[T] {
	return &Projection[T]{Entity: entity, Metadata: Metadata{CreatedAt: createdAt.UTC(), UpdatedAt: updatedAt.UTC()}}
}

// Updated returns a projection of entity that keeps p's creation time.
func (p *Projection[T]) Updated(entity T, at time.Time) *Projection[T] {
	return Restore(entity, p.Metadata.CreatedAt, at)
}
