// Package component defines the data attached to tabletop entities and the
// typed handles used to access it.
package component

import "sync/atomic"

// ComponentID uniquely identifies a component type within the process.
type ComponentID uint32

var nextComponentID atomic.Uint32

// Handle is the typed key for one component type. Declare one package-level
// handle per component and share it everywhere.
type Handle[T any] struct {
	id ComponentID
}

// NewComponent allocates a handle for T.
func NewComponent[T any]() Handle[T] {
	return Handle[T]{id: ComponentID(nextComponentID.Add(1))}
}

// ID returns the handle's component id.
func (h Handle[T]) ID() ComponentID {
	return h.id
}
