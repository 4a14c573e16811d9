package ecs

import "github.com/milk9111/tokencam/ecs/component"

// Add attaches a component value to an entity. Values are stored by
// pointer so Get callers can mutate in place.
func Add[T any](w *World, e Entity, h component.Handle[T], value T) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	w.store(h.ID()).Set(e.ID, &value)
	return true
}

// Get returns the entity's component for mutation, or ok=false.
func Get[T any](w *World, e Entity, h component.Handle[T]) (*T, bool) {
	if w == nil || !w.entities.isAlive(e) {
		return nil, false
	}
	v := w.store(h.ID()).Get(e.ID)
	if v == nil {
		return nil, false
	}
	ptr, ok := v.(*T)
	return ptr, ok
}

// Has reports whether the entity carries the component.
func Has[T any](w *World, e Entity, h component.Handle[T]) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	return w.store(h.ID()).Has(e.ID)
}

// Remove detaches the component from the entity.
func Remove[T any](w *World, e Entity, h component.Handle[T]) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	set := w.store(h.ID())
	if !set.Has(e.ID) {
		return false
	}
	set.Remove(e.ID)
	return true
}

// ForEach visits every entity carrying the component. The value pointer is
// live; mutations stick.
func ForEach[T any](w *World, h component.Handle[T], fn func(Entity, *T)) {
	if w == nil || fn == nil {
		return
	}
	set := w.store(h.ID())
	ids := append([]int(nil), set.Entities()...)
	for _, id := range ids {
		e := Entity{ID: id, Gen: w.entities.gen[id-1]}
		if !w.entities.isAlive(e) {
			continue
		}
		if ptr, ok := set.Get(id).(*T); ok {
			fn(e, ptr)
		}
	}
}

// First returns an arbitrary entity carrying the component, or ok=false.
func First[T any](w *World, h component.Handle[T]) (Entity, *T, bool) {
	if w == nil {
		return Entity{}, nil, false
	}
	set := w.store(h.ID())
	for _, id := range set.Entities() {
		e := Entity{ID: id, Gen: w.entities.gen[id-1]}
		if !w.entities.isAlive(e) {
			continue
		}
		if ptr, ok := set.Get(id).(*T); ok {
			return e, ptr, true
		}
	}
	return Entity{}, nil, false
}
