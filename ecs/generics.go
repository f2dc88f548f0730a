package ecs

import "skirmish/ecs/component"

// CreateEntity allocates a new entity handle.
func CreateEntity(w *World) Entity {
	return w.entities.create()
}

// DestroyEntity kills an entity, evicting its components and spatial shape.
// Returns false if the handle was already dead.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.destroy(e) {
		return false
	}
	for _, s := range w.stores {
		s.removeID(int(e.id()))
	}
	if w.spatial != nil {
		w.spatial.Remove(e)
	}
	return true
}

// IsAlive reports whether an entity handle is valid.
func IsAlive(w *World, e Entity) bool {
	return w != nil && w.entities.isAlive(e)
}

// Entities returns all live entity handles.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	out := make([]Entity, 0, len(w.entities.gens))
	for i := range w.entities.gens {
		if h, ok := w.entities.handleFor(i + 1); ok {
			out = append(out, h)
		}
	}
	return out
}

func tableFor[T any](w *World, kind component.ComponentKind[T], create bool) *table[T] {
	if w == nil || !kind.Valid() {
		return nil
	}
	s, ok := w.stores[kind.ID()]
	if !ok {
		if !create {
			return nil
		}
		t := &table[T]{}
		w.stores[kind.ID()] = t
		return t
	}
	t, _ := s.(*table[T])
	return t
}

// Add attaches a component to a live entity.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], v *T) error {
	if v == nil {
		return component.ErrNilComponent
	}
	if !IsAlive(w, e) {
		return component.ErrEntityNotAlive
	}
	tableFor(w, kind, true).set(int(e.id()), v)
	return nil
}

// Get returns the component attached to a live entity, or (nil, false).
func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	if !IsAlive(w, e) {
		return nil, false
	}
	t := tableFor(w, kind, false)
	if t == nil {
		return nil, false
	}
	return t.get(int(e.id()))
}

// Has reports whether a live entity carries the component.
func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	_, ok := Get(w, e, kind)
	return ok
}

// Remove detaches a component from an entity.
func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	if !IsAlive(w, e) {
		return false
	}
	t := tableFor(w, kind, false)
	if t == nil {
		return false
	}
	return t.removeID(int(e.id()))
}

// First returns any one live entity carrying the component.
func First[T any](w *World, kind component.ComponentKind[T]) (Entity, bool) {
	t := tableFor(w, kind, false)
	if t == nil {
		return 0, false
	}
	for i := 0; i < t.size(); i++ {
		if h, ok := w.entities.handleFor(t.idAt(i)); ok {
			return h, true
		}
	}
	return 0, false
}

// ForEach visits every live entity carrying the component. The id list is
// snapshotted so callbacks may add or destroy entities mid-iteration.
func ForEach[T any](w *World, kind component.ComponentKind[T], f func(e Entity, v *T)) {
	t := tableFor(w, kind, false)
	if t == nil || f == nil {
		return
	}
	ids := make([]int, t.size())
	copy(ids, t.denseIDs)
	for _, id := range ids {
		h, ok := w.entities.handleFor(id)
		if !ok {
			continue
		}
		if v, ok := t.get(id); ok {
			f(h, v)
		}
	}
}

// ForEach2 visits live entities carrying both components.
func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], f func(e Entity, a *A, b *B)) {
	tb := tableFor(w, kb, false)
	if tb == nil {
		return
	}
	ForEach(w, ka, func(e Entity, a *A) {
		if b, ok := tb.get(int(e.id())); ok {
			f(e, a, b)
		}
	})
}

// ForEach3 visits live entities carrying all three components.
func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], f func(e Entity, a *A, b *B, c *C)) {
	tb := tableFor(w, kb, false)
	tc := tableFor(w, kc, false)
	if tb == nil || tc == nil {
		return
	}
	ForEach(w, ka, func(e Entity, a *A) {
		b, okB := tb.get(int(e.id()))
		if !okB {
			return
		}
		if c, okC := tc.get(int(e.id())); okC {
			f(e, a, b, c)
		}
	})
}
