package component

import (
	"errors"
	"sync/atomic"
)

var (
	ErrEntityNotAlive = errors.New("ecs: entity not alive")
	ErrNilComponent   = errors.New("ecs: component is nil")
)

// ComponentID distinguishes component tables inside a world.
type ComponentID uint32

// ComponentKind is a typed key for a component table. Each call to
// NewComponent mints a fresh id, so kinds declared as package variables act
// as process-wide registrations.
type ComponentKind[T any] struct {
	id ComponentID
}

func NewComponent[T any]() ComponentKind[T] {
	return ComponentKind[T]{id: ComponentID(nextComponentID.Add(1))}
}

func (k ComponentKind[T]) ID() ComponentID {
	return k.id
}

func (k ComponentKind[T]) Valid() bool {
	return k.id != 0
}

var nextComponentID atomic.Uint32
