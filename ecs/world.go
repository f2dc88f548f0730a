package ecs

import (
	"math/rand"

	"skirmish/ecs/component"
)

// System updates a world once per simulation tick.
type System interface {
	Update(w *World)
}

// World owns entities, component tables, system order, the event queue, and
// the simulation clock. Everything is single-threaded: systems run in
// registration order inside Step and never suspend mid-tick.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]store
	systems  []System
	events   EventQueue

	spatial *SpatialWorld
	rng     *rand.Rand

	clock float64
	dt    float64
}

// NewWorld creates an empty world with a seeded rng so runs are repeatable.
func NewWorld(seed int64) *World {
	return &World{
		stores: make(map[component.ComponentID]store),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	if s == nil {
		return
	}
	w.systems = append(w.systems, s)
}

// Step advances the clock by dt seconds and runs all systems once.
func (w *World) Step(dt float64) {
	if w == nil || dt <= 0 {
		return
	}
	w.dt = dt
	w.clock += dt
	for _, s := range w.systems {
		if s != nil {
			s.Update(w)
		}
	}
}

// Clock returns the monotonic simulation time in seconds.
func (w *World) Clock() float64 {
	if w == nil {
		return 0
	}
	return w.clock
}

// DT returns the duration of the tick currently being stepped.
func (w *World) DT() float64 {
	if w == nil {
		return 0
	}
	return w.dt
}

// Rand returns the world rng.
func (w *World) Rand() *rand.Rand {
	if w == nil {
		return nil
	}
	return w.rng
}

// Events returns the world event queue. Consumers drain it once per tick.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// SetSpatialWorld attaches a spatial index to this world.
func (w *World) SetSpatialWorld(sw *SpatialWorld) {
	if w == nil {
		return
	}
	w.spatial = sw
}

// SpatialWorld returns the attached spatial index, if any.
func (w *World) SpatialWorld() *SpatialWorld {
	if w == nil {
		return nil
	}
	return w.spatial
}
