package system

import (
	"math"

	"github.com/jakecoffman/cp/v2"

	"skirmish/ecs"
	"skirmish/ecs/component"
)

// Navigator abstracts the movement service consumed by order execution.
// A real pathfinder slots in behind this interface; the core only ever asks
// for a destination, a cancel, or an arrival check.
type Navigator interface {
	SetDestination(w *ecs.World, e ecs.Entity, pos cp.Vector)
	Cancel(w *ecs.World, e ecs.Entity)
	// Arrived reports whether the entity is within tolerance of the last
	// requested destination.
	Arrived(w *ecs.World, e ecs.Entity, tolerance float64) bool
	Velocity(w *ecs.World, e ecs.Entity) cp.Vector
}

// NavAgentSystem is the default navigator: a straight-line constant-speed
// mover over the Transform component. It doubles as the per-tick system
// that advances agents and mirrors their positions into the spatial index.
type NavAgentSystem struct{}

func NewNavAgentSystem() *NavAgentSystem {
	return &NavAgentSystem{}
}

func (s *NavAgentSystem) SetDestination(w *ecs.World, e ecs.Entity, pos cp.Vector) {
	nav, ok := ecs.Get(w, e, component.NavAgentComponent)
	if !ok {
		nav = &component.NavAgent{}
		if err := ecs.Add(w, e, component.NavAgentComponent, nav); err != nil {
			return
		}
	}
	nav.Destination = pos
	nav.Active = true
}

func (s *NavAgentSystem) Cancel(w *ecs.World, e ecs.Entity) {
	if nav, ok := ecs.Get(w, e, component.NavAgentComponent); ok {
		nav.Active = false
		nav.Velocity = cp.Vector{}
	}
}

func (s *NavAgentSystem) Arrived(w *ecs.World, e ecs.Entity, tolerance float64) bool {
	nav, okNav := ecs.Get(w, e, component.NavAgentComponent)
	tr, okTr := ecs.Get(w, e, component.TransformComponent)
	if !okNav || !okTr {
		return true
	}
	return tr.Pos.Distance(nav.Destination) <= tolerance
}

func (s *NavAgentSystem) Velocity(w *ecs.World, e ecs.Entity) cp.Vector {
	if nav, ok := ecs.Get(w, e, component.NavAgentComponent); ok {
		return nav.Velocity
	}
	return cp.Vector{}
}

func (s *NavAgentSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.DT()
	ecs.ForEach3(w, component.NavAgentComponent, component.TransformComponent, component.UnitComponent,
		func(e ecs.Entity, nav *component.NavAgent, tr *component.Transform, u *component.Unit) {
			if nav.Active && !ecs.Has(w, e, component.DyingComponent) {
				step := u.MoveSpeed * dt
				delta := nav.Destination.Sub(tr.Pos)
				dist := delta.Length()
				if dist <= math.Max(step, component.ArriveTolerance) {
					tr.Pos = nav.Destination
					nav.Active = false
					nav.Velocity = cp.Vector{}
				} else {
					dir := delta.Mult(1 / dist)
					tr.Pos = tr.Pos.Add(dir.Mult(step))
					nav.Velocity = dir.Mult(u.MoveSpeed)
				}
			} else {
				nav.Velocity = cp.Vector{}
			}
			if sw := w.SpatialWorld(); sw != nil {
				sw.Sync(e, tr.Pos, u.Radius)
			}
		})
}
