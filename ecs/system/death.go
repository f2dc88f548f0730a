package system

import (
	"github.com/jakecoffman/cp/v2"

	"skirmish/ecs"
	"skirmish/ecs/component"
)

// DefaultDeathGrace is how long a dead unit lingers before removal.
const DefaultDeathGrace = 1.0

// DeathSystem marks units whose health reaches zero as dying, strips them of
// orders, movement, and targeting, and destroys them once the grace period
// elapses. Dying units still occupy space until they are removed.
type DeathSystem struct {
	Grace float64
}

func NewDeathSystem() *DeathSystem {
	return &DeathSystem{Grace: DefaultDeathGrace}
}

func (s *DeathSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	grace := s.Grace
	if grace <= 0 {
		grace = DefaultDeathGrace
	}

	ecs.ForEach(w, component.HealthComponent, func(e ecs.Entity, h *component.Health) {
		if h.Alive() || ecs.Has(w, e, component.DyingComponent) {
			return
		}
		dying := &component.Dying{RemoveAt: w.Clock() + grace}
		if err := ecs.Add(w, e, component.DyingComponent, dying); err != nil {
			return
		}
		if q, ok := ecs.Get(w, e, component.OrderQueueComponent); ok {
			q.Clear()
		}
		if nav, ok := ecs.Get(w, e, component.NavAgentComponent); ok {
			nav.Active = false
			nav.Velocity = cp.Vector{}
		}
		if tgt, ok := ecs.Get(w, e, component.TargetingComponent); ok {
			tgt.Target = 0
		}
		w.Events().Push(ecs.Event{Type: ecs.EventUnitDied, Data: ecs.UnitDiedEvent{
			Entity: e, At: w.Clock(),
		}})
	})

	ecs.ForEach(w, component.DyingComponent, func(e ecs.Entity, d *component.Dying) {
		if w.Clock() >= d.RemoveAt {
			ecs.DestroyEntity(w, e)
		}
	})
}
