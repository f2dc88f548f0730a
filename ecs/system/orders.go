package system

import (
	"github.com/jakecoffman/cp/v2"

	"skirmish/ecs"
	"skirmish/ecs/component"
)

func queueFor(w *ecs.World, e ecs.Entity) *component.OrderQueue {
	q, ok := ecs.Get(w, e, component.OrderQueueComponent)
	if !ok {
		q = &component.OrderQueue{}
		if err := ecs.Add(w, e, component.OrderQueueComponent, q); err != nil {
			return nil
		}
	}
	return q
}

// EnqueueOrder appends an order to a unit's queue without clearing it.
func EnqueueOrder(w *ecs.World, e ecs.Entity, o component.Order) bool {
	q := queueFor(w, e)
	if q == nil {
		return false
	}
	return q.Push(o)
}

// CommandMove clears the queue and issues a single move order.
func CommandMove(w *ecs.World, e ecs.Entity, pos cp.Vector) {
	if q := queueFor(w, e); q != nil {
		q.Clear()
		q.Push(component.Order{Kind: component.OrderMove, Pos: pos})
	}
}

// CommandAttack clears the queue and issues a single attack order.
func CommandAttack(w *ecs.World, e, target ecs.Entity) {
	if q := queueFor(w, e); q != nil {
		q.Clear()
		q.Push(component.Order{Kind: component.OrderAttack, Target: uint64(target)})
	}
}

// CommandPatrol clears the queue and issues a single patrol-move order.
func CommandPatrol(w *ecs.World, e ecs.Entity, pos cp.Vector) {
	if q := queueFor(w, e); q != nil {
		q.Clear()
		q.Push(component.Order{Kind: component.OrderPatrol, Pos: pos})
	}
}

// CommandHold clears the queue and issues a hold order.
func CommandHold(w *ecs.World, e ecs.Entity) {
	if q := queueFor(w, e); q != nil {
		q.Clear()
		q.Push(component.Order{Kind: component.OrderHold})
	}
}

// CommandStop discards everything queued and issues a stop order, which
// cancels movement on the next execution tick.
func CommandStop(w *ecs.World, e ecs.Entity) {
	if q := queueFor(w, e); q != nil {
		q.Clear()
		q.Push(component.Order{Kind: component.OrderStop})
	}
}

// OrderSystem executes each unit's current order once per tick. Orders run
// strictly FIFO; completing an order is a one-way transition. Conditions
// like a vanished target complete the order rather than erroring, but every
// tick's outcome is reported as a status event when it changes.
type OrderSystem struct {
	nav Navigator
}

func NewOrderSystem(nav Navigator) *OrderSystem {
	return &OrderSystem{nav: nav}
}

func (s *OrderSystem) Update(w *ecs.World) {
	if w == nil || s.nav == nil {
		return
	}
	ecs.ForEach3(w, component.OrderQueueComponent, component.UnitComponent, component.TransformComponent,
		func(e ecs.Entity, q *component.OrderQueue, u *component.Unit, tr *component.Transform) {
			if ecs.Has(w, e, component.DyingComponent) {
				// dead units take no orders
				q.Clear()
				return
			}
			status, kind := s.tick(w, e, q, u, tr)
			if status != q.LastStatus {
				w.Events().Push(ecs.Event{Type: ecs.EventOrderStatus, Data: ecs.OrderStatusEvent{
					Entity: e, Kind: kind, Status: status,
				}})
			}
			q.LastStatus = status
		})
}

func (s *OrderSystem) tick(w *ecs.World, e ecs.Entity, q *component.OrderQueue, u *component.Unit, tr *component.Transform) (component.OrderStatus, component.OrderKind) {
	if q.Current == nil || q.Current.Done {
		if q.Next() == nil {
			return component.StatusIdle, 0
		}
	}
	o := q.Current

	switch o.Kind {
	case component.OrderMove, component.OrderPatrol:
		s.nav.SetDestination(w, e, o.Pos)
		if s.nav.Arrived(w, e, component.ArriveTolerance) {
			s.nav.Cancel(w, e)
			s.complete(w, e, o)
			return component.StatusCompleted, o.Kind
		}
		return component.StatusMoving, o.Kind

	case component.OrderAttack:
		target := ecs.Entity(o.Target)
		th, okHealth := ecs.Get(w, target, component.HealthComponent)
		ttr, okPos := ecs.Get(w, target, component.TransformComponent)
		if !okHealth || !okPos || !th.Alive() || ecs.Has(w, target, component.DyingComponent) {
			s.complete(w, e, o)
			return component.StatusTargetGone, o.Kind
		}
		if tr.Pos.Distance(ttr.Pos) > u.AttackRange {
			s.nav.SetDestination(w, e, ttr.Pos)
			return component.StatusMoving, o.Kind
		}
		s.nav.Cancel(w, e)
		if w.Clock() < u.NextAttackAt {
			return component.StatusWaitingCooldown, o.Kind
		}
		prev := th.Current
		th.Damage(u.AttackDamage)
		u.NextAttackAt = w.Clock() + u.AttackCooldown
		w.Events().Push(ecs.Event{Type: ecs.EventHealthChanged, Data: ecs.HealthChangedEvent{
			Entity: target, Previous: prev, Current: th.Current,
		}})
		return component.StatusStruck, o.Kind

	case component.OrderHold:
		s.nav.Cancel(w, e)
		s.complete(w, e, o)
		return component.StatusCompleted, o.Kind

	case component.OrderStop:
		s.nav.Cancel(w, e)
		o.Done = true
		q.Clear()
		w.Events().Push(ecs.Event{Type: ecs.EventOrderCompleted, Data: ecs.OrderCompletedEvent{Entity: e, Kind: o.Kind}})
		return component.StatusStopped, o.Kind
	}
	return component.StatusIdle, o.Kind
}

func (s *OrderSystem) complete(w *ecs.World, e ecs.Entity, o *component.Order) {
	o.Done = true
	w.Events().Push(ecs.Event{Type: ecs.EventOrderCompleted, Data: ecs.OrderCompletedEvent{Entity: e, Kind: o.Kind}})
}
