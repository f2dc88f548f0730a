package system

import (
	"math"

	"github.com/jakecoffman/cp/v2"

	"skirmish/ecs"
	"skirmish/ecs/component"
)

// repathDistance is how far a pursued target may drift from the issued
// destination before the chase order is reissued.
const repathDistance = 1.0

// fleeDistanceFallback is how far a fleeing unit runs when it has no
// pursuit distance configured.
const fleeDistanceFallback = 10.0

// BrainSystem runs the built-in behavior state machine. State transitions
// are re-evaluated on the think interval, except the flee check on low
// health, which fires on any tick. Whatever the state, the matching order
// is dispatched every tick so a cleared queue gets refilled promptly.
type BrainSystem struct{}

func NewBrainSystem() *BrainSystem {
	return &BrainSystem{}
}

func (s *BrainSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach3(w, component.BrainComponent, component.UnitComponent, component.TransformComponent,
		func(e ecs.Entity, b *component.Brain, u *component.Unit, tr *component.Transform) {
			if ecs.Has(w, e, component.DyingComponent) {
				return
			}

			target, targetPos, hasTarget := s.currentTarget(w, e)

			// Low health interrupts immediately, not on the think clock.
			if b.State != component.StateFlee && hasTarget && s.healthRatio(w, e) <= b.FleeThreshold {
				s.setState(w, e, b, component.StateFlee)
			} else if w.Clock() >= b.NextThinkAt {
				b.NextThinkAt = w.Clock() + b.ThinkEvery
				s.think(w, e, b, tr, hasTarget, targetPos)
			}

			s.dispatch(w, e, b, tr, target, targetPos, hasTarget)
		})
}

func (s *BrainSystem) think(w *ecs.World, e ecs.Entity, b *component.Brain, tr *component.Transform, hasTarget bool, targetPos cp.Vector) {
	switch {
	case hasTarget && s.healthRatio(w, e) <= b.FleeThreshold:
		s.setState(w, e, b, component.StateFlee)

	case b.State == component.StateFlee:
		if w.Clock()-b.StateSince >= b.FleeDuration() {
			s.setState(w, e, b, component.StateReturnToPatrol)
		}

	case hasTarget:
		d := tr.Pos.Distance(targetPos)
		switch {
		case d <= b.AggroRange:
			s.setState(w, e, b, component.StateAttack)
		case d <= b.PursuitDistance:
			s.setState(w, e, b, component.StatePursue)
		default:
			s.setState(w, e, b, component.StateReturnToPatrol)
		}

	default:
		distHome := tr.Pos.Distance(b.PatrolCenter)
		if distHome > b.ReturnRadius {
			s.setState(w, e, b, component.StateReturnToPatrol)
		} else if b.State != component.StateReturnToPatrol || distHome <= component.ArriveTolerance {
			s.setState(w, e, b, component.StatePatrol)
		}
	}
}

func (s *BrainSystem) dispatch(w *ecs.World, e ecs.Entity, b *component.Brain, tr *component.Transform, target ecs.Entity, targetPos cp.Vector, hasTarget bool) {
	q, _ := ecs.Get(w, e, component.OrderQueueComponent)

	switch b.State {
	case component.StatePatrol:
		if q == nil || q.Idle() {
			CommandPatrol(w, e, s.patrolPoint(w, b))
		}

	case component.StateAttack:
		if !hasTarget {
			return
		}
		cur := currentOrder(q)
		if cur == nil || cur.Kind != component.OrderAttack || cur.Target != uint64(target) {
			CommandAttack(w, e, target)
		}

	case component.StatePursue:
		if !hasTarget {
			return
		}
		cur := currentOrder(q)
		if cur == nil || cur.Kind != component.OrderMove || cur.Pos.Distance(targetPos) > repathDistance {
			CommandMove(w, e, targetPos)
		}

	case component.StateFlee:
		if cur := currentOrder(q); cur != nil && cur.Kind == component.OrderMove {
			return
		}
		CommandMove(w, e, s.fleePoint(b, tr, targetPos, hasTarget))

	case component.StateReturnToPatrol:
		cur := currentOrder(q)
		if cur == nil || cur.Kind != component.OrderMove || cur.Pos.Distance(b.PatrolCenter) > repathDistance {
			CommandMove(w, e, b.PatrolCenter)
		}
	}
}

func (s *BrainSystem) setState(w *ecs.World, e ecs.Entity, b *component.Brain, next component.BrainState) {
	if b.State == next {
		return
	}
	prev := b.State
	b.State = next
	b.StateSince = w.Clock()
	w.Events().Push(ecs.Event{Type: ecs.EventStateChanged, Data: ecs.StateChangedEvent{
		Entity: e, From: prev, To: next, At: w.Clock(),
	}})
}

// patrolPoint samples a point uniformly over the patrol disc.
func (s *BrainSystem) patrolPoint(w *ecs.World, b *component.Brain) cp.Vector {
	rng := w.Rand()
	angle := rng.Float64() * 2 * math.Pi
	r := math.Sqrt(rng.Float64()) * b.PatrolRadius
	return b.PatrolCenter.Add(cp.Vector{X: math.Cos(angle) * r, Y: math.Sin(angle) * r})
}

// fleePoint runs directly away from the threat, or away from the patrol
// center when no threat position is known.
func (s *BrainSystem) fleePoint(b *component.Brain, tr *component.Transform, threatPos cp.Vector, hasThreat bool) cp.Vector {
	dist := b.PursuitDistance
	if dist <= 0 {
		dist = fleeDistanceFallback
	}
	from := threatPos
	if !hasThreat {
		from = b.PatrolCenter
	}
	away := tr.Pos.Sub(from)
	if away.Length() < 1e-9 {
		away = cp.Vector{X: 1}
	}
	return tr.Pos.Add(away.Normalize().Mult(dist))
}

func (s *BrainSystem) currentTarget(w *ecs.World, e ecs.Entity) (ecs.Entity, cp.Vector, bool) {
	tgt, ok := ecs.Get(w, e, component.TargetingComponent)
	if !ok || tgt.Target == 0 {
		return 0, cp.Vector{}, false
	}
	target := ecs.Entity(tgt.Target)
	ttr, ok := ecs.Get(w, target, component.TransformComponent)
	if !ok {
		return 0, cp.Vector{}, false
	}
	return target, ttr.Pos, true
}

func (s *BrainSystem) healthRatio(w *ecs.World, e ecs.Entity) float64 {
	if h, ok := ecs.Get(w, e, component.HealthComponent); ok {
		return h.Ratio()
	}
	return 1
}

func currentOrder(q *component.OrderQueue) *component.Order {
	if q == nil {
		return nil
	}
	if q.Current != nil && !q.Current.Done {
		return q.Current
	}
	if len(q.Pending) > 0 {
		return &q.Pending[0]
	}
	return nil
}
