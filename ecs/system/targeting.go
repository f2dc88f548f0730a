package system

import (
	"skirmish/ecs"
	"skirmish/ecs/component"
)

// TargetingSystem maintains each unit's current target. Validation of the
// held target runs every tick; scanning for a better one is gated on the
// rescan interval, and a switch only happens when the challenger's score
// clears the hysteresis margin.
type TargetingSystem struct{}

func NewTargetingSystem() *TargetingSystem {
	return &TargetingSystem{}
}

func (s *TargetingSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	sw := w.SpatialWorld()
	ecs.ForEach3(w, component.TargetingComponent, component.UnitComponent, component.TransformComponent,
		func(e ecs.Entity, tgt *component.Targeting, u *component.Unit, tr *component.Transform) {
			if ecs.Has(w, e, component.DyingComponent) {
				if tgt.Target != 0 {
					s.dropTarget(w, e, tgt)
				}
				return
			}

			if tgt.Target != 0 && !s.targetValid(w, sw, e, tgt, u, tr, ecs.Entity(tgt.Target)) {
				s.dropTarget(w, e, tgt)
			}

			if w.Clock() < tgt.NextScanAt {
				return
			}
			tgt.NextScanAt = w.Clock() + tgt.RescanEvery

			best, bestScore := s.scan(w, sw, e, tgt, u, tr)
			if best == 0 {
				return
			}
			if tgt.Target == 0 {
				s.acquire(w, e, tgt, best, bestScore)
				return
			}
			if best == tgt.Target {
				return
			}
			cur := s.score(w, tgt, u, tr, ecs.Entity(tgt.Target))
			if bestScore > cur*tgt.Margin() {
				s.dropTarget(w, e, tgt)
				s.acquire(w, e, tgt, best, bestScore)
			}
		})
}

// targetValid reports whether the held target is still attackable: alive,
// not despawning, inside the faction's effective range, and visible.
func (s *TargetingSystem) targetValid(w *ecs.World, sw *ecs.SpatialWorld, e ecs.Entity, tgt *component.Targeting, u *component.Unit, tr *component.Transform, target ecs.Entity) bool {
	if !ecs.IsAlive(w, target) || ecs.Has(w, target, component.DyingComponent) {
		return false
	}
	th, ok := ecs.Get(w, target, component.HealthComponent)
	if !ok || !th.Alive() {
		return false
	}
	tu, ok := ecs.Get(w, target, component.UnitComponent)
	if !ok || !u.Faction.Hostile(tu.Faction) {
		return false
	}
	ttr, ok := ecs.Get(w, target, component.TransformComponent)
	if !ok {
		return false
	}
	if tr.Pos.Distance(ttr.Pos) > tgt.EffectiveRange(tu.Faction) {
		return false
	}
	if sw != nil && !sw.LineOfSight(tr.Pos, ttr.Pos) {
		return false
	}
	return true
}

// scan evaluates every hostile in range and returns the highest scorer.
func (s *TargetingSystem) scan(w *ecs.World, sw *ecs.SpatialWorld, e ecs.Entity, tgt *component.Targeting, u *component.Unit, tr *component.Transform) (uint64, float64) {
	if sw == nil {
		return 0, 0
	}
	var (
		best      uint64
		bestScore float64
	)
	for _, cand := range sw.QueryNearby(tr.Pos, tgt.MaxRange(), e) {
		sc := s.score(w, tgt, u, tr, cand)
		if sc > bestScore {
			best = uint64(cand)
			bestScore = sc
		}
	}
	return best, bestScore
}

// score rates a candidate: faction priority, scaled down linearly with
// distance over the effective range, scaled up as the candidate weakens.
// Invalid candidates score zero.
func (s *TargetingSystem) score(w *ecs.World, tgt *component.Targeting, u *component.Unit, tr *component.Transform, cand ecs.Entity) float64 {
	if !ecs.IsAlive(w, cand) || ecs.Has(w, cand, component.DyingComponent) {
		return 0
	}
	cu, ok := ecs.Get(w, cand, component.UnitComponent)
	if !ok || !u.Faction.Hostile(cu.Faction) {
		return 0
	}
	ch, ok := ecs.Get(w, cand, component.HealthComponent)
	if !ok || !ch.Alive() {
		return 0
	}
	ctr, ok := ecs.Get(w, cand, component.TransformComponent)
	if !ok {
		return 0
	}
	r := tgt.EffectiveRange(cu.Faction)
	if r <= 0 {
		return 0
	}
	d := tr.Pos.Distance(ctr.Pos)
	if d > r {
		return 0
	}
	if sw := w.SpatialWorld(); sw != nil && !sw.LineOfSight(tr.Pos, ctr.Pos) {
		return 0
	}
	closeness := (r - d) / r
	weakness := 1.5 - ch.Ratio()*0.5
	return tgt.Priority(cu.Faction) * closeness * weakness
}

func (s *TargetingSystem) acquire(w *ecs.World, e ecs.Entity, tgt *component.Targeting, target uint64, score float64) {
	tgt.Target = target
	w.Events().Push(ecs.Event{Type: ecs.EventTargetAcquired, Data: ecs.TargetAcquiredEvent{
		Entity: e, Target: ecs.Entity(target), Score: score,
	}})
}

func (s *TargetingSystem) dropTarget(w *ecs.World, e ecs.Entity, tgt *component.Targeting) {
	prev := tgt.Target
	tgt.Target = 0
	w.Events().Push(ecs.Event{Type: ecs.EventTargetLost, Data: ecs.TargetLostEvent{
		Entity: e, Target: ecs.Entity(prev),
	}})
}
