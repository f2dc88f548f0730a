package system

import (
	"testing"

	"github.com/jakecoffman/cp/v2"

	"skirmish/ecs"
	"skirmish/ecs/component"
)

const testDT = 0.05

// newCombatWorld wires the execution half of the system chain: orders,
// movement, death. Tests that need targeting or brains register those
// themselves so each test controls exactly what runs.
func newCombatWorld(seed int64) (*ecs.World, *NavAgentSystem) {
	w := ecs.NewWorld(seed)
	w.SetSpatialWorld(ecs.NewSpatialWorld())
	nav := NewNavAgentSystem()
	w.AddSystem(NewOrderSystem(nav))
	w.AddSystem(nav)
	w.AddSystem(NewDeathSystem())
	return w, nav
}

func spawn(t *testing.T, w *ecs.World, u component.Unit, pos cp.Vector, hp float64) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent, &component.Transform{Pos: pos}); err != nil {
		t.Fatal(err)
	}
	if err := ecs.Add(w, e, component.UnitComponent, &u); err != nil {
		t.Fatal(err)
	}
	if err := ecs.Add(w, e, component.HealthComponent, &component.Health{Current: hp, Max: hp}); err != nil {
		t.Fatal(err)
	}
	if err := ecs.Add(w, e, component.OrderQueueComponent, &component.OrderQueue{}); err != nil {
		t.Fatal(err)
	}
	if sw := w.SpatialWorld(); sw != nil {
		sw.Sync(e, pos, u.Radius)
	}
	return e
}

func grunt(faction component.Faction) component.Unit {
	return component.Unit{
		Name:           "grunt",
		Faction:        faction,
		Radius:         0.5,
		MoveSpeed:      5,
		AttackDamage:   20,
		AttackRange:    1.5,
		AttackCooldown: 1.0,
	}
}

func stepUntil(w *ecs.World, maxTicks int, done func() bool) bool {
	for i := 0; i < maxTicks; i++ {
		if done() {
			return true
		}
		w.Step(testDT)
	}
	return done()
}

func position(t *testing.T, w *ecs.World, e ecs.Entity) cp.Vector {
	t.Helper()
	tr, ok := ecs.Get(w, e, component.TransformComponent)
	if !ok {
		t.Fatalf("entity %s has no transform", e)
	}
	return tr.Pos
}

func queue(t *testing.T, w *ecs.World, e ecs.Entity) *component.OrderQueue {
	t.Helper()
	q, ok := ecs.Get(w, e, component.OrderQueueComponent)
	if !ok {
		t.Fatalf("entity %s has no order queue", e)
	}
	return q
}

func drainByType(w *ecs.World) map[string][]ecs.Event {
	byType := map[string][]ecs.Event{}
	for _, ev := range w.Events().Drain() {
		byType[ev.Type] = append(byType[ev.Type], ev)
	}
	return byType
}
