package system

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp/v2"

	"skirmish/ecs"
	"skirmish/ecs/component"
)

func TestMoveOrderCompletes(t *testing.T) {
	w, _ := newCombatWorld(1)
	e := spawn(t, w, grunt(component.FactionRed), cp.Vector{}, 100)

	dest := cp.Vector{X: 10, Y: 0}
	CommandMove(w, e, dest)

	arrived := stepUntil(w, 200, func() bool {
		return queue(t, w, e).Idle()
	})
	if !arrived {
		t.Fatal("move order never completed")
	}
	if got := position(t, w, e); got.Distance(dest) > component.ArriveTolerance {
		t.Fatalf("unit stopped at %v, want %v", got, dest)
	}

	events := drainByType(w)
	completed := events[ecs.EventOrderCompleted]
	if len(completed) != 1 {
		t.Fatalf("expected 1 completion event, got %d", len(completed))
	}
	if data := completed[0].Data.(ecs.OrderCompletedEvent); data.Kind != component.OrderMove {
		t.Fatalf("completed kind = %s, want move", data.Kind)
	}
}

func TestQueuedOrdersRunInOrder(t *testing.T) {
	w, _ := newCombatWorld(1)
	e := spawn(t, w, grunt(component.FactionRed), cp.Vector{}, 100)

	first := cp.Vector{X: 3, Y: 0}
	second := cp.Vector{X: 3, Y: 3}
	EnqueueOrder(w, e, component.Order{Kind: component.OrderMove, Pos: first})
	EnqueueOrder(w, e, component.Order{Kind: component.OrderMove, Pos: second})

	var visitedFirst bool
	done := stepUntil(w, 400, func() bool {
		if position(t, w, e).Distance(first) <= component.ArriveTolerance {
			visitedFirst = true
		}
		return queue(t, w, e).Idle()
	})
	if !done {
		t.Fatal("queue never drained")
	}
	if !visitedFirst {
		t.Fatal("unit skipped the first waypoint")
	}
	if got := position(t, w, e); got.Distance(second) > component.ArriveTolerance {
		t.Fatalf("unit ended at %v, want %v", got, second)
	}

	completed := drainByType(w)[ecs.EventOrderCompleted]
	if len(completed) != 2 {
		t.Fatalf("expected 2 completion events, got %d", len(completed))
	}
}

func TestStopHaltsAndEmptiesQueue(t *testing.T) {
	w, _ := newCombatWorld(1)
	e := spawn(t, w, grunt(component.FactionRed), cp.Vector{}, 100)

	CommandMove(w, e, cp.Vector{X: 100, Y: 0})
	EnqueueOrder(w, e, component.Order{Kind: component.OrderMove, Pos: cp.Vector{X: 100, Y: 100}})
	w.Step(testDT)
	w.Step(testDT)

	moving := position(t, w, e)
	if moving.X <= 0 {
		t.Fatal("unit should have started moving")
	}

	CommandStop(w, e)
	w.Step(testDT)

	q := queue(t, w, e)
	if !q.Idle() {
		t.Fatalf("stop must empty the queue: %+v", q)
	}
	if q.LastStatus != component.StatusStopped {
		t.Fatalf("status = %s, want stopped", q.LastStatus)
	}

	stopped := position(t, w, e)
	w.Step(testDT)
	w.Step(testDT)
	if after := position(t, w, e); after.Distance(stopped) > 1e-9 {
		t.Fatalf("unit kept moving after stop: %v -> %v", stopped, after)
	}
}

func TestHoldCompletesInPlace(t *testing.T) {
	w, _ := newCombatWorld(1)
	start := cp.Vector{X: 2, Y: 2}
	e := spawn(t, w, grunt(component.FactionRed), start, 100)

	CommandHold(w, e)
	w.Step(testDT)

	if !queue(t, w, e).Idle() {
		t.Fatal("hold should complete immediately")
	}
	if got := position(t, w, e); got.Distance(start) > 1e-9 {
		t.Fatalf("hold must not move the unit: %v", got)
	}
}

func TestAttackRespectsCooldown(t *testing.T) {
	w, _ := newCombatWorld(1)
	attacker := spawn(t, w, grunt(component.FactionRed), cp.Vector{}, 100)
	victim := spawn(t, w, grunt(component.FactionBlue), cp.Vector{X: 1, Y: 0}, 1000)

	CommandAttack(w, attacker, victim)

	// 1.0s of simulation: first strike on the first tick, second gated a
	// full cooldown later.
	ticks := int(math.Round(1.0 / testDT))
	for i := 0; i < ticks; i++ {
		w.Step(testDT)
	}

	hits := drainByType(w)[ecs.EventHealthChanged]
	if len(hits) != 1 {
		t.Fatalf("expected exactly 1 strike in the first second, got %d", len(hits))
	}

	// one more cooldown window, one more strike
	for i := 0; i < ticks; i++ {
		w.Step(testDT)
	}
	hits = drainByType(w)[ecs.EventHealthChanged]
	if len(hits) != 1 {
		t.Fatalf("expected exactly 1 strike in the second window, got %d", len(hits))
	}

	h, _ := ecs.Get(w, victim, component.HealthComponent)
	if h.Current != 1000-2*20 {
		t.Fatalf("victim health = %f, want %f", h.Current, 1000-2*20.0)
	}
}

func TestAttackClosesDistanceFirst(t *testing.T) {
	w, _ := newCombatWorld(1)
	attacker := spawn(t, w, grunt(component.FactionRed), cp.Vector{}, 100)
	victim := spawn(t, w, grunt(component.FactionBlue), cp.Vector{X: 10, Y: 0}, 1000)

	CommandAttack(w, attacker, victim)
	w.Step(testDT)

	if queue(t, w, attacker).LastStatus != component.StatusMoving {
		t.Fatalf("out-of-range attack should chase, status = %s", queue(t, w, attacker).LastStatus)
	}

	struck := stepUntil(w, 200, func() bool {
		h, _ := ecs.Get(w, victim, component.HealthComponent)
		return h.Current < 1000
	})
	if !struck {
		t.Fatal("attacker never reached the victim")
	}
	d := position(t, w, attacker).Distance(position(t, w, victim))
	if d > grunt(component.FactionRed).AttackRange {
		t.Fatalf("struck from distance %f beyond range", d)
	}
}

func TestAttackTargetGone(t *testing.T) {
	w, _ := newCombatWorld(1)
	attacker := spawn(t, w, grunt(component.FactionRed), cp.Vector{}, 100)
	victim := spawn(t, w, grunt(component.FactionBlue), cp.Vector{X: 1, Y: 0}, 100)

	ecs.DestroyEntity(w, victim)
	CommandAttack(w, attacker, victim)
	w.Step(testDT)

	q := queue(t, w, attacker)
	if q.LastStatus != component.StatusTargetGone {
		t.Fatalf("status = %s, want target_gone", q.LastStatus)
	}
	if !q.Idle() {
		t.Fatal("vanished target must complete the order")
	}
}

func TestKillRemovesAfterGrace(t *testing.T) {
	w, _ := newCombatWorld(1)
	attacker := spawn(t, w, grunt(component.FactionRed), cp.Vector{}, 100)
	victim := spawn(t, w, grunt(component.FactionBlue), cp.Vector{X: 1, Y: 0}, 100)

	CommandAttack(w, attacker, victim)

	// 100 hp at 20 per strike: down after five strikes
	died := stepUntil(w, 200, func() bool {
		return ecs.Has(w, victim, component.DyingComponent)
	})
	if !died {
		t.Fatal("victim never died")
	}
	h, _ := ecs.Get(w, victim, component.HealthComponent)
	if h.Current != 0 {
		t.Fatalf("dead victim health = %f, want 0", h.Current)
	}

	diedEvents := drainByType(w)[ecs.EventUnitDied]
	if len(diedEvents) != 1 {
		t.Fatalf("expected exactly 1 death event, got %d", len(diedEvents))
	}

	removed := stepUntil(w, int(DefaultDeathGrace/testDT)+10, func() bool {
		return !ecs.IsAlive(w, victim)
	})
	if !removed {
		t.Fatal("victim not removed after grace period")
	}

	// attacker's order resolved as target gone and the attacker idles
	if !stepUntil(w, 10, func() bool { return queue(t, w, attacker).Idle() }) {
		t.Fatal("attacker should go idle once the target is gone")
	}
}

func TestDamageNeverNegative(t *testing.T) {
	w, _ := newCombatWorld(1)
	u := grunt(component.FactionRed)
	u.AttackDamage = 75
	attacker := spawn(t, w, u, cp.Vector{}, 100)
	victim := spawn(t, w, grunt(component.FactionBlue), cp.Vector{X: 1, Y: 0}, 100)

	CommandAttack(w, attacker, victim)
	stepUntil(w, 200, func() bool {
		return ecs.Has(w, victim, component.DyingComponent)
	})

	h, _ := ecs.Get(w, victim, component.HealthComponent)
	if h.Current < 0 {
		t.Fatalf("health went negative: %f", h.Current)
	}
}

func TestStatusEventOnlyOnChange(t *testing.T) {
	w, _ := newCombatWorld(1)
	e := spawn(t, w, grunt(component.FactionRed), cp.Vector{}, 100)

	CommandMove(w, e, cp.Vector{X: 50, Y: 0})
	for i := 0; i < 10; i++ {
		w.Step(testDT)
	}

	statuses := drainByType(w)[ecs.EventOrderStatus]
	if len(statuses) != 1 {
		t.Fatalf("unchanged status must not repeat events, got %d", len(statuses))
	}
	if data := statuses[0].Data.(ecs.OrderStatusEvent); data.Status != component.StatusMoving {
		t.Fatalf("status = %s, want moving", data.Status)
	}
}

func TestDyingUnitTakesNoOrders(t *testing.T) {
	w, _ := newCombatWorld(1)
	e := spawn(t, w, grunt(component.FactionRed), cp.Vector{}, 100)

	h, _ := ecs.Get(w, e, component.HealthComponent)
	h.Current = 0
	w.Step(testDT)

	CommandMove(w, e, cp.Vector{X: 10, Y: 0})
	start := position(t, w, e)
	w.Step(testDT)

	if got := position(t, w, e); got.Distance(start) > 1e-9 {
		t.Fatal("dying unit must not move")
	}
	if !queue(t, w, e).Idle() {
		t.Fatal("dying unit's queue must stay cleared")
	}
}
