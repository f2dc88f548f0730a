package system

import (
	"testing"

	"github.com/jakecoffman/cp/v2"

	"skirmish/ecs"
	"skirmish/ecs/component"
)

func newBrainWorld(seed int64) *ecs.World {
	w := ecs.NewWorld(seed)
	w.SetSpatialWorld(ecs.NewSpatialWorld())
	nav := NewNavAgentSystem()
	w.AddSystem(NewBrainSystem())
	w.AddSystem(NewOrderSystem(nav))
	w.AddSystem(nav)
	w.AddSystem(NewDeathSystem())
	return w
}

func addBrain(t *testing.T, w *ecs.World, e ecs.Entity, b component.Brain) *component.Brain {
	t.Helper()
	if err := ecs.Add(w, e, component.BrainComponent, &b); err != nil {
		t.Fatal(err)
	}
	v, _ := ecs.Get(w, e, component.BrainComponent)
	return v
}

func setTarget(t *testing.T, w *ecs.World, e, target ecs.Entity) *component.Targeting {
	t.Helper()
	tgt, ok := ecs.Get(w, e, component.TargetingComponent)
	if !ok {
		tgt = &component.Targeting{DetectionRange: 100, RescanEvery: 1000, NextScanAt: 1e9}
		if err := ecs.Add(w, e, component.TargetingComponent, tgt); err != nil {
			t.Fatal(err)
		}
	}
	tgt.Target = uint64(target)
	return tgt
}

func guardBrain() component.Brain {
	return component.Brain{
		State:           component.StatePatrol,
		ThinkEvery:      0.1,
		AggroRange:      10,
		PursuitDistance: 20,
		FleeThreshold:   0.2,
		PatrolRadius:    5,
		ReturnRadius:    15,
	}
}

func TestBrainAttackVsPursueByDistance(t *testing.T) {
	cases := []struct {
		name      string
		targetAt  cp.Vector
		wantState component.BrainState
		wantKind  component.OrderKind
	}{
		{"inside_aggro_attacks", cp.Vector{X: 5, Y: 0}, component.StateAttack, component.OrderAttack},
		{"inside_pursuit_chases", cp.Vector{X: 15, Y: 0}, component.StatePursue, component.OrderMove},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := newBrainWorld(1)
			e := spawn(t, w, grunt(component.FactionRed), cp.Vector{}, 100)
			b := addBrain(t, w, e, guardBrain())
			enemy := spawn(t, w, grunt(component.FactionBlue), c.targetAt, 100)
			setTarget(t, w, e, enemy)

			w.Step(testDT)

			if b.State != c.wantState {
				t.Fatalf("state = %s, want %s", b.State, c.wantState)
			}
			q := queue(t, w, e)
			if q.Current == nil || q.Current.Kind != c.wantKind {
				t.Fatalf("dispatched order = %+v, want kind %s", q.Current, c.wantKind)
			}
		})
	}
}

func TestBrainTargetBeyondPursuitReturns(t *testing.T) {
	w := newBrainWorld(1)
	e := spawn(t, w, grunt(component.FactionRed), cp.Vector{}, 100)
	b := addBrain(t, w, e, guardBrain())
	enemy := spawn(t, w, grunt(component.FactionBlue), cp.Vector{X: 50, Y: 0}, 100)
	setTarget(t, w, e, enemy)

	w.Step(testDT)

	if b.State != component.StateReturnToPatrol {
		t.Fatalf("state = %s, want return_to_patrol", b.State)
	}
}

func TestBrainReactiveFleeSkipsThinkInterval(t *testing.T) {
	w := newBrainWorld(1)
	e := spawn(t, w, grunt(component.FactionRed), cp.Vector{}, 100)
	brain := guardBrain()
	brain.ThinkEvery = 100 // the reactive check must not wait for this
	b := addBrain(t, w, e, brain)
	enemy := spawn(t, w, grunt(component.FactionBlue), cp.Vector{X: 5, Y: 0}, 100)
	setTarget(t, w, e, enemy)

	w.Step(testDT) // first think happens immediately
	if b.State != component.StateAttack {
		t.Fatalf("setup: state = %s, want attack", b.State)
	}
	w.Events().Drain()

	h, _ := ecs.Get(w, e, component.HealthComponent)
	h.Current = 10 // ratio 0.1, under the 0.2 threshold
	w.Step(testDT)

	if b.State != component.StateFlee {
		t.Fatalf("state = %s, want flee on the very next tick", b.State)
	}
	changes := drainByType(w)[ecs.EventStateChanged]
	if len(changes) != 1 {
		t.Fatalf("expected 1 state change event, got %d", len(changes))
	}
	if data := changes[0].Data.(ecs.StateChangedEvent); data.From != component.StateAttack || data.To != component.StateFlee {
		t.Fatalf("unexpected transition %s -> %s", data.From, data.To)
	}

	// flee dispatch runs away from the threat
	q := queue(t, w, e)
	if q.Current == nil || q.Current.Kind != component.OrderMove {
		t.Fatalf("flee must issue a move order, got %+v", q.Current)
	}
	if q.Current.Pos.X >= 0 {
		t.Fatalf("flee destination %v must point away from the threat at x=5", q.Current.Pos)
	}
}

func TestBrainFleeLastsThenReturns(t *testing.T) {
	w := newBrainWorld(1)
	e := spawn(t, w, grunt(component.FactionRed), cp.Vector{}, 100)
	b := addBrain(t, w, e, guardBrain())
	enemy := spawn(t, w, grunt(component.FactionBlue), cp.Vector{X: 5, Y: 0}, 100)
	tgt := setTarget(t, w, e, enemy)

	h, _ := ecs.Get(w, e, component.HealthComponent)
	h.Current = 10
	w.Step(testDT)
	if b.State != component.StateFlee {
		t.Fatalf("setup: state = %s, want flee", b.State)
	}
	fledAt := b.StateSince

	// threat disengages; the flee still runs its full duration
	tgt.Target = 0
	for i := 0; i < 40; i++ { // 2.0s < 3.0s flee duration
		w.Step(testDT)
	}
	if b.State != component.StateFlee {
		t.Fatalf("flee ended early at t=%.2f (started %.2f)", w.Clock(), fledAt)
	}

	for i := 0; i < 30; i++ { // past the 3.0s mark
		w.Step(testDT)
	}
	if b.State != component.StateReturnToPatrol {
		t.Fatalf("state = %s, want return_to_patrol after flee expires", b.State)
	}
}

func TestBrainPatrolStaysInsideRadius(t *testing.T) {
	w := newBrainWorld(7)
	center := cp.Vector{X: 10, Y: 10}
	e := spawn(t, w, grunt(component.FactionRed), center, 100)
	brain := guardBrain()
	brain.PatrolCenter = center
	b := addBrain(t, w, e, brain)

	for i := 0; i < 400; i++ {
		w.Step(testDT)
		if b.State != component.StatePatrol {
			t.Fatalf("tick %d: state = %s, want patrol", i, b.State)
		}
		q := queue(t, w, e)
		if q.Current != nil && q.Current.Kind == component.OrderPatrol {
			if d := q.Current.Pos.Distance(center); d > brain.PatrolRadius+1e-9 {
				t.Fatalf("patrol point %v is %f from center, radius %f", q.Current.Pos, d, brain.PatrolRadius)
			}
		}
	}
}

func TestBrainReturnsWhenFarFromHome(t *testing.T) {
	w := newBrainWorld(1)
	home := cp.Vector{}
	e := spawn(t, w, grunt(component.FactionRed), cp.Vector{X: 30, Y: 0}, 100)
	b := addBrain(t, w, e, guardBrain())

	w.Step(testDT)
	if b.State != component.StateReturnToPatrol {
		t.Fatalf("state = %s, want return_to_patrol beyond the leash", b.State)
	}

	back := stepUntil(w, 400, func() bool {
		return b.State == component.StatePatrol
	})
	if !back {
		t.Fatalf("never resumed patrol; state = %s at %v", b.State, position(t, w, e))
	}
	if d := position(t, w, e).Distance(home); d > b.ReturnRadius {
		t.Fatalf("resumed patrol %f from home", d)
	}
}

func TestBrainIdleIsNeverReentered(t *testing.T) {
	w := newBrainWorld(1)
	e := spawn(t, w, grunt(component.FactionRed), cp.Vector{}, 100)
	brain := guardBrain()
	brain.State = component.StateIdle
	b := addBrain(t, w, e, brain)

	seenIdleAgain := false
	for i := 0; i < 100; i++ {
		w.Step(testDT)
		if i > 0 && b.State == component.StateIdle {
			seenIdleAgain = true
		}
	}
	if b.State == component.StateIdle {
		t.Fatal("idle must give way to patrol on the first think")
	}
	if seenIdleAgain {
		t.Fatal("idle must never be re-entered")
	}
}
