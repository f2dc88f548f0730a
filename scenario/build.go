package scenario

import (
	"fmt"
	"os"

	"github.com/jakecoffman/cp/v2"

	"skirmish/ecs"
	"skirmish/ecs/component"
	"skirmish/ecs/system"
)

// Build assembles a ready-to-step world from a scenario spec: spatial index,
// obstacles, the full system chain, and every unit spawned.
func Build(spec *Spec) (*ecs.World, error) {
	if spec == nil {
		return nil, fmt.Errorf("scenario: nil spec")
	}

	w := ecs.NewWorld(spec.Seed)
	sw := ecs.NewSpatialWorld()
	w.SetSpatialWorld(sw)

	for _, o := range spec.Obstacles {
		switch o.Kind {
		case "segment":
			sw.AddObstacleSegment(cp.Vector{X: o.X, Y: o.Y}, cp.Vector{X: o.X2, Y: o.Y2}, o.Width/2)
		case "box":
			sw.AddObstacleBox(cp.BB{L: o.X, B: o.Y, R: o.X + o.Width, T: o.Y + o.Height})
		default:
			return nil, fmt.Errorf("scenario: unknown obstacle kind %q", o.Kind)
		}
	}

	nav := system.NewNavAgentSystem()
	w.AddSystem(system.NewTargetingSystem())
	w.AddSystem(system.NewBrainSystem())
	w.AddSystem(system.NewScriptBrainSystem())
	w.AddSystem(system.NewOrderSystem(nav))
	w.AddSystem(nav)
	w.AddSystem(system.NewDeathSystem())

	for i := range spec.Units {
		if _, err := SpawnUnit(w, &spec.Units[i]); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// SpawnUnit creates one unit entity from its spec.
func SpawnUnit(w *ecs.World, us *UnitSpec) (ecs.Entity, error) {
	faction, err := component.ParseFaction(us.Faction)
	if err != nil {
		return 0, fmt.Errorf("scenario: unit %s: %w", us.Name, err)
	}

	e := ecs.CreateEntity(w)
	pos := cp.Vector{X: us.X, Y: us.Y}

	if err := ecs.Add(w, e, component.TransformComponent, &component.Transform{Pos: pos}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.UnitComponent, &component.Unit{
		Name:           us.Name,
		Faction:        faction,
		Radius:         us.Radius,
		MoveSpeed:      us.MoveSpeed,
		AttackDamage:   us.Attack.Damage,
		AttackRange:    us.Attack.Range,
		AttackCooldown: us.Attack.Cooldown,
	}); err != nil {
		return 0, err
	}
	hp := us.Health
	if hp <= 0 {
		hp = 100
	}
	if err := ecs.Add(w, e, component.HealthComponent, &component.Health{Current: hp, Max: hp}); err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.OrderQueueComponent, &component.OrderQueue{}); err != nil {
		return 0, err
	}

	if ts := us.Targeting; ts != nil {
		tgt := &component.Targeting{
			DetectionRange: ts.DetectionRange,
			RescanEvery:    ts.RescanEvery,
			SwitchMargin:   ts.SwitchMargin,
		}
		if len(ts.Priorities) > 0 {
			tgt.Priorities = make(map[component.Faction]float64, len(ts.Priorities))
			for name, p := range ts.Priorities {
				f, err := component.ParseFaction(name)
				if err != nil {
					return 0, fmt.Errorf("scenario: unit %s: priorities: %w", us.Name, err)
				}
				tgt.Priorities[f] = p
			}
		}
		if len(ts.RangeBonus) > 0 {
			tgt.RangeBonus = make(map[component.Faction]float64, len(ts.RangeBonus))
			for name, b := range ts.RangeBonus {
				f, err := component.ParseFaction(name)
				if err != nil {
					return 0, fmt.Errorf("scenario: unit %s: range_bonus: %w", us.Name, err)
				}
				tgt.RangeBonus[f] = b
			}
		}
		if err := ecs.Add(w, e, component.TargetingComponent, tgt); err != nil {
			return 0, err
		}
	}

	switch {
	case us.Script != "":
		src, err := os.ReadFile(us.Script)
		if err != nil {
			return 0, fmt.Errorf("scenario: unit %s: script: %w", us.Name, err)
		}
		if err := ecs.Add(w, e, component.ScriptBrainComponent, &component.ScriptBrain{
			Path:   us.Script,
			Source: string(src),
		}); err != nil {
			return 0, err
		}
	case us.Brain != nil:
		bs := us.Brain
		if err := ecs.Add(w, e, component.BrainComponent, &component.Brain{
			State:           component.StatePatrol,
			ThinkEvery:      bs.ThinkEvery,
			AggroRange:      bs.AggroRange,
			PursuitDistance: bs.PursuitDistance,
			FleeThreshold:   bs.FleeThreshold,
			FleeFor:         bs.FleeFor,
			PatrolCenter:    pos,
			PatrolRadius:    bs.PatrolRadius,
			ReturnRadius:    bs.ReturnRadius,
		}); err != nil {
			return 0, err
		}
	}

	if sw := w.SpatialWorld(); sw != nil {
		sw.Sync(e, pos, us.Radius)
	}
	return e, nil
}

// Survivors counts living, non-dying units per faction.
func Survivors(w *ecs.World) map[component.Faction]int {
	counts := map[component.Faction]int{}
	ecs.ForEach2(w, component.UnitComponent, component.HealthComponent,
		func(e ecs.Entity, u *component.Unit, h *component.Health) {
			if h.Alive() && !ecs.Has(w, e, component.DyingComponent) {
				counts[u.Faction]++
			}
		})
	return counts
}
