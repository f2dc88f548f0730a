package system

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp/v2"

	"skirmish/ecs"
	"skirmish/ecs/component"
)

// defaultScriptThinkEvery is the think interval for scripts that don't set one.
const defaultScriptThinkEvery = 0.5

type scriptRuntime struct {
	source    string
	compiled  *tengo.Compiled
	stateData *tengo.Map
}

const thinkDispatchScript = `
think(__engine, __state)
`

// ScriptBrainSystem runs tengo think scripts in place of the built-in state
// machine. Each script defines think(engine, state); engine exposes queries
// and order commands, state is a mutable map that persists across calls.
// Scripts are compiled once per entity and re-run on their think interval.
type ScriptBrainSystem struct {
	cache map[ecs.Entity]*scriptRuntime
}

func NewScriptBrainSystem() *ScriptBrainSystem {
	return &ScriptBrainSystem{cache: map[ecs.Entity]*scriptRuntime{}}
}

func (s *ScriptBrainSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach(w, component.ScriptBrainComponent, func(e ecs.Entity, sb *component.ScriptBrain) {
		if ecs.Has(w, e, component.DyingComponent) {
			return
		}
		if w.Clock() < sb.NextThinkAt {
			return
		}
		every := sb.ThinkEvery
		if every <= 0 {
			every = defaultScriptThinkEvery
		}
		sb.NextThinkAt = w.Clock() + every

		rt, err := s.runtimeFor(e, sb)
		if err != nil {
			fmt.Printf("script: entity=%s load error: %v\n", e, err)
			return
		}
		engine := buildScriptEngine(w, e)
		if err := rt.run(engine); err != nil {
			fmt.Printf("script: entity=%s think error: %v\n", e, err)
		}
	})
}

func (s *ScriptBrainSystem) runtimeFor(e ecs.Entity, sb *component.ScriptBrain) (*scriptRuntime, error) {
	if strings.TrimSpace(sb.Source) == "" {
		return nil, fmt.Errorf("empty think script")
	}
	if s.cache == nil {
		s.cache = map[ecs.Entity]*scriptRuntime{}
	}
	if rt, ok := s.cache[e]; ok && rt != nil && rt.source == sb.Source {
		return rt, nil
	}

	src := sb.Source + "\n" + thinkDispatchScript
	script := tengo.NewScript([]byte(src))
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile think script %q: %w", sb.Path, err)
	}

	rt := &scriptRuntime{
		source:    sb.Source,
		compiled:  compiled,
		stateData: &tengo.Map{Value: map[string]tengo.Object{}},
	}
	s.cache[e] = rt
	return rt, nil
}

func (rt *scriptRuntime) run(engine *tengo.ImmutableMap) error {
	if rt == nil || rt.compiled == nil {
		return fmt.Errorf("nil script runtime")
	}
	if engine == nil {
		engine = &tengo.ImmutableMap{Value: map[string]tengo.Object{}}
	}
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.stateData); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func buildScriptEngine(w *ecs.World, e ecs.Entity) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	vecArray := func(v cp.Vector) tengo.Object {
		return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: v.X}, &tengo.Float{Value: v.Y}}}
	}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if tr, ok := ecs.Get(w, e, component.TransformComponent); ok {
			return vecArray(tr.Pos), nil
		}
		return vecArray(cp.Vector{}), nil
	}}

	values["clock"] = &tengo.UserFunction{Name: "clock", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: w.Clock()}, nil
	}}

	values["health_ratio"] = &tengo.UserFunction{Name: "health_ratio", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if h, ok := ecs.Get(w, e, component.HealthComponent); ok {
			return &tengo.Float{Value: h.Ratio()}, nil
		}
		return &tengo.Float{Value: 1}, nil
	}}

	values["target"] = &tengo.UserFunction{Name: "target", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if tgt, ok := ecs.Get(w, e, component.TargetingComponent); ok && tgt.Target != 0 {
			return &tengo.Int{Value: int64(tgt.Target)}, nil
		}
		return &tengo.Int{Value: 0}, nil
	}}

	values["target_position"] = &tengo.UserFunction{Name: "target_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		tgt, ok := ecs.Get(w, e, component.TargetingComponent)
		if !ok || tgt.Target == 0 {
			return tengo.UndefinedValue, nil
		}
		if tr, ok := ecs.Get(w, ecs.Entity(tgt.Target), component.TransformComponent); ok {
			return vecArray(tr.Pos), nil
		}
		return tengo.UndefinedValue, nil
	}}

	values["queue_idle"] = &tengo.UserFunction{Name: "queue_idle", Value: func(args ...tengo.Object) (tengo.Object, error) {
		q, ok := ecs.Get(w, e, component.OrderQueueComponent)
		if !ok || q.Idle() {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["move_to"] = &tengo.UserFunction{Name: "move_to", Value: func(args ...tengo.Object) (tengo.Object, error) {
		x, y, ok := floatPair(args)
		if !ok {
			return tengo.FalseValue, nil
		}
		CommandMove(w, e, cp.Vector{X: x, Y: y})
		return tengo.TrueValue, nil
	}}

	values["patrol_to"] = &tengo.UserFunction{Name: "patrol_to", Value: func(args ...tengo.Object) (tengo.Object, error) {
		x, y, ok := floatPair(args)
		if !ok {
			return tengo.FalseValue, nil
		}
		CommandPatrol(w, e, cp.Vector{X: x, Y: y})
		return tengo.TrueValue, nil
	}}

	values["attack"] = &tengo.UserFunction{Name: "attack", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		id, ok := objectAsInt(args[0])
		if !ok || id == 0 {
			return tengo.FalseValue, nil
		}
		CommandAttack(w, e, ecs.Entity(id))
		return tengo.TrueValue, nil
	}}

	values["hold"] = &tengo.UserFunction{Name: "hold", Value: func(args ...tengo.Object) (tengo.Object, error) {
		CommandHold(w, e)
		return tengo.TrueValue, nil
	}}

	values["stop"] = &tengo.UserFunction{Name: "stop", Value: func(args ...tengo.Object) (tengo.Object, error) {
		CommandStop(w, e)
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func floatPair(args []tengo.Object) (float64, float64, bool) {
	if len(args) < 2 {
		return 0, 0, false
	}
	x, okX := objectAsFloat(args[0])
	y, okY := objectAsFloat(args[1])
	return x, y, okX && okY
}

func objectAsFloat(obj tengo.Object) (float64, bool) {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value, true
	case *tengo.Int:
		return float64(v.Value), true
	default:
		return 0, false
	}
}

func objectAsInt(obj tengo.Object) (uint64, bool) {
	switch v := obj.(type) {
	case *tengo.Int:
		return uint64(v.Value), true
	case *tengo.Float:
		return uint64(v.Value), true
	default:
		return 0, false
	}
}
