package component

import "github.com/jakecoffman/cp/v2"

// BrainState is the high-level behavior of an AI unit.
type BrainState uint8

const (
	StateIdle BrainState = iota
	StatePatrol
	StateAttack
	StatePursue
	StateFlee
	StateReturnToPatrol
)

func (s BrainState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePatrol:
		return "patrol"
	case StateAttack:
		return "attack"
	case StatePursue:
		return "pursue"
	case StateFlee:
		return "flee"
	case StateReturnToPatrol:
		return "return_to_patrol"
	default:
		return "unknown"
	}
}

// DefaultFleeFor is how long a unit flees before heading back to patrol.
const DefaultFleeFor = 3.0

// Brain drives a unit's state machine. State re-evaluation happens on the
// think interval; order dispatch runs every tick. StateSince timestamps the
// last transition for duration-based checks.
type Brain struct {
	State      BrainState
	StateSince float64

	ThinkEvery  float64
	NextThinkAt float64

	AggroRange      float64
	PursuitDistance float64
	FleeThreshold   float64
	FleeFor         float64

	PatrolCenter cp.Vector
	PatrolRadius float64
	ReturnRadius float64
}

// FleeDuration returns the flee duration, defaulted.
func (b *Brain) FleeDuration() float64 {
	if b == nil || b.FleeFor <= 0 {
		return DefaultFleeFor
	}
	return b.FleeFor
}

var BrainComponent = NewComponent[Brain]()

// ScriptBrain swaps the built-in state machine for a tengo think script.
// The script defines think(engine, state) and is run on its own interval.
type ScriptBrain struct {
	Path   string
	Source string

	ThinkEvery  float64
	NextThinkAt float64
}

var ScriptBrainComponent = NewComponent[ScriptBrain]()
