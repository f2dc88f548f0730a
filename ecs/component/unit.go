package component

import "fmt"

// Faction identifies which side an entity fights for. An explicit enum
// replaces tag-string dispatch so hostility checks stay cheap and typo-proof.
type Faction uint8

const (
	FactionNeutral Faction = iota
	FactionRed
	FactionBlue
)

func (f Faction) String() string {
	switch f {
	case FactionRed:
		return "red"
	case FactionBlue:
		return "blue"
	default:
		return "neutral"
	}
}

// Hostile reports whether two factions fight each other. Neutrals fight
// nobody and nobody fights them.
func (f Faction) Hostile(other Faction) bool {
	return f != FactionNeutral && other != FactionNeutral && f != other
}

// ParseFaction maps a spec string onto the enum.
func ParseFaction(s string) (Faction, error) {
	switch s {
	case "red":
		return FactionRed, nil
	case "blue":
		return FactionBlue, nil
	case "", "neutral":
		return FactionNeutral, nil
	default:
		return FactionNeutral, fmt.Errorf("component: unknown faction %q", s)
	}
}

// Unit holds combat and movement stats. NextAttackAt is a gate against the
// sim clock, not a scheduled callback: the unit strikes on the first tick at
// or past it.
type Unit struct {
	Name           string
	Faction        Faction
	Radius         float64
	MoveSpeed      float64
	AttackDamage   float64
	AttackRange    float64
	AttackCooldown float64
	NextAttackAt   float64
}

var UnitComponent = NewComponent[Unit]()
