package component

// DefaultSwitchMargin is the hysteresis factor: a candidate must beat the
// current target's score by this much before targeting switches.
const DefaultSwitchMargin = 1.2

// Targeting scans for hostiles on an interval and holds the current target.
// The current target is kept until it dies, leaves detection range, or loses
// line of sight.
type Targeting struct {
	DetectionRange float64
	RescanEvery    float64
	NextScanAt     float64
	SwitchMargin   float64
	// Priorities weights candidate scores per hostile faction. Missing
	// entries default to 1.
	Priorities map[Faction]float64
	// RangeBonus extends detection range per hostile faction.
	RangeBonus map[Faction]float64
	// Target is the current target handle (ecs.Entity is uint64), 0 = none.
	Target uint64
}

// Priority returns the score weight for a faction.
func (t *Targeting) Priority(f Faction) float64 {
	if t == nil {
		return 1
	}
	if p, ok := t.Priorities[f]; ok && p > 0 {
		return p
	}
	return 1
}

// EffectiveRange returns detection range plus any per-faction bonus.
func (t *Targeting) EffectiveRange(f Faction) float64 {
	if t == nil {
		return 0
	}
	return t.DetectionRange + t.RangeBonus[f]
}

// MaxRange returns the largest effective range across all bonuses, the
// radius the spatial query has to cover.
func (t *Targeting) MaxRange() float64 {
	if t == nil {
		return 0
	}
	max := t.DetectionRange
	for _, b := range t.RangeBonus {
		if t.DetectionRange+b > max {
			max = t.DetectionRange + b
		}
	}
	return max
}

// Margin returns the switch hysteresis factor, defaulted.
func (t *Targeting) Margin() float64 {
	if t == nil || t.SwitchMargin <= 0 {
		return DefaultSwitchMargin
	}
	return t.SwitchMargin
}

var TargetingComponent = NewComponent[Targeting]()
