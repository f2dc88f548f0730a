package scenario

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultTickRate is the simulation frequency used when a scenario omits one.
const DefaultTickRate = 20

// Spec is a scenario file: the world layout and every unit in it.
type Spec struct {
	Name     string  `yaml:"name"`
	Seed     int64   `yaml:"seed"`
	TickRate int     `yaml:"tick_rate"`
	Duration float64 `yaml:"duration"`

	Obstacles []ObstacleSpec `yaml:"obstacles"`
	Units     []UnitSpec     `yaml:"units"`
}

type ObstacleSpec struct {
	Kind string `yaml:"kind"` // "segment" or "box"

	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
	X2 float64 `yaml:"x2"`
	Y2 float64 `yaml:"y2"`

	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type UnitSpec struct {
	Name    string  `yaml:"name"`
	Faction string  `yaml:"faction"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Radius  float64 `yaml:"radius"`

	MoveSpeed float64 `yaml:"move_speed"`
	Health    float64 `yaml:"health"`

	Attack    AttackSpec     `yaml:"attack"`
	Targeting *TargetingSpec `yaml:"targeting"`
	Brain     *BrainSpec     `yaml:"brain"`
	Script    string         `yaml:"script"`
}

type AttackSpec struct {
	Damage   float64 `yaml:"damage"`
	Range    float64 `yaml:"range"`
	Cooldown float64 `yaml:"cooldown"`
}

type TargetingSpec struct {
	DetectionRange float64            `yaml:"detection_range"`
	RescanEvery    float64            `yaml:"rescan_every"`
	SwitchMargin   float64            `yaml:"switch_margin"`
	Priorities     map[string]float64 `yaml:"priorities"`
	RangeBonus     map[string]float64 `yaml:"range_bonus"`
}

type BrainSpec struct {
	ThinkEvery      float64 `yaml:"think_every"`
	AggroRange      float64 `yaml:"aggro_range"`
	PursuitDistance float64 `yaml:"pursuit_distance"`
	FleeThreshold   float64 `yaml:"flee_threshold"`
	FleeFor         float64 `yaml:"flee_for"`
	PatrolRadius    float64 `yaml:"patrol_radius"`
	ReturnRadius    float64 `yaml:"return_radius"`
}

// Load reads and parses a scenario file. Unit scripts referenced by relative
// path resolve against the scenario's directory.
func Load(filename string) (*Spec, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("scenario: load %s: %w", filename, err)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario: %s: %w", filename, err)
	}
	if err := spec.resolveScripts(filepath.Dir(filename)); err != nil {
		return nil, err
	}
	return spec, nil
}

// Parse decodes a scenario spec and applies defaults.
func Parse(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("unmarshal scenario: %w", err)
	}
	if spec.TickRate <= 0 {
		spec.TickRate = DefaultTickRate
	}
	for i := range spec.Units {
		u := &spec.Units[i]
		if u.Name == "" {
			u.Name = fmt.Sprintf("unit-%d", i)
		}
	}
	return &spec, nil
}

func (s *Spec) resolveScripts(dir string) error {
	for i := range s.Units {
		u := &s.Units[i]
		if u.Script == "" || filepath.IsAbs(u.Script) {
			continue
		}
		u.Script = filepath.Join(dir, u.Script)
	}
	return nil
}
