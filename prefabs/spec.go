package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/milk9111/navsim/common"
	"gopkg.in/yaml.v3"
)

var ErrInvalidArena = errors.New("prefabs: invalid arena")

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// NavigatorSpec holds the per-agent navigation tunables. Zero fields take
// the package defaults.
type NavigatorSpec struct {
	GridSize       float64 `yaml:"grid_size"`
	Speed          float64 `yaml:"speed"`
	Patience       int     `yaml:"patience"`
	SearchShortcut bool    `yaml:"search_shortcut"`
	SnapToGrid     bool    `yaml:"snap_to_grid"`
	SafeDistance   float64 `yaml:"safe_distance"`
	ShortcutMode   string  `yaml:"shortcut_mode"`
	TargetPolicy   string  `yaml:"target_policy"`
}

type SpeciesSpec struct {
	Name    string     `yaml:"name"`
	Color   *YAMLColor `yaml:"color"`
	Count   int        `yaml:"count"`
	Attack  []string   `yaml:"attack"`
	RunAway []string   `yaml:"run_away"`
}

type SpawnSpec struct {
	Count int `yaml:"count"`
	Min   int `yaml:"min"`
	Max   int `yaml:"max"`
}

type BoundsSpec struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

type RectSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

type CircleSpec struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
}

type ObstaclesSpec struct {
	Rects   []RectSpec   `yaml:"rects"`
	Circles []CircleSpec `yaml:"circles"`
}

// Obstacle oracle backends an arena can ask for.
const (
	OracleChipmunk = "chipmunk"
	OracleAnalytic = "analytic"
)

// ArenaSpec describes a whole simulation: walls, obstacles, who spawns and
// how they navigate.
type ArenaSpec struct {
	Name        string        `yaml:"name"`
	Seed        int64         `yaml:"seed"`
	AgentRadius float64       `yaml:"agent_radius"`
	Clearance   float64       `yaml:"clearance"`
	Oracle      string        `yaml:"oracle"`
	Bounds      *BoundsSpec   `yaml:"bounds"`
	Spawn       SpawnSpec     `yaml:"spawn"`
	Navigator   NavigatorSpec `yaml:"navigator"`
	Rules       string        `yaml:"rules"`
	Species     []SpeciesSpec `yaml:"species"`
	Obstacles   ObstaclesSpec `yaml:"obstacles"`
}

func LoadArenaSpec(name string) (*ArenaSpec, error) {
	spec, err := LoadSpec[ArenaSpec](name)
	if err != nil {
		return nil, err
	}
	spec.applyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", name, err)
	}
	return &spec, nil
}

func DecodeArenaSpec(data []byte) (*ArenaSpec, error) {
	var spec ArenaSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal arena: %w", err)
	}
	spec.applyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (a *ArenaSpec) applyDefaults() {
	if a.AgentRadius == 0 {
		a.AgentRadius = common.DefaultAgentRadius
	}
	if a.Oracle == "" {
		a.Oracle = OracleChipmunk
	}
	if a.Spawn.Count == 0 {
		a.Spawn.Count = common.DefaultSpawnCount
	}
	if a.Spawn.Min == 0 && a.Spawn.Max == 0 {
		a.Spawn.Min = common.DefaultSpawnMin
		a.Spawn.Max = common.DefaultSpawnMax
	}
	for i := range a.Species {
		if a.Species[i].Count == 0 {
			a.Species[i].Count = a.Spawn.Count
		}
	}
}

// Validate checks the parts of an arena that cannot be defaulted.
func (a *ArenaSpec) Validate() error {
	if len(a.Species) == 0 {
		return fmt.Errorf("%w: no species", ErrInvalidArena)
	}
	seen := make(map[string]bool, len(a.Species))
	for _, s := range a.Species {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return fmt.Errorf("%w: species without a name", ErrInvalidArena)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate species %q", ErrInvalidArena, name)
		}
		seen[name] = true
		if s.Count < 0 {
			return fmt.Errorf("%w: species %q has negative count", ErrInvalidArena, name)
		}
	}
	if a.Spawn.Max <= a.Spawn.Min {
		return fmt.Errorf("%w: spawn range [%d, %d) is empty", ErrInvalidArena, a.Spawn.Min, a.Spawn.Max)
	}
	if a.AgentRadius < 0 || a.Clearance < 0 {
		return fmt.Errorf("%w: negative radius or clearance", ErrInvalidArena)
	}
	if a.Oracle != OracleChipmunk && a.Oracle != OracleAnalytic {
		return fmt.Errorf("%w: unknown oracle %q", ErrInvalidArena, a.Oracle)
	}
	if b := a.Bounds; b != nil && (b.MaxX <= b.MinX || b.MaxY <= b.MinY) {
		return fmt.Errorf("%w: bounds are inverted", ErrInvalidArena)
	}
	for _, r := range a.Obstacles.Rects {
		if r.W <= 0 || r.H <= 0 {
			return fmt.Errorf("%w: rect at (%g, %g) has no area", ErrInvalidArena, r.X, r.Y)
		}
	}
	for _, c := range a.Obstacles.Circles {
		if c.Radius <= 0 {
			return fmt.Errorf("%w: circle at (%g, %g) has no radius", ErrInvalidArena, c.X, c.Y)
		}
	}
	return nil
}

// SpeciesNames lists species in declaration order.
func (a *ArenaSpec) SpeciesNames() []string {
	names := make([]string, 0, len(a.Species))
	for _, s := range a.Species {
		names = append(names, strings.TrimSpace(s.Name))
	}
	return names
}

type YAMLColor struct {
	color.Color
}

// NRGBA returns the colour, or opaque white when unset.
func (c *YAMLColor) NRGBA() color.NRGBA {
	if c == nil || c.Color == nil {
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return color.NRGBAModel.Convert(c.Color).(color.NRGBA)
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
