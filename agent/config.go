package agent

import (
	"errors"
	"fmt"
	"math"

	"github.com/milk9111/navsim/common"
	"github.com/milk9111/navsim/nav"
	"github.com/milk9111/navsim/prefabs"
)

var ErrInvalidConfig = errors.New("agent: invalid config")

// Config holds the navigator tunables of one agent.
type Config struct {
	GridSize       float64
	Speed          float64
	Patience       int
	SearchShortcut bool
	SnapToGrid     bool
	SafeDistance   float64
	ShortcutMode   nav.ShortcutMode
	TargetPolicy   nav.TargetPolicy
}

func DefaultConfig() Config {
	return Config{
		GridSize:     common.DefaultGridSize,
		Speed:        common.DefaultSpeed,
		Patience:     common.DefaultPatience,
		SafeDistance: common.DefaultSafeDistance,
		ShortcutMode: nav.ShortcutLegacy,
		TargetPolicy: nav.PolicyOriginSentinel,
	}
}

// ConfigFromSpec overlays the set fields of a navigator spec on the
// defaults and validates the result.
func ConfigFromSpec(spec prefabs.NavigatorSpec) (Config, error) {
	cfg := DefaultConfig()
	if spec.GridSize != 0 {
		cfg.GridSize = spec.GridSize
	}
	if spec.Speed != 0 {
		cfg.Speed = spec.Speed
	}
	if spec.Patience != 0 {
		cfg.Patience = spec.Patience
	}
	if spec.SafeDistance != 0 {
		cfg.SafeDistance = spec.SafeDistance
	}
	cfg.SearchShortcut = spec.SearchShortcut
	cfg.SnapToGrid = spec.SnapToGrid

	mode, err := nav.ParseShortcutMode(spec.ShortcutMode)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg.ShortcutMode = mode

	policy, err := nav.ParseTargetPolicy(spec.TargetPolicy)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg.TargetPolicy = policy

	return cfg, cfg.Validate()
}

// Validate rejects anything that would otherwise fail later inside a
// search, including infinite or NaN distances.
func (c Config) Validate() error {
	if err := c.Grid().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch {
	case !(c.Speed > 0) || math.IsInf(c.Speed, 1):
		return fmt.Errorf("%w: speed %g must be finite and > 0", ErrInvalidConfig, c.Speed)
	case c.Patience <= 0:
		return fmt.Errorf("%w: patience %d must be > 0", ErrInvalidConfig, c.Patience)
	case !(c.SafeDistance > 0) || math.IsInf(c.SafeDistance, 1):
		return fmt.Errorf("%w: safe distance %g must be finite and > 0", ErrInvalidConfig, c.SafeDistance)
	case c.ShortcutMode > nav.ShortcutCompact:
		return fmt.Errorf("%w: unknown shortcut mode %d", ErrInvalidConfig, c.ShortcutMode)
	case c.TargetPolicy > nav.PolicyStrict:
		return fmt.Errorf("%w: unknown target policy %d", ErrInvalidConfig, c.TargetPolicy)
	}
	return nil
}

func (c Config) Grid() nav.GridSpec {
	return nav.GridSpec{Spacing: c.GridSize}
}
