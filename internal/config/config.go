// Package config provides YAML-based game configuration loading and
// difficulty management for threefind.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ThreeFindConfig contains all configuration for the match-3 game.
type ThreeFindConfig struct {
	Board      BoardConfig      `yaml:"board"`
	Gestures   GestureConfig    `yaml:"gestures"`
	Animation  AnimationConfig  `yaml:"animation"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// BoardConfig defines the grid and how pieces are generated.
type BoardConfig struct {
	Rows       int     `yaml:"rows"`
	Cols       int     `yaml:"cols"`
	Values     int     `yaml:"values"`      // Distinct piece colors
	FlipChance float64 `yaml:"flip_chance"` // Probability a new piece has a hidden face
}

// GestureConfig defines pointer gesture thresholds in terminal cells.
type GestureConfig struct {
	DragThreshold float64 `yaml:"drag_threshold"` // Movement that turns a press into a drag
	DragSwap      float64 `yaml:"drag_swap"`      // Release distance that commits a swap
	TapMaxMs      int     `yaml:"tap_max_ms"`     // Longest press that still counts as a tap
}

// AnimationConfig defines animation durations in milliseconds.
type AnimationConfig struct {
	SwapMs       int `yaml:"swap_ms"`
	FadeOutMs    int `yaml:"fade_out_ms"`
	FadeInMs     int `yaml:"fade_in_ms"`
	FallMs       int `yaml:"fall_ms"` // Per row fallen
	MatchDelayMs int `yaml:"match_delay_ms"`
}

// ScoringConfig defines scoring and campaign parameters.
type ScoringConfig struct {
	PointsPerPiece int `yaml:"points_per_piece"` // Multiplied by cascade depth
	MoveBudget     int `yaml:"move_budget"`      // Campaign moves per level before difficulty scaling
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases over time.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "score", "time", or "none"
	MaxAt int    `yaml:"max_at"` // Score/ticks at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	FlipChanceBonus float64 `yaml:"flip_chance_bonus"` // Flip chance added at max difficulty
	MoveReduction   int     `yaml:"move_reduction"`    // Moves removed from the budget at max difficulty
}

// Duration converts a millisecond setting to a time.Duration.
func Duration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Validate reports the first setting that cannot produce a playable game.
func (c ThreeFindConfig) Validate() error {
	var errs []error

	b := c.Board
	if b.Rows < 3 || b.Rows > 16 || b.Cols < 3 || b.Cols > 16 {
		errs = append(errs, fmt.Errorf("board size %dx%d outside 3..16", b.Rows, b.Cols))
	}
	if b.Values < 3 || b.Values > 8 {
		errs = append(errs, fmt.Errorf("board values %d outside 3..8", b.Values))
	}
	if b.FlipChance < 0 || b.FlipChance > 1 {
		errs = append(errs, fmt.Errorf("flip_chance %.2f outside [0,1]", b.FlipChance))
	}

	g := c.Gestures
	if g.DragThreshold <= 0 {
		errs = append(errs, errors.New("drag_threshold must be positive"))
	}
	if g.DragSwap < g.DragThreshold {
		errs = append(errs, fmt.Errorf("drag_swap %.1f below drag_threshold %.1f", g.DragSwap, g.DragThreshold))
	}
	if g.TapMaxMs <= 0 {
		errs = append(errs, errors.New("tap_max_ms must be positive"))
	}

	a := c.Animation
	for _, d := range []struct {
		name string
		ms   int
	}{
		{"swap_ms", a.SwapMs},
		{"fade_out_ms", a.FadeOutMs},
		{"fade_in_ms", a.FadeInMs},
		{"fall_ms", a.FallMs},
		{"match_delay_ms", a.MatchDelayMs},
	} {
		if d.ms < 0 {
			errs = append(errs, fmt.Errorf("%s is negative", d.name))
		}
	}

	if c.Scoring.PointsPerPiece <= 0 {
		errs = append(errs, errors.New("points_per_piece must be positive"))
	}
	if c.Scoring.MoveBudget <= 0 {
		errs = append(errs, errors.New("move_budget must be positive"))
	}

	switch c.Difficulty.Progression.Type {
	case "score", "time", "none", "":
	default:
		errs = append(errs, fmt.Errorf("unknown progression type %q", c.Difficulty.Progression.Type))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset converts a CLI value to a preset. Unknown values yield "".
func ParsePreset(s string) DifficultyPreset {
	switch p := DifficultyPreset(s); p {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p
	default:
		return ""
	}
}

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}
