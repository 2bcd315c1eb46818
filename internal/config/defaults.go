package config

import (
	_ "embed"
)

//go:embed defaults/threefind.yaml
var defaultThreeFindYAML []byte

// DefaultThreeFindConfig returns the default match-3 configuration.
func DefaultThreeFindConfig() ThreeFindConfig {
	return ThreeFindConfig{
		Board: BoardConfig{
			Rows:       8,
			Cols:       8,
			Values:     5,
			FlipChance: 0.15,
		},
		Gestures: GestureConfig{
			DragThreshold: 1,
			DragSwap:      2,
			TapMaxMs:      300,
		},
		Animation: AnimationConfig{
			SwapMs:       150,
			FadeOutMs:    200,
			FadeInMs:     200,
			FallMs:       60,
			MatchDelayMs: 100,
		},
		Scoring: ScoringConfig{
			PointsPerPiece: 10,
			MoveBudget:     25,
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "score",
				MaxAt: 5000,
			},
			Scaling: ScalingConfig{
				FlipChanceBonus: 0.25,
				MoveReduction:   8,
			},
		},
	}
}

// GetDefaultYAML returns the embedded default YAML for a game.
func GetDefaultYAML(gameID string) []byte {
	switch gameID {
	case "threefind", "threefind_endless":
		return defaultThreeFindYAML
	default:
		return nil
	}
}
