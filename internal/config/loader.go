package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadThreeFind loads the match-3 configuration.
// Search order: customPath -> ~/.arcade/configs/threefind.yaml -> ./configs/threefind.yaml -> embedded default.
// Keys missing from the chosen file keep their default values.
func LoadThreeFind(customPath string) (ThreeFindConfig, error) {
	cfg := DefaultThreeFindConfig()
	if err := load(customPath, "threefind.yaml", defaultThreeFindYAML, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// load decodes the first readable config in search order into out.
// Only an explicit customPath is allowed to fail; unreadable or malformed
// files found by searching are skipped.
func load(customPath, filename string, embedded []byte, out any) error {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return nil
	}

	for _, path := range []string{userConfigPath(filename), filepath.Join("configs", filename)} {
		if path == "" {
			continue
		}
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, out); err == nil {
				return nil
			}
		}
	}

	// Use embedded default YAML; out already holds the hardcoded defaults if this fails
	//nolint:errcheck // Embedded file is validated by tests
	yaml.Unmarshal(embedded, out)
	return nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arcade", "configs", filename)
}

// ApplyThreeFindPreset modifies the config based on a difficulty preset.
func ApplyThreeFindPreset(cfg *ThreeFindConfig, preset DifficultyPreset) {
	if preset == DifficultyFixed {
		cfg.Difficulty.Enabled = false
	} else {
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}

	// Adjust the board based on difficulty
	switch preset {
	case DifficultyEasy:
		cfg.Board.Values = 4
		cfg.Scoring.MoveBudget += 5
	case DifficultyHard:
		cfg.Board.Values = 6
		cfg.Board.FlipChance = 0.3
	}
}
