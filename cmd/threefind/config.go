package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/threefind/internal/config"
)

var flagEffective bool

var configCmd = &cobra.Command{
	Use:   "config [mode]",
	Short: "Print the default config",
	Long: `Print the embedded default config for a mode, ready to copy to
~/.arcade/configs/threefind.yaml and edit.

With --effective, prints the config that a game would actually use after
the search path (--config, ~/.arcade/configs, ./configs) and --difficulty
are applied.

Examples:
  threefind config > ~/.arcade/configs/threefind.yaml
  threefind config --effective --difficulty hard`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagEffective, "effective", false, "Print the loaded config instead of the embedded default")
}

func runConfig(_ *cobra.Command, args []string) error {
	gameID := "threefind"
	if len(args) > 0 {
		gameID = args[0]
	}

	if !flagEffective {
		data := config.GetDefaultYAML(gameID)
		if data == nil {
			return fmt.Errorf("no default config for %q", gameID)
		}
		fmt.Print(string(data))
		return nil
	}

	cfg, err := config.LoadThreeFind(flagConfig)
	if err != nil {
		return err
	}
	if preset := config.ParsePreset(flagDifficulty); preset != "" {
		config.ApplyThreeFindPreset(&cfg, preset)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}
