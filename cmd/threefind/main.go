// threefind is a terminal match-3 puzzle with two-faced pieces.
//
// Usage:
//
//	threefind list              - List available game modes
//	threefind play [mode]       - Play campaign (default) or endless
//	threefind menu              - Start menu to pick a mode interactively
//	threefind serve             - Start SSH server for remote play
//	threefind scores <mode>     - Show high scores for a mode
//	threefind simulate          - Autoplay headless games
//	threefind config            - Print the default config
//
// Global flags:
//
//	--fps <rate>         - Set tick rate (default: 60)
//	--seed <value>       - Set RNG seed for reproducible boards
//	--db <path>          - Set database path (default: ~/.arcade/scores.db)
//	--config <path>      - Use a custom config YAML
//	--difficulty <name>  - Difficulty preset: easy, normal, hard, fixed
//	--log-level <level>  - debug, info, warn, error
//	--log-file <path>    - Write logs to a file
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/threefind/internal/config"
	"github.com/vovakirdan/threefind/internal/core"
	"github.com/vovakirdan/threefind/internal/games/threefind"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagDebug      bool
	flagLogLevel   string
	flagLogFile    string
)

// logger is set up before every command runs.
var (
	logger   = log.New(io.Discard)
	logClose = func() {}
)

func main() {
	err := rootCmd.Execute()
	logClose()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "threefind",
	Short: "Threefind - match three in your terminal",
	Long: `Threefind is a match-3 puzzle for the terminal. Swap neighbouring
pieces or flip a piece to reveal its hidden face; lines of three or more
equal faces clear and the board refills from above.

Play with the mouse (drag to swap, tap to flip) or the keyboard.

Available commands:
  list      - Show game modes
  play      - Play a mode directly
  menu      - Interactive mode picker
  serve     - Start SSH server for remote play
  scores    - View high scores
  simulate  - Autoplay headless games
  config    - Print the default config

Examples:
  threefind play
  threefind play threefind_endless --difficulty hard
  threefind menu
  threefind serve --ssh :2222
  threefind simulate --games 20 --seed 1`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	pf.Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	pf.StringVar(&flagDBPath, "db", "~/.arcade/scores.db", "Path to scores database")
	pf.StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	pf.StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	pf.BoolVar(&flagDebug, "debug", false, "Stop on animation bookkeeping errors and log at debug level")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&flagLogFile, "log-file", "", "Write logs to this file")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(configCmd)
}

// setup validates global flags, builds the logger and applies game settings.
func setup(cmd *cobra.Command, _ []string) error {
	if flagFPS <= 0 {
		return fmt.Errorf("--fps must be positive, got %d", flagFPS)
	}
	if flagDifficulty != "" && config.ParsePreset(flagDifficulty) == "" {
		return fmt.Errorf("unknown difficulty %q (want easy, normal, hard or fixed)", flagDifficulty)
	}

	l, closeFn, err := newLogger(cmd)
	if err != nil {
		return err
	}
	logger, logClose = l, closeFn

	threefind.SetLogger(logger)
	threefind.SetConfigPath(flagConfig)
	threefind.SetDifficultyPreset(flagDifficulty)
	return nil
}

// interactive commands own the terminal, so they only log to a file.
func interactive(cmd *cobra.Command) bool {
	return cmd.Name() == "play" || cmd.Name() == "menu"
}

func newLogger(cmd *cobra.Command) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	if flagDebug {
		level = log.DebugLevel
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case flagLogFile != "":
		path := expandHome(flagLogFile)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	case interactive(cmd):
		w = io.Discard
	}

	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "threefind",
		Level:           level,
	})
	return l, closeFn, nil
}

// runtimeConfig builds the runtime config shared by all game commands.
// A zero --seed picks one from the clock so it can be logged and replayed.
func runtimeConfig(width, height int) core.RuntimeConfig {
	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     seed,
		Debug:    flagDebug,
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
