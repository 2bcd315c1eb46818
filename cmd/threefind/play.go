package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/threefind/internal/games/threefind"
	"github.com/vovakirdan/threefind/internal/platform/tui"
	"github.com/vovakirdan/threefind/internal/registry"
	"github.com/vovakirdan/threefind/internal/storage"
)

var flagLevel int

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Play a game mode",
	Long: `Start playing the given mode: threefind (campaign, default) or
threefind_endless.

Mouse:
  Drag       - Swap with the neighbour in the drag direction
  Tap        - Flip the piece to its other face

Keyboard:
  Arrows/WASD/HJKL - Move cursor (swap when a piece is grabbed)
  Enter            - Grab/release the piece under the cursor
  Space/F          - Flip the piece under the cursor
  P                - Pause
  R                - Restart (after game over)
  B/Esc            - Quit (when paused or over)
  Q/Ctrl+C         - Quit
  Ctrl+S           - Save a screenshot

Difficulty options:
  easy   - Fewer faces, more moves per level
  normal - Standard board, difficulty grows with score
  hard   - More faces and hidden sides from the start
  fixed  - No progression, stays at config's initial level

Examples:
  threefind play
  threefind play --level 4
  threefind play threefind_endless --difficulty hard
  threefind play --config ./my-board.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntVar(&flagLevel, "level", 0, "Campaign level to start at (1-10)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	gameID := "threefind"
	if len(args) > 0 {
		gameID = args[0]
	}

	// Check if game exists
	if !registry.Exists(gameID) {
		return fmt.Errorf("unknown game %q, run 'threefind list' to see available modes", gameID)
	}
	if flagLevel < 0 || flagLevel > threefind.LevelCount() {
		return fmt.Errorf("--level must be between 1 and %d", threefind.LevelCount())
	}
	threefind.SetStartLevel(flagLevel)

	width, height := terminalSize()
	cfg := runtimeConfig(width, height)

	game, err := registry.Create(gameID)
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}

	// Open score storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		// Continue without storage - game still works
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	logger.Info("starting", "game", gameID, "seed", cfg.Seed, "size", fmt.Sprintf("%dx%d", width, height))
	if err := tui.Run(game, store, cfg, logger); err != nil {
		return fmt.Errorf("running game: %w", err)
	}
	return nil
}

// terminalSize returns the size of stdout, or 80x24 when it is not a terminal.
func terminalSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	return 80, 24
}
