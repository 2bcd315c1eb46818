package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/threefind/internal/registry"
	"github.com/vovakirdan/threefind/internal/storage"
)

var (
	flagScoreLimit int
	flagSessions   bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [mode]",
	Short: "Show high scores for a mode",
	Long: `Display the top high scores for the given mode (default: threefind).
With --sessions, lists the most recent sessions with their statistics.

Examples:
  threefind scores
  threefind scores threefind_endless
  threefind scores --sessions --limit 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoreLimit, "limit", 10, "Number of entries to show")
	scoresCmd.Flags().BoolVar(&flagSessions, "sessions", false, "Show recent sessions instead of top scores")
}

func runScores(_ *cobra.Command, args []string) error {
	gameID := "threefind"
	if len(args) > 0 {
		gameID = args[0]
	}

	if !registry.Exists(gameID) {
		return fmt.Errorf("unknown game %q, run 'threefind list' to see available modes", gameID)
	}
	game, err := registry.Create(gameID)
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening scores database: %w", err)
	}
	defer store.Close()

	if flagSessions {
		return printSessions(store, gameID, game.Title())
	}
	return printScores(store, gameID, game.Title())
}

func printScores(store *storage.Store, gameID, title string) error {
	scores, err := store.TopScores(gameID, flagScoreLimit)
	if err != nil {
		return fmt.Errorf("retrieving scores: %w", err)
	}

	fmt.Printf("High Scores - %s\n", title)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'threefind play %s' to set the first high score!\n", gameID)
		return nil
	}

	fmt.Printf("  %-4s  %-10s  %s\n", "Rank", "Score", "Date")
	fmt.Printf("  %-4s  %-10s  %s\n", "----", "-----", "----")

	for i, entry := range scores {
		dateStr := entry.CreatedAt.Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-10d  %s\n", i+1, entry.Score, dateStr)
	}

	stats, err := store.GetGameStats(gameID)
	if err == nil {
		fmt.Println()
		fmt.Printf("Best: %d  Games: %d  Average: %.0f\n", stats.HighScore, stats.GamesCount, stats.AvgScore)
	}
	return nil
}

func printSessions(store *storage.Store, gameID, title string) error {
	sessions, err := store.RecentSessions(gameID, flagScoreLimit)
	if err != nil {
		return fmt.Errorf("retrieving sessions: %w", err)
	}

	fmt.Printf("Recent Sessions - %s\n", title)
	fmt.Println()

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet.")
		return nil
	}

	fmt.Printf("  %-16s  %-8s  %-3s  %-5s  %-5s  %-7s  %-5s  %s\n",
		"Date", "Score", "Lv", "Moves", "Flips", "Matched", "Chain", "Time")
	for _, s := range sessions {
		level := "-"
		if s.Level > 0 {
			level = fmt.Sprintf("%d", s.Level)
		}
		fmt.Printf("  %-16s  %-8d  %-3s  %-5d  %-5d  %-7d  x%-4d  %dm%02ds\n",
			s.CreatedAt.Format("2006-01-02 15:04"),
			s.Score, level, s.Moves, s.Flips, s.Matched, s.MaxCascade,
			s.Duration/60, s.Duration%60)
	}
	return nil
}
