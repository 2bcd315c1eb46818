package threefind

// GameStateType represents the current game state.
type GameStateType string

const (
	StatePlaying      GameStateType = "playing"
	StateLevelCleared GameStateType = "level_cleared"
	StateGameOver     GameStateType = "game_over"
	StateWin          GameStateType = "win"
	StatePausedSmall  GameStateType = "paused_small_window"
	StateError        GameStateType = "error"
)

func (s GameStateType) ended() bool {
	return s == StateGameOver || s == StateWin || s == StateError
}

// Snapshot captures the complete game state for determinism testing and replay.
type Snapshot struct {
	Tick       uint64
	Mode       string // "campaign" or "endless"
	Level      int    // Current level (1-indexed), 0 for endless
	Target     int
	Score      int
	MovesLeft  int // -1 in endless mode
	Shuffles   int // Shuffles remaining
	Phase      string
	Board      [][]int // Visible faces, -1 for empty cells
	Identities [][]int // Piece IDs, 0 for empty cells
	State      GameStateType
}

// Snapshot returns the current game snapshot for determinism verification.
func (g *Game) Snapshot() Snapshot {
	state := StatePlaying
	switch {
	case g.err != nil:
		state = StateError
	case g.tooSmall:
		state = StatePausedSmall
	case g.won:
		state = StateWin
	case g.gameOver:
		state = StateGameOver
	case g.levelCleared:
		state = StateLevelCleared
	}

	s := Snapshot{
		Tick:      g.tick,
		Mode:      string(g.mode),
		Target:    g.levelTarget,
		Score:     g.score,
		MovesLeft: g.MovesLeft(),
		Shuffles:  g.shufflesLeft,
		State:     state,
	}
	if g.mode == ModeCampaign {
		s.Level = g.levelIndex + 1
	}
	if g.board != nil {
		s.Board = g.board.Snapshot()
		s.Identities = g.board.Identity()
	}
	if g.ctrl != nil {
		s.Phase = g.ctrl.State().String()
	}
	return s
}
