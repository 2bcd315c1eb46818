// Package threefind implements a match-3 puzzle with two-faced pieces.
// Players swap neighbouring pieces or flip a piece to show its hidden face;
// runs of three or more equal faces clear and the board refills from above.
package threefind

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/threefind/internal/config"
	"github.com/vovakirdan/threefind/internal/core"
	"github.com/vovakirdan/threefind/internal/games/threefind/board"
	"github.com/vovakirdan/threefind/internal/games/threefind/controller"
	"github.com/vovakirdan/threefind/internal/games/threefind/tween"
	"github.com/vovakirdan/threefind/internal/registry"
)

// Mode represents the game mode.
type Mode string

const (
	ModeCampaign Mode = "campaign"
	ModeEndless  Mode = "endless"
)

const (
	levelClearDuration = 120 // ~2s at 60fps
	comboDuration      = 90
	maxShuffles        = 3
	hintAfter          = 8 * time.Second
)

// Package-level settings applied on the next Reset, set via CLI
var (
	configPath         string
	difficultyPreset   config.DifficultyPreset
	selectedStartLevel int
	logger             = log.New(io.Discard)
)

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset. Unknown names clear it.
func SetDifficultyPreset(preset string) {
	difficultyPreset = config.ParsePreset(preset)
}

// SetStartLevel sets the starting campaign level (1-10). 0 means start from beginning.
func SetStartLevel(level int) {
	selectedStartLevel = level
}

// SetLogger sets the logger used by new game sessions.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard)
	}
	logger = l
}

// Game implements the match-3 game on top of the board controller.
type Game struct {
	mode    Mode
	instant bool // Complete animations immediately

	cfg        config.ThreeFindConfig
	runtime    core.RuntimeConfig
	difficulty *config.DifficultyManager

	clock   *controller.TickClock
	ctx     *controller.Context
	board   *board.Board
	sprites *tween.Engine
	pointer *controller.PointerTracker
	ctrl    *controller.Controller
	layout  controller.Layout

	relayout bool // Layout changed while the board was moving

	cursor  board.Cell
	grabbed bool
	idle    time.Duration

	tick            uint64
	score           int
	levelIndex      int
	levelTarget     int
	moveBudget      int
	levelStartMoves int
	shufflesLeft    int
	combo           int
	comboTicks      int

	levelCleared    bool
	levelClearTicks int
	gameOver        bool
	won             bool
	paused          bool
	tooSmall        bool
	err             error
}

// New creates a new campaign mode game.
func New() *Game {
	return &Game{mode: ModeCampaign}
}

// NewEndless creates a new endless mode game.
func NewEndless() *Game {
	return &Game{mode: ModeEndless}
}

// NewHeadless creates a game whose animations finish as soon as they start.
// Used for simulation, where nothing is drawn.
func NewHeadless(mode Mode) *Game {
	return &Game{mode: mode, instant: true}
}

var (
	_ registry.Game            = (*Game)(nil)
	_ registry.SessionReporter = (*Game)(nil)
	_ registry.Resizer         = (*Game)(nil)
)

func init() {
	registry.Register("threefind", func() registry.Game {
		return New()
	})
	registry.Register("threefind_endless", func() registry.Game {
		return NewEndless()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string {
	if g.mode == ModeEndless {
		return "threefind_endless"
	}
	return "threefind"
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.mode == ModeEndless {
		return "Threefind (Endless)"
	}
	return "Threefind"
}

// Reset initializes/restarts the game.
func (g *Game) Reset(rt core.RuntimeConfig) {
	g.runtime = rt

	cfg, err := config.LoadThreeFind(configPath)
	if err != nil {
		logger.Warn("falling back to default config", "error", err)
		cfg = config.DefaultThreeFindConfig()
	}
	if difficultyPreset != "" {
		config.ApplyThreeFindPreset(&cfg, difficultyPreset)
	}
	g.cfg = cfg
	g.difficulty = config.NewDifficultyManager(cfg.Difficulty)

	g.tick = 0
	g.score = 0
	g.shufflesLeft = maxShuffles
	g.combo, g.comboTicks = 0, 0
	g.cursor = board.C(0, 0)
	g.grabbed = false
	g.idle = 0
	g.levelCleared = false
	g.levelClearTicks = 0
	g.gameOver = false
	g.won = false
	g.paused = false
	g.err = nil
	g.ctrl = nil
	g.relayout = false

	g.calculateLayout()

	g.clock = &controller.TickClock{}
	g.ctx = controller.NewContext(logger.With("game", g.ID()), g.clock)
	g.ctx.Debug = rt.Debug
	g.pointer = &controller.PointerTracker{}
	if g.instant {
		g.sprites = tween.NewImmediate()
	} else {
		g.sprites = tween.New()
	}

	b, err := board.New(board.Options{
		Rows:       cfg.Board.Rows,
		Cols:       cfg.Board.Cols,
		Values:     cfg.Board.Values,
		FlipChance: cfg.Board.FlipChance,
	}, rand.New(rand.NewSource(rt.Seed)))
	if err != nil {
		g.fail(err)
		return
	}
	b.Populate()
	if !b.HasMoves() {
		b.Shuffle()
	}
	g.board = b

	ctrl, err := controller.New(g.ctx, b, g.sprites, g.pointer, g.controllerConfig())
	if err != nil {
		g.fail(err)
		return
	}
	ctrl.OnMatch(g.onMatch)
	ctrl.OnSettle(g.onSettle)
	g.ctrl = ctrl

	// Apply selected start level (campaign only)
	if g.mode == ModeCampaign && selectedStartLevel > 0 && selectedStartLevel <= LevelCount() {
		g.levelIndex = selectedStartLevel - 1
		selectedStartLevel = 0 // Reset after use
	} else {
		g.levelIndex = 0
	}
	g.loadLevel()

	g.ctx.Logger.Info("game started",
		"mode", g.mode,
		"seed", rt.Seed,
		"board", fmt.Sprintf("%dx%d", cfg.Board.Rows, cfg.Board.Cols),
		"values", cfg.Board.Values)
}

// calculateLayout centers the board below the HUD and checks the screen size.
func (g *Game) calculateLayout() {
	boardW := g.cfg.Board.Cols * cellWidth
	boardH := g.cfg.Board.Rows * cellHeight

	originX := (g.runtime.ScreenW - boardW) / 2
	if originX < 1 {
		originX = 1
	}
	g.layout = controller.Layout{
		OriginX: float64(originX),
		OriginY: float64(hudHeight + 1),
		CellW:   cellWidth,
		CellH:   cellHeight,
	}

	minW := boardW + 2
	minH := hudHeight + boardH + 3 // Border plus help line
	g.tooSmall = g.runtime.ScreenW < minW || g.runtime.ScreenH < minH
}

// Resize adapts the layout to a new screen size without restarting the game.
// The board moves once it comes to rest.
func (g *Game) Resize(width, height int) {
	g.runtime.ScreenW = width
	g.runtime.ScreenH = height
	g.calculateLayout()
	if g.ctrl != nil {
		g.relayout = true
	}
}

func (g *Game) controllerConfig() controller.Config {
	a := g.cfg.Animation
	return controller.Config{
		DragThreshold:   g.cfg.Gestures.DragThreshold,
		TapMaxDuration:  config.Duration(g.cfg.Gestures.TapMaxMs),
		DragSwap:        g.cfg.Gestures.DragSwap,
		SwapDuration:    config.Duration(a.SwapMs),
		FadeOutDuration: config.Duration(a.FadeOutMs),
		FadeInDuration:  config.Duration(a.FadeInMs),
		FallDuration:    config.Duration(a.FallMs),
		MatchDelay:      config.Duration(a.MatchDelayMs),
		Layout:          g.layout,
	}
}

// loadLevel sets up the current level parameters.
func (g *Game) loadLevel() {
	g.levelStartMoves = g.movesTotal()

	if g.mode == ModeEndless {
		g.levelTarget = 0
		g.moveBudget = 0
		return
	}

	level := GetLevel(g.levelIndex)
	if level == nil {
		level = GetLevel(LevelCount() - 1)
	}
	g.levelTarget = level.Target
	g.moveBudget = g.difficulty.MoveBudget(g.cfg.Scoring.MoveBudget, g.score, int(g.tick))
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++

	if g.tooSmall || g.err != nil {
		return core.StepResult{State: g.State()}
	}

	// Handle pause
	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	// Restart is handled by the platform
	if g.gameOver || g.won {
		return core.StepResult{State: g.State()}
	}

	dt := g.runtime.TickDuration()
	g.clock.Advance(dt)
	if g.comboTicks > 0 {
		g.comboTicks--
	}

	// Handle level cleared banner
	if g.levelCleared {
		g.levelClearTicks++
		if g.levelClearTicks >= levelClearDuration {
			g.advanceLevel()
		}
		return core.StepResult{State: g.State()}
	}

	if g.relayout && g.ctrl.SetLayout(g.layout) {
		g.relayout = false
	}

	active := len(in.Pointer) > 0
	g.handlePointer(in.Pointer)
	if g.ctrl.Settled() {
		active = g.handleKeys(in) || active
	}

	g.sprites.Advance(dt)
	if err := g.ctrl.Update(); err != nil {
		g.fail(err)
		return core.StepResult{State: g.State()}
	}

	if active || !g.ctrl.Settled() {
		g.idle = 0
	} else {
		g.idle += dt
	}

	return core.StepResult{State: g.State()}
}

// handlePointer feeds mouse events to the controller and moves the cursor to
// the pressed cell.
func (g *Game) handlePointer(events []core.PointerEvent) {
	if len(events) == 0 {
		return
	}
	g.pointer.Apply(events, g.clock.Now())

	for _, ev := range events {
		if ev.Kind != core.PointerPress {
			continue
		}
		cell := g.layout.CellAt(float64(ev.X), float64(ev.Y))
		if g.board.InBounds(cell) {
			g.cursor = cell
			g.grabbed = false
		}
	}
}

// handleKeys moves the cursor or issues a move. Reports whether any key was used.
func (g *Game) handleKeys(in core.InputFrame) bool {
	var dr, dc int
	switch {
	case in.Has(core.ActionUp):
		dr = -1
	case in.Has(core.ActionDown):
		dr = 1
	case in.Has(core.ActionLeft):
		dc = -1
	case in.Has(core.ActionRight):
		dc = 1
	case in.Has(core.ActionFlip):
		g.grabbed = false
		g.ctrl.RequestFlip(g.cursor)
		return true
	case in.Has(core.ActionConfirm):
		g.grabbed = !g.grabbed
		return true
	default:
		return false
	}

	target := g.cursor.Add(dr, dc)
	if !g.board.InBounds(target) {
		return true
	}
	if g.grabbed {
		g.grabbed = false
		if g.ctrl.RequestSwap(g.cursor, target) {
			g.cursor = target
		}
		return true
	}
	g.cursor = target
	return true
}

func (g *Game) onMatch(ev controller.MatchEvent) {
	points := g.cfg.Scoring.PointsPerPiece * len(ev.Cells) * ev.Cascade
	g.score += points
	if ev.Cascade > 1 {
		g.combo = ev.Cascade
		g.comboTicks = comboDuration
	}
	g.ctx.Logger.Debug("match", "pieces", len(ev.Cells), "cascade", ev.Cascade, "points", points)
}

// onSettle runs each time the board comes to rest.
func (g *Game) onSettle() {
	g.board.SetFlipChance(g.difficulty.FlipChance(g.cfg.Board.FlipChance, g.score, int(g.tick)))

	if g.mode == ModeCampaign {
		if g.score >= g.levelTarget {
			g.levelCleared = true
			g.levelClearTicks = 0
			g.grabbed = false
			g.ctx.Logger.Info("level cleared", "level", g.levelIndex+1, "score", g.score)
			return
		}
		if g.MovesLeft() <= 0 {
			g.endGame("out of moves")
			return
		}
	}

	if g.board.HasMoves() {
		return
	}
	if g.shufflesLeft == 0 {
		g.endGame("no moves left")
		return
	}
	g.shufflesLeft--
	g.board.Shuffle()
	g.ctrl.Resync()
	g.ctx.Logger.Info("board shuffled", "shuffles_left", g.shufflesLeft)
}

// advanceLevel moves to the next level.
func (g *Game) advanceLevel() {
	g.levelCleared = false
	g.levelClearTicks = 0

	if g.levelIndex >= LevelCount()-1 {
		g.won = true
		g.ctx.Logger.Info("campaign complete", "score", g.score)
		return
	}

	g.levelIndex++
	g.loadLevel()
	// Keep current board and score - just update target and budget
}

func (g *Game) endGame(reason string) {
	g.gameOver = true
	g.ctx.Logger.Info("game over", "reason", reason, "score", g.score, "moves", g.movesTotal())
}

func (g *Game) fail(err error) {
	g.err = err
	g.gameOver = true
	logger.Error("game stopped", "game", g.ID(), "error", err)
}

// movesTotal counts committed swaps and flips over the whole session.
func (g *Game) movesTotal() int {
	if g.ctrl == nil {
		return 0
	}
	st := g.ctrl.Stats()
	return st.Swaps + st.Flips
}

// MovesLeft returns the remaining campaign moves for this level, or -1 in endless mode.
func (g *Game) MovesLeft() int {
	if g.mode == ModeEndless {
		return -1
	}
	return g.moveBudget - (g.movesTotal() - g.levelStartMoves)
}

// Settled reports whether the board is idle and accepting moves.
func (g *Game) Settled() bool {
	return g.ctrl != nil && g.ctrl.Settled() && !g.levelCleared && !g.gameOver && !g.won
}

// Hint returns a move that produces a match, if one exists.
func (g *Game) Hint() (board.Move, bool) {
	if g.board == nil {
		return board.Move{}, false
	}
	return g.board.FindMove()
}

// Play issues a move directly, bypassing input. Used by autoplay.
func (g *Game) Play(m board.Move) bool {
	if !g.Settled() {
		return false
	}
	if m.Kind == board.MoveFlip {
		return g.ctrl.RequestFlip(m.From)
	}
	return g.ctrl.RequestSwap(m.From, m.To)
}

// SessionStats reports per-session statistics for persistence.
func (g *Game) SessionStats() registry.SessionStats {
	stats := registry.SessionStats{
		Mode:     string(g.mode),
		Score:    g.score,
		Level:    g.levelIndex + 1,
		Duration: time.Duration(g.tick) * g.runtime.TickDuration(),
	}
	if g.ctx != nil {
		stats.SessionID = g.ctx.SessionID
	}
	if g.ctrl != nil {
		st := g.ctrl.Stats()
		stats.Moves = st.Swaps + st.Flips
		stats.Flips = st.Flips
		stats.Matched = st.Matched
		stats.Cascades = st.Cascades
		stats.MaxCascade = st.MaxCascade
	}
	if g.mode == ModeEndless {
		stats.Level = 0
	}
	return stats
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.score,
		GameOver: g.gameOver || g.won,
		Paused:   g.paused || g.tooSmall || g.levelCleared,
		Err:      g.err,
	}
}
