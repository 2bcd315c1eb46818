// Package controller drives a match-3 board through its input, swap, match
// and refill phases. It is frame-driven: the host calls Update once per
// rendered frame, and every animation the controller starts reports back
// through a completion callback on the same goroutine.
package controller

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/vovakirdan/threefind/internal/core"
	"github.com/vovakirdan/threefind/internal/games/threefind/board"
)

// State is a phase of the board controller.
type State int

const (
	StateInput State = iota
	StateSwapping
	StateUndoSwap
	StateChecking
	StateMatching
	StateRefilling
	StateWaiting
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInput:
		return "INPUT"
	case StateSwapping:
		return "SWAPPING"
	case StateUndoSwap:
		return "UNDOSWAP"
	case StateChecking:
		return "CHECKING"
	case StateMatching:
		return "MATCHING"
	case StateRefilling:
		return "REFILLING"
	case StateWaiting:
		return "WAITING"
	default:
		return "UNKNOWN"
	}
}

var (
	// ErrDesync reports that the board no longer agrees with the controller's view of it.
	ErrDesync = errors.New("controller: board out of sync")
	// ErrMissingSprite reports a piece that has no sprite attached.
	ErrMissingSprite = errors.New("controller: piece has no sprite")
)

// Sprite is an opaque renderer handle for one piece's display object.
type Sprite int

// BoardModel is the grid the controller plays on.
type BoardModel interface {
	Rows() int
	Cols() int
	Get(c board.Cell) *board.Piece
	Swap(a, b board.Cell) error
	Flip(c board.Cell) error
	MatchInBoard() bool
	MatchList() []board.Cell
	RemoveMatches() []*board.Piece
	Replenish() []board.Drop
	Validate() error
}

// Renderer positions and fades piece sprites. Tween and Fade must invoke
// onComplete exactly once, on the goroutine that calls Update.
type Renderer interface {
	Acquire(p *board.Piece) Sprite
	Release(s Sprite)
	Place(s Sprite, x, y float64)
	SetAlpha(s Sprite, alpha float64)
	Tween(s Sprite, x, y float64, d time.Duration, onComplete func())
	Fade(s Sprite, alpha float64, d time.Duration, onComplete func())
}

// Config holds gesture thresholds, animation timings and the board layout.
type Config struct {
	DragThreshold  float64       // Movement that turns a press into a drag
	TapMaxDuration time.Duration // Longest press still treated as a tap
	DragSwap       float64       // Release distance that commits a swap

	SwapDuration    time.Duration
	FadeOutDuration time.Duration
	FadeInDuration  time.Duration
	FallDuration    time.Duration // Per row fallen
	MatchDelay      time.Duration // WAITING pause between CHECKING and MATCHING

	Layout Layout
}

// DefaultConfig returns timings tuned for a 60 fps terminal with 4x2 cells.
func DefaultConfig() Config {
	return Config{
		DragThreshold:   1,
		TapMaxDuration:  300 * time.Millisecond,
		DragSwap:        2,
		SwapDuration:    150 * time.Millisecond,
		FadeOutDuration: 200 * time.Millisecond,
		FadeInDuration:  200 * time.Millisecond,
		FallDuration:    60 * time.Millisecond,
		MatchDelay:      100 * time.Millisecond,
		Layout:          Layout{CellW: 4, CellH: 2},
	}
}

// MatchEvent describes one MATCHING phase.
type MatchEvent struct {
	Cells   []board.Cell
	Cascade int // 1 for the match caused by the player, 2+ for cascades
}

// Stats accumulates per-session counters.
type Stats struct {
	Swaps      int // Swaps that produced a match
	Undos      int // Swaps reversed because nothing matched
	Flips      int
	Matched    int // Pieces removed
	Cascades   int // MATCHING phases entered
	MaxCascade int // Deepest cascade chain
}

// Controller is the match-3 board state machine.
type Controller struct {
	ctx    *Context
	board  BoardModel
	render Renderer
	input  InputSource
	cfg    Config

	state    State
	newState bool

	sprites map[int]Sprite
	latch   *Latch

	seenPresses int
	holding     bool
	dragging    bool
	held        board.Cell

	from, to board.Cell

	waitUntil time.Duration
	waitNext  State

	matched []board.Cell
	cascade int
	stats   Stats

	onMatch  func(MatchEvent)
	onSettle func()
	err      error
}

// New creates a controller for a settled board and attaches a sprite to every piece.
func New(ctx *Context, b BoardModel, r Renderer, in InputSource, cfg Config) (*Controller, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("controller: %w", err)
	}
	if cfg.Layout.CellW <= 0 || cfg.Layout.CellH <= 0 {
		return nil, fmt.Errorf("controller: invalid cell size %.1fx%.1f", cfg.Layout.CellW, cfg.Layout.CellH)
	}

	c := &Controller{
		ctx:         ctx,
		board:       b,
		render:      r,
		input:       in,
		cfg:         cfg,
		state:       StateInput,
		newState:    true,
		sprites:     make(map[int]Sprite),
		latch:       NewLatch(ctx, "animation"),
		seenPresses: in.Pointer().Presses,
	}
	c.Resync()
	return c, nil
}

// OnMatch registers a hook called when a MATCHING phase starts.
func (c *Controller) OnMatch(fn func(MatchEvent)) {
	c.onMatch = fn
}

// OnSettle registers a hook called each time the controller returns to INPUT.
func (c *Controller) OnSettle(fn func()) {
	c.onSettle = fn
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Stats returns the session counters.
func (c *Controller) Stats() Stats {
	return c.stats
}

// Err returns the error that terminated the session, if any.
func (c *Controller) Err() error {
	return c.err
}

// Layout returns the active board layout.
func (c *Controller) Layout() Layout {
	return c.cfg.Layout
}

// SetLayout moves the board to a new screen position. It is ignored unless
// the controller is settled; sprites snap to the new grid.
func (c *Controller) SetLayout(l Layout) bool {
	if !c.Settled() || l.CellW <= 0 || l.CellH <= 0 {
		return false
	}
	c.cfg.Layout = l
	c.Resync()
	return true
}

// Settled reports whether the controller is idle in INPUT with no gesture in progress.
func (c *Controller) Settled() bool {
	return c.state == StateInput && !c.holding
}

// Held returns the cell under an in-progress press or drag.
func (c *Controller) Held() (board.Cell, bool) {
	return c.held, c.holding
}

// Update runs the current state once. A returned error is terminal.
func (c *Controller) Update() error {
	if c.err != nil {
		return c.err
	}

	var err error
	switch c.state {
	case StateInput:
		err = c.updateInput()
	case StateSwapping, StateUndoSwap:
		err = c.updateSwap()
	case StateChecking:
		err = c.updateChecking()
	case StateMatching:
		err = c.updateMatching()
	case StateRefilling:
		err = c.updateRefilling()
	case StateWaiting:
		c.updateWaiting()
	}

	if err != nil {
		c.fail(err)
	}
	return err
}

// RequestSwap starts a swap of two adjacent pieces without a pointer gesture.
// It is ignored unless the controller is settled.
func (c *Controller) RequestSwap(from, to board.Cell) bool {
	if !c.Settled() || !from.Adjacent(to) {
		return false
	}
	if c.board.Get(from) == nil || c.board.Get(to) == nil {
		return false
	}
	c.beginSwap(from, to)
	return true
}

// RequestFlip flips a piece without a pointer gesture.
// It is ignored unless the controller is settled.
func (c *Controller) RequestFlip(cell board.Cell) bool {
	if !c.Settled() || !c.flippable(cell) {
		return false
	}
	if err := c.flip(cell); err != nil {
		c.fail(err)
		return false
	}
	return true
}

func (c *Controller) flippable(cell board.Cell) bool {
	p := c.board.Get(cell)
	return p != nil && p.Flippable()
}

// Resync attaches sprites to pieces that lack one, releases sprites whose
// piece left the board, and snaps every sprite to its grid position.
// Only meaningful while settled, e.g. after the board was shuffled.
func (c *Controller) Resync() {
	live := make(map[int]bool)
	for r := range c.board.Rows() {
		for col := range c.board.Cols() {
			p := c.board.Get(board.C(r, col))
			if p == nil {
				continue
			}
			live[p.ID] = true
			s, ok := c.sprites[p.ID]
			if !ok {
				s = c.render.Acquire(p)
				c.sprites[p.ID] = s
			}
			x, y := c.cfg.Layout.Position(p.Cell())
			c.render.Place(s, x, y)
			c.render.SetAlpha(s, 1)
		}
	}
	for id, s := range c.sprites {
		if !live[id] {
			c.render.Release(s)
			delete(c.sprites, id)
		}
	}
}

func (c *Controller) setState(s State) {
	c.ctx.Logger.Debug("state change", "from", c.state, "to", s)
	c.state = s
	c.newState = true
	c.holding, c.dragging = false, false
	if s == StateInput {
		// Presses made while the board was busy are dropped.
		c.seenPresses = c.input.Pointer().Presses
	}
}

// entered consumes the entry edge of the current state.
func (c *Controller) entered() bool {
	if c.newState {
		c.newState = false
		return true
	}
	return false
}

func (c *Controller) fail(err error) {
	c.err = err
	c.ctx.Logger.Error("board controller stopped", "state", c.state, "error", err)
}

// INPUT

func (c *Controller) updateInput() error {
	c.entered()

	p := c.input.Pointer()
	if p.Presses != c.seenPresses {
		c.seenPresses = p.Presses
		c.beginHold(p)
	}
	if !c.holding {
		return nil
	}
	if p.IsDown {
		return c.drag(p)
	}
	return c.release(p)
}

func (c *Controller) beginHold(p Pointer) {
	cell := c.cfg.Layout.CellAt(p.DownX, p.DownY)
	c.holding = c.board.Get(cell) != nil
	c.dragging = false
	c.held = cell
}

func (c *Controller) drag(p Pointer) error {
	dx, dy := p.X-p.DownX, p.Y-p.DownY
	if !c.dragging {
		if math.Hypot(dx, dy) < c.cfg.DragThreshold {
			return nil
		}
		c.dragging = true
	}

	s, err := c.spriteAt(c.held)
	if err != nil {
		return err
	}
	ox, oy := c.dragOffset(dx, dy)
	x, y := c.cfg.Layout.Position(c.held)
	c.render.Place(s, x+ox, y+oy)
	return nil
}

// dragOffset constrains a drag to its dominant axis, one cell at most,
// and only toward a neighbour that exists.
func (c *Controller) dragOffset(dx, dy float64) (float64, float64) {
	l := c.cfg.Layout
	if core.AbsF(dx) >= core.AbsF(dy) {
		dir := core.SignF(dx)
		if dir == 0 || c.board.Get(c.held.Add(0, dir)) == nil {
			return 0, 0
		}
		return core.ClampF(dx, -l.CellW, l.CellW), 0
	}
	dir := core.SignF(dy)
	if c.board.Get(c.held.Add(dir, 0)) == nil {
		return 0, 0
	}
	return 0, core.ClampF(dy, -l.CellH, l.CellH)
}

func (c *Controller) release(p Pointer) error {
	c.holding = false
	dx, dy := p.X-p.DownX, p.Y-p.DownY

	if !c.dragging && math.Hypot(dx, dy) < c.cfg.DragThreshold {
		if p.UpTime-p.DownTime <= c.cfg.TapMaxDuration && c.flippable(c.held) {
			return c.flip(c.held)
		}
		return nil
	}
	c.dragging = false

	if to, ok := c.swapTarget(dx, dy); ok {
		c.beginSwap(c.held, to)
		return nil
	}

	s, err := c.spriteAt(c.held)
	if err != nil {
		return err
	}
	x, y := c.cfg.Layout.Position(c.held)
	c.render.Place(s, x, y)
	return nil
}

// swapTarget turns a released drag into a unit step along one axis.
func (c *Controller) swapTarget(dx, dy float64) (board.Cell, bool) {
	var to board.Cell
	if core.AbsF(dx) >= core.AbsF(dy) {
		if core.AbsF(dx) < c.cfg.DragSwap {
			return to, false
		}
		to = c.held.Add(0, core.SignF(dx))
	} else {
		if core.AbsF(dy) < c.cfg.DragSwap {
			return to, false
		}
		to = c.held.Add(core.SignF(dy), 0)
	}
	return to, c.board.Get(to) != nil
}

func (c *Controller) flip(cell board.Cell) error {
	if err := c.board.Flip(cell); err != nil {
		return fmt.Errorf("controller: flip %v: %w", cell, err)
	}
	c.stats.Flips++
	c.ctx.Logger.Debug("flip", "cell", cell)
	c.setState(StateChecking)
	return nil
}

func (c *Controller) beginSwap(from, to board.Cell) {
	c.from, c.to = from, to
	c.ctx.Logger.Debug("swap requested", "from", from, "to", to)
	c.setState(StateSwapping)
}

// SWAPPING / UNDOSWAP

func (c *Controller) updateSwap() error {
	if c.entered() {
		if err := c.board.Swap(c.from, c.to); err != nil {
			return fmt.Errorf("controller: swap %v <-> %v: %w", c.from, c.to, err)
		}
		moved, err := c.spriteAt(c.to)
		if err != nil {
			return err
		}
		other, err := c.spriteAt(c.from)
		if err != nil {
			return err
		}

		c.latch.Arm(2)
		x, y := c.cfg.Layout.Position(c.to)
		c.render.Tween(moved, x, y, c.cfg.SwapDuration, c.latch.Callback(nil))
		x, y = c.cfg.Layout.Position(c.from)
		c.render.Tween(other, x, y, c.cfg.SwapDuration, c.latch.Callback(nil))
	}

	if !c.latch.Settled() {
		return nil
	}
	c.latch.Consume()

	if c.state == StateUndoSwap {
		c.stats.Undos++
		c.setState(StateChecking)
		return nil
	}
	if c.board.MatchInBoard() {
		c.stats.Swaps++
		c.setState(StateChecking)
		return nil
	}
	c.from, c.to = c.to, c.from
	c.setState(StateUndoSwap)
	return nil
}

// CHECKING

func (c *Controller) updateChecking() error {
	c.entered()

	if c.board.MatchInBoard() {
		c.wait(c.cfg.MatchDelay, StateMatching)
		return nil
	}
	if err := c.board.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrDesync, err)
	}

	if c.cascade > 1 {
		c.ctx.Logger.Debug("cascade finished", "depth", c.cascade)
	}
	c.cascade = 0
	c.setState(StateInput)
	if c.onSettle != nil {
		c.onSettle()
	}
	return nil
}

// MATCHING

func (c *Controller) updateMatching() error {
	if c.entered() {
		c.matched = c.board.MatchList()
		if len(c.matched) == 0 {
			return fmt.Errorf("%w: match reported but match list is empty", ErrDesync)
		}

		sprites := make([]Sprite, len(c.matched))
		ids := make([]int, len(c.matched))
		for i, cell := range c.matched {
			s, err := c.spriteAt(cell)
			if err != nil {
				return err
			}
			sprites[i] = s
			ids[i] = c.board.Get(cell).ID
		}

		c.cascade++
		c.stats.Cascades++
		if c.cascade > c.stats.MaxCascade {
			c.stats.MaxCascade = c.cascade
		}

		c.latch.Arm(len(c.matched))
		for i := range c.matched {
			s, id := sprites[i], ids[i]
			c.render.Fade(s, 0, c.cfg.FadeOutDuration, c.latch.Callback(func() {
				c.render.Release(s)
				delete(c.sprites, id)
			}))
		}

		if c.onMatch != nil {
			c.onMatch(MatchEvent{
				Cells:   append([]board.Cell(nil), c.matched...),
				Cascade: c.cascade,
			})
		}
	}

	if !c.latch.Settled() {
		return nil
	}
	c.latch.Consume()

	removed := c.board.RemoveMatches()
	if len(removed) != len(c.matched) {
		return fmt.Errorf("%w: faded %d pieces, board removed %d", ErrDesync, len(c.matched), len(removed))
	}
	c.stats.Matched += len(removed)
	c.matched = nil
	c.setState(StateRefilling)
	return nil
}

// REFILLING

func (c *Controller) updateRefilling() error {
	if c.entered() {
		drops := c.board.Replenish()

		pending := 0
		for _, d := range drops {
			if d.Spawned {
				pending += 2
				continue
			}
			if _, err := c.spriteOf(d.Piece); err != nil {
				return err
			}
			pending++
		}

		c.latch.Arm(pending)
		for _, d := range drops {
			x, y := c.cfg.Layout.Position(d.To)
			fall := c.cfg.FallDuration * time.Duration(d.To.Row-d.From.Row)

			if !d.Spawned {
				c.render.Tween(c.sprites[d.Piece.ID], x, y, fall, c.latch.Callback(nil))
				continue
			}

			s := c.render.Acquire(d.Piece)
			c.sprites[d.Piece.ID] = s
			fx, fy := c.cfg.Layout.Position(d.From)
			c.render.Place(s, fx, fy)
			c.render.SetAlpha(s, 0)
			c.render.Tween(s, x, y, fall, c.latch.Callback(nil))
			c.render.Fade(s, 1, c.cfg.FadeInDuration, c.latch.Callback(nil))
		}
	}

	if !c.latch.Settled() {
		return nil
	}
	c.latch.Consume()
	c.setState(StateChecking)
	return nil
}

// WAITING

func (c *Controller) wait(d time.Duration, next State) {
	if d <= 0 {
		c.setState(next)
		return
	}
	c.waitUntil = c.ctx.Clock.Now() + d
	c.waitNext = next
	c.setState(StateWaiting)
}

func (c *Controller) updateWaiting() {
	c.entered()
	if c.ctx.Clock.Now() >= c.waitUntil {
		c.setState(c.waitNext)
	}
}

func (c *Controller) spriteAt(cell board.Cell) (Sprite, error) {
	p := c.board.Get(cell)
	if p == nil {
		return 0, fmt.Errorf("%w: no piece at %v", ErrDesync, cell)
	}
	return c.spriteOf(p)
}

func (c *Controller) spriteOf(p *board.Piece) (Sprite, error) {
	s, ok := c.sprites[p.ID]
	if !ok {
		return 0, fmt.Errorf("%w: piece %d at %v", ErrMissingSprite, p.ID, p.Cell())
	}
	return s, nil
}
