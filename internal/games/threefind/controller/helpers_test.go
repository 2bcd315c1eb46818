package controller

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/threefind/internal/core"
	"github.com/vovakirdan/threefind/internal/games/threefind/board"
)

// f is shorthand for a cell's faces in board.FromFaces literals.
func f(v ...int) []int { return v }

// recordingBoard wraps a real board and logs every call the controller makes.
type recordingBoard struct {
	*board.Board
	calls []string

	// biasCascades forces the next n refills to spawn a run of zeros.
	biasCascades int
	// shortRemove makes RemoveMatches report one piece fewer than it removed.
	shortRemove bool
}

func newRecordingBoard(faces [][][]int) *recordingBoard {
	return &recordingBoard{Board: board.FromFaces(faces, nil)}
}

func (b *recordingBoard) Swap(x, y board.Cell) error {
	b.calls = append(b.calls, fmt.Sprintf("swap %v %v", x, y))
	return b.Board.Swap(x, y)
}

func (b *recordingBoard) Flip(c board.Cell) error {
	b.calls = append(b.calls, fmt.Sprintf("flip %v", c))
	return b.Board.Flip(c)
}

func (b *recordingBoard) MatchInBoard() bool {
	m := b.Board.MatchInBoard()
	b.calls = append(b.calls, fmt.Sprintf("match %v", m))
	return m
}

func (b *recordingBoard) MatchList() []board.Cell {
	cells := b.Board.MatchList()
	b.calls = append(b.calls, fmt.Sprintf("matchlist %d", len(cells)))
	return cells
}

func (b *recordingBoard) RemoveMatches() []*board.Piece {
	b.calls = append(b.calls, "remove")
	removed := b.Board.RemoveMatches()
	if b.shortRemove && len(removed) > 0 {
		return removed[:len(removed)-1]
	}
	return removed
}

func (b *recordingBoard) Replenish() []board.Drop {
	b.calls = append(b.calls, "replenish")
	drops := b.Board.Replenish()
	if b.biasCascades > 0 {
		b.biasCascades--
		for _, d := range drops {
			if d.Spawned {
				d.Piece.Faces = []int{0}
				d.Piece.TopSide = 0
			}
		}
	}
	return drops
}

// count returns how many logged calls equal call.
func (b *recordingBoard) count(call string) int {
	n := 0
	for _, c := range b.calls {
		if c == call {
			n++
		}
	}
	return n
}

type spriteState struct {
	piece *board.Piece
	x, y  float64
	alpha float64
	live  bool
}

// fakeRenderer completes requests synchronously unless deferred is set,
// in which case completions queue until flush.
type fakeRenderer struct {
	deferred bool
	sprites  []spriteState
	queue    []func()
	tweens   int
	fades    int
}

func (r *fakeRenderer) Acquire(p *board.Piece) Sprite {
	r.sprites = append(r.sprites, spriteState{piece: p, alpha: 1, live: true})
	return Sprite(len(r.sprites) - 1)
}

func (r *fakeRenderer) Release(s Sprite) {
	r.sprites[s].live = false
}

func (r *fakeRenderer) Place(s Sprite, x, y float64) {
	r.sprites[s].x, r.sprites[s].y = x, y
}

func (r *fakeRenderer) SetAlpha(s Sprite, alpha float64) {
	r.sprites[s].alpha = alpha
}

func (r *fakeRenderer) Tween(s Sprite, x, y float64, _ time.Duration, done func()) {
	r.tweens++
	r.sprites[s].x, r.sprites[s].y = x, y
	r.complete(done)
}

func (r *fakeRenderer) Fade(s Sprite, alpha float64, _ time.Duration, done func()) {
	r.fades++
	r.sprites[s].alpha = alpha
	r.complete(done)
}

func (r *fakeRenderer) complete(done func()) {
	if r.deferred {
		r.queue = append(r.queue, done)
		return
	}
	done()
}

// fire runs n queued completions.
func (r *fakeRenderer) fire(n int) {
	for range n {
		done := r.queue[0]
		r.queue = r.queue[1:]
		done()
	}
}

func (r *fakeRenderer) flush() {
	r.fire(len(r.queue))
}

func (r *fakeRenderer) live() int {
	n := 0
	for _, s := range r.sprites {
		if s.live {
			n++
		}
	}
	return n
}

// spriteOfPiece finds the live sprite bound to a piece.
func (r *fakeRenderer) spriteOfPiece(p *board.Piece) *spriteState {
	for i := range r.sprites {
		if r.sprites[i].live && r.sprites[i].piece == p {
			return &r.sprites[i]
		}
	}
	return nil
}

// harness bundles a controller with its fakes.
type harness struct {
	t      *testing.T
	board  *recordingBoard
	render *fakeRenderer
	input  *PointerTracker
	clock  *TickClock
	ctrl   *Controller
}

func testConfig() Config {
	return Config{
		DragThreshold:  3,
		TapMaxDuration: 300 * time.Millisecond,
		DragSwap:       5,
		Layout:         Layout{CellW: 10, CellH: 10},
	}
}

func newHarness(t *testing.T, b *recordingBoard, cfg Config) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		board:  b,
		render: &fakeRenderer{},
		input:  &PointerTracker{},
		clock:  &TickClock{},
	}
	ctx := NewContext(nil, h.clock)
	ctx.Debug = true

	ctrl, err := New(ctx, b, h.render, h.input, cfg)
	require.NoError(t, err)
	h.ctrl = ctrl
	b.calls = nil
	return h
}

// tick advances the clock by one frame and runs one Update.
func (h *harness) tick() {
	h.t.Helper()
	h.clock.Advance(16 * time.Millisecond)
	require.NoError(h.t, h.ctrl.Update())
}

// settle ticks until the controller is back in INPUT.
func (h *harness) settle() int {
	h.t.Helper()
	for i := 1; i <= 200; i++ {
		h.tick()
		if h.ctrl.Settled() {
			return i
		}
	}
	h.t.Fatalf("controller did not settle, stuck in %v", h.ctrl.State())
	return 0
}

func (h *harness) press(x, y int) {
	h.input.Apply([]core.PointerEvent{{Kind: core.PointerPress, X: x, Y: y}}, h.clock.Now())
}

func (h *harness) move(x, y int) {
	h.input.Apply([]core.PointerEvent{{Kind: core.PointerMove, X: x, Y: y}}, h.clock.Now())
}

func (h *harness) release(x, y int) {
	h.input.Apply([]core.PointerEvent{{Kind: core.PointerRelease, X: x, Y: y}}, h.clock.Now())
}

// tap presses and releases on the same point within one frame.
func (h *harness) tap(x, y int) {
	h.press(x, y)
	h.tick()
	h.release(x, y)
	h.tick()
}
