package controller

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/threefind/internal/games/threefind/board"
)

const (
	A = 0
	B = 1
	C = 2
	D = 3
)

func TestNewPlacesEverySprite(t *testing.T) {
	h := newHarness(t, newRecordingBoard([][][]int{
		{f(A), f(B), f(C)},
		{f(B), nil, f(A)},
	}), testConfig())

	assert.Equal(t, StateInput, h.ctrl.State())
	assert.Equal(t, 5, h.render.live())

	s := h.render.spriteOfPiece(h.board.Get(board.C(1, 2)))
	require.NotNil(t, s)
	assert.Equal(t, 20.0, s.x)
	assert.Equal(t, 10.0, s.y)
	assert.Equal(t, 1.0, s.alpha)
}

func TestNewRejectsBadLayout(t *testing.T) {
	cfg := testConfig()
	cfg.Layout.CellW = 0
	_, err := New(NewContext(nil, nil), newRecordingBoard([][][]int{{f(A), f(B), f(C)}}), &fakeRenderer{}, &PointerTracker{}, cfg)
	assert.Error(t, err)
}

func TestScenarioA(t *testing.T) {
	t.Run("drag onto a completing neighbour matches", func(t *testing.T) {
		h := newHarness(t, newRecordingBoard([][][]int{
			{f(A), f(A), f(B, A), f(A)},
		}), testConfig())

		h.press(25, 5)
		h.tick()
		h.move(33, 5)
		h.tick()

		dragged := h.render.spriteOfPiece(h.board.Get(board.C(0, 2)))
		require.NotNil(t, dragged)
		assert.Equal(t, 28.0, dragged.x, "sprite should follow the pointer")

		h.release(33, 5)
		h.tick()
		require.Equal(t, StateSwapping, h.ctrl.State())

		var states []State
		for !h.ctrl.Settled() {
			h.tick()
			states = append(states, h.ctrl.State())
		}
		assert.Equal(t, []State{StateChecking, StateMatching, StateRefilling, StateChecking, StateInput}, states)
		assert.Equal(t, 1, h.ctrl.Stats().Swaps)
		assert.Equal(t, 3, h.ctrl.Stats().Matched)
	})

	t.Run("hidden face does not match until flipped", func(t *testing.T) {
		h := newHarness(t, newRecordingBoard([][][]int{
			{f(A), f(A), f(B, A)},
		}), testConfig())

		// Drag column 2 onto column 1: [A, B, A] has no run.
		h.press(25, 5)
		h.tick()
		h.move(17, 5)
		h.tick()
		h.release(17, 5)
		h.tick()
		h.settle()

		assert.Equal(t, 1, h.ctrl.Stats().Undos)
		assert.Equal(t, []int{A, A, B}, h.board.Snapshot()[0])

		// Tapping shows the under face and completes the row.
		h.tap(25, 5)
		assert.Equal(t, StateChecking, h.ctrl.State())
		h.tick()
		assert.Equal(t, StateMatching, h.ctrl.State())
		h.settle()
		assert.Equal(t, 3, h.ctrl.Stats().Matched)
	})
}

func TestScenarioBDragClampsAtEdge(t *testing.T) {
	h := newHarness(t, newRecordingBoard([][][]int{
		{f(A), f(B), f(C)},
	}), testConfig())
	edge := h.render.spriteOfPiece(h.board.Get(board.C(0, 2)))

	h.press(25, 5)
	h.tick()
	h.move(40, 5)
	h.tick()
	assert.Equal(t, 20.0, edge.x, "no neighbour to the right, drag is suppressed")

	h.move(25, 30)
	h.tick()
	assert.Equal(t, 20.0, edge.x)
	assert.Equal(t, 0.0, edge.y, "no neighbour below on a single row")

	h.release(40, 5)
	h.tick()
	assert.Equal(t, StateInput, h.ctrl.State())
	assert.Zero(t, h.board.count("swap (0,2) (0,3)"))
	assert.Empty(t, h.board.calls)
	assert.Equal(t, 20.0, edge.x)
}

func TestDragClampsToOneCell(t *testing.T) {
	h := newHarness(t, newRecordingBoard([][][]int{
		{f(A), f(B), f(C)},
	}), testConfig())
	first := h.render.spriteOfPiece(h.board.Get(board.C(0, 0)))

	h.press(5, 5)
	h.tick()
	h.move(30, 7)
	h.tick()
	assert.Equal(t, 10.0, first.x)
	assert.Equal(t, 0.0, first.y, "drag is constrained to the dominant axis")

	// Releasing close to the origin snaps back without a swap.
	h.release(7, 5)
	h.tick()
	assert.Equal(t, 0.0, first.x)
	assert.Empty(t, h.board.calls)
	assert.True(t, h.ctrl.Settled())
}

func TestScenarioCUndoSwap(t *testing.T) {
	h := newHarness(t, newRecordingBoard([][][]int{
		{f(A), f(B), f(C)},
		{f(C), f(A), f(B)},
	}), testConfig())
	before := h.board.Identity()

	require.True(t, h.ctrl.RequestSwap(board.C(0, 0), board.C(0, 1)))
	h.settle()

	assert.Equal(t, []string{
		"swap (0,0) (0,1)",
		"match false",
		"swap (0,1) (0,0)",
		"match false",
	}, h.board.calls)
	assert.Equal(t, before, h.board.Identity())
	assert.Equal(t, StateInput, h.ctrl.State())
	assert.Equal(t, Stats{Undos: 1}, h.ctrl.Stats())

	for _, p := range h.board.Pieces() {
		s := h.render.spriteOfPiece(p)
		x, y := h.ctrl.Layout().Position(p.Cell())
		assert.Equal(t, x, s.x, "piece %d", p.ID)
		assert.Equal(t, y, s.y, "piece %d", p.ID)
	}
}

func TestScenarioDExactThreeMatch(t *testing.T) {
	h := newHarness(t, newRecordingBoard([][][]int{
		{f(A), f(B), f(A), f(A), f(C)},
	}), testConfig())
	h.render.deferred = true

	var events []MatchEvent
	h.ctrl.OnMatch(func(ev MatchEvent) { events = append(events, ev) })

	require.True(t, h.ctrl.RequestSwap(board.C(0, 0), board.C(0, 1)))
	h.tick()
	assert.False(t, h.ctrl.RequestSwap(board.C(0, 3), board.C(0, 4)), "busy controller ignores requests")
	assert.Len(t, h.render.queue, 2)
	h.render.flush()

	h.tick() // swap settles into CHECKING
	h.tick() // CHECKING finds the match
	h.tick() // MATCHING starts the fades
	require.Equal(t, StateMatching, h.ctrl.State())
	require.Len(t, h.render.queue, 3)
	require.Len(t, events, 1)
	assert.Len(t, events[0].Cells, 3)
	assert.Equal(t, 1, events[0].Cascade)

	h.render.fire(2)
	h.tick()
	assert.Zero(t, h.board.count("remove"), "removal must wait for every fade")

	h.render.fire(1)
	h.tick()
	assert.Equal(t, 1, h.board.count("remove"))
	assert.Equal(t, StateRefilling, h.ctrl.State())

	h.tick()
	assert.Equal(t, 1, h.board.count("replenish"))
	assert.Len(t, h.render.queue, 6, "each spawned piece falls and fades in")
	h.render.flush()

	h.tick()
	assert.Equal(t, StateChecking, h.ctrl.State())
	h.tick()
	assert.Equal(t, StateInput, h.ctrl.State())

	assert.Equal(t, []string{
		"swap (0,0) (0,1)",
		"match true",
		"match true",
		"matchlist 3",
		"remove",
		"replenish",
		"match false",
	}, h.board.calls)

	assert.Equal(t, 5, h.render.live())
	for _, p := range h.board.Pieces() {
		s := h.render.spriteOfPiece(p)
		require.NotNil(t, s, "piece %d has no sprite", p.ID)
		assert.Equal(t, 1.0, s.alpha)
		assert.Equal(t, float64(p.Col)*10, s.x)
	}
}

func TestTapFlipIsTwoCycle(t *testing.T) {
	h := newHarness(t, newRecordingBoard([][][]int{
		{f(A), f(B, C), f(A)},
	}), testConfig())
	p := h.board.Get(board.C(0, 1))

	h.tap(15, 5)
	h.settle()
	assert.Equal(t, 1, p.TopSide)
	assert.Equal(t, C, p.Value())

	h.tap(15, 5)
	h.settle()
	assert.Equal(t, 0, p.TopSide)
	assert.Equal(t, B, p.Value())
	assert.Equal(t, 2, h.ctrl.Stats().Flips)
	assert.Equal(t, 2, h.board.count("flip (0,1)"))
}

func TestLongPressDoesNotFlip(t *testing.T) {
	h := newHarness(t, newRecordingBoard([][][]int{
		{f(A), f(B, C), f(A)},
	}), testConfig())

	h.press(15, 5)
	for range 30 {
		h.tick()
	}
	h.release(15, 5)
	h.tick()

	assert.Zero(t, h.ctrl.Stats().Flips)
	assert.Equal(t, B, h.board.Get(board.C(0, 1)).Value())
}

func TestPressAndReleaseWithinOneFrame(t *testing.T) {
	h := newHarness(t, newRecordingBoard([][][]int{
		{f(A), f(B, C), f(A)},
	}), testConfig())

	h.press(15, 5)
	h.release(15, 5)
	h.tick()

	assert.Equal(t, StateChecking, h.ctrl.State())
	assert.Equal(t, 1, h.ctrl.Stats().Flips)
}

func TestTapOnSingleFacedPieceIsNotAMove(t *testing.T) {
	h := newHarness(t, newRecordingBoard([][][]int{
		{f(A), f(B, C), f(A)},
	}), testConfig())

	h.tap(5, 5)
	assert.Empty(t, h.board.calls)
	assert.Zero(t, h.ctrl.Stats().Flips)
	assert.True(t, h.ctrl.Settled())

	assert.False(t, h.ctrl.RequestFlip(board.C(0, 2)))
	assert.Empty(t, h.board.calls)
	assert.Equal(t, StateInput, h.ctrl.State())
}

func TestInputDuringAnimationIsDropped(t *testing.T) {
	faces := [][][]int{
		{f(A), f(B), f(C)},
		{f(C), f(B, A), f(B)},
	}

	t.Run("tap while swapping", func(t *testing.T) {
		h := newHarness(t, newRecordingBoard(faces), testConfig())
		h.render.deferred = true

		require.True(t, h.ctrl.RequestSwap(board.C(0, 0), board.C(0, 1)))
		h.tick()
		require.Equal(t, StateSwapping, h.ctrl.State())
		h.tap(15, 15)

		h.render.deferred = false
		h.render.flush()
		h.settle()
		h.tick()

		assert.Zero(t, h.board.count("flip (1,1)"))
		assert.Zero(t, h.ctrl.Stats().Flips)
		assert.Equal(t, 1, h.ctrl.Stats().Undos)
		assert.True(t, h.ctrl.Settled())
	})

	t.Run("press held across the animation", func(t *testing.T) {
		h := newHarness(t, newRecordingBoard(faces), testConfig())

		require.True(t, h.ctrl.RequestSwap(board.C(0, 0), board.C(0, 1)))
		h.tick()
		h.press(15, 15)
		h.settle()
		h.release(15, 15)
		h.tick()

		assert.Zero(t, h.ctrl.Stats().Flips)
		assert.True(t, h.ctrl.Settled())

		// A fresh tap after settling still works.
		h.tap(15, 15)
		assert.Equal(t, 1, h.ctrl.Stats().Flips)
	})
}

func TestPressOutsideBoardIsIgnored(t *testing.T) {
	h := newHarness(t, newRecordingBoard([][][]int{
		{f(A), f(B, C), f(A)},
	}), testConfig())

	h.tap(45, 5)
	h.tap(-3, 5)
	assert.Empty(t, h.board.calls)
	assert.True(t, h.ctrl.Settled())
}

func TestAtRestAndUndoIdentity(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		inner, err := board.New(board.Options{Rows: 6, Cols: 6, Values: 4, FlipChance: 0.3}, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		inner.Populate()
		h := newHarness(t, &recordingBoard{Board: inner}, testConfig())

		for r := range 6 {
			for c := range 5 {
				before := inner.Identity()
				undos := h.ctrl.Stats().Undos

				require.True(t, h.ctrl.RequestSwap(board.C(r, c), board.C(r, c+1)))
				h.settle()

				require.False(t, inner.MatchInBoard(), "seed %d: match left at rest", seed)
				require.NoError(t, inner.Validate())
				if h.ctrl.Stats().Undos > undos {
					require.Equal(t, before, inner.Identity(), "seed %d: undo changed the board", seed)
				}
				require.Equal(t, len(inner.Pieces()), h.render.live(), "seed %d: sprite leak", seed)
			}
		}
	}
}

func TestCascadeTerminates(t *testing.T) {
	h := newHarness(t, newRecordingBoard([][][]int{
		{f(A), f(B), f(A), f(A), f(C)},
	}), testConfig())
	h.board.biasCascades = 5

	var depths []int
	h.ctrl.OnMatch(func(ev MatchEvent) { depths = append(depths, ev.Cascade) })
	settled := 0
	h.ctrl.OnSettle(func() { settled++ })

	require.True(t, h.ctrl.RequestSwap(board.C(0, 0), board.C(0, 1)))
	h.settle()

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, depths)
	assert.Equal(t, 1, settled)
	st := h.ctrl.Stats()
	assert.Equal(t, 6, st.Cascades)
	assert.Equal(t, 6, st.MaxCascade)
	assert.Equal(t, 18, st.Matched)
	assert.False(t, h.board.Board.MatchInBoard())
	assert.Zero(t, h.ctrl.cascade, "chain depth resets once settled")
}

func TestMatchDelayWaits(t *testing.T) {
	cfg := testConfig()
	cfg.MatchDelay = 100 * time.Millisecond
	h := newHarness(t, newRecordingBoard([][][]int{
		{f(A), f(B), f(A), f(A), f(C)},
	}), cfg)

	require.True(t, h.ctrl.RequestSwap(board.C(0, 0), board.C(0, 1)))
	h.tick()
	h.tick()
	require.Equal(t, StateWaiting, h.ctrl.State())

	waited := 0
	for h.ctrl.State() == StateWaiting {
		h.tick()
		waited++
	}
	assert.Equal(t, StateMatching, h.ctrl.State())
	assert.Equal(t, 7, waited, "100ms at 16ms per frame")
}

func TestRequestSwapValidation(t *testing.T) {
	h := newHarness(t, newRecordingBoard([][][]int{
		{f(A), f(B), f(C)},
		{f(B), nil, f(A)},
	}), testConfig())

	assert.False(t, h.ctrl.RequestSwap(board.C(0, 0), board.C(0, 2)), "not adjacent")
	assert.False(t, h.ctrl.RequestSwap(board.C(0, 0), board.C(1, 1)), "diagonal")
	assert.False(t, h.ctrl.RequestSwap(board.C(0, 1), board.C(1, 1)), "empty target")
	assert.False(t, h.ctrl.RequestSwap(board.C(0, 2), board.C(0, 3)), "off grid")
	assert.False(t, h.ctrl.RequestFlip(board.C(1, 1)), "empty cell")
	assert.Empty(t, h.board.calls)
}

func TestMissingSpriteStopsSession(t *testing.T) {
	h := newHarness(t, newRecordingBoard([][][]int{
		{f(A), f(B), f(C)},
	}), testConfig())
	delete(h.ctrl.sprites, h.board.Get(board.C(0, 0)).ID)

	require.True(t, h.ctrl.RequestSwap(board.C(0, 0), board.C(0, 1)))
	err := h.ctrl.Update()
	require.ErrorIs(t, err, ErrMissingSprite)
	assert.ErrorIs(t, h.ctrl.Update(), ErrMissingSprite, "error is sticky")
	assert.ErrorIs(t, h.ctrl.Err(), ErrMissingSprite)
}

func TestRemoveCountMismatchIsDesync(t *testing.T) {
	h := newHarness(t, newRecordingBoard([][][]int{
		{f(A), f(B), f(A), f(A), f(C)},
	}), testConfig())
	h.board.shortRemove = true

	require.True(t, h.ctrl.RequestSwap(board.C(0, 0), board.C(0, 1)))
	var err error
	for range 10 {
		if err = h.ctrl.Update(); err != nil {
			break
		}
	}
	assert.ErrorIs(t, err, ErrDesync)
}

func TestResyncAfterShuffle(t *testing.T) {
	inner, err := board.New(board.Options{Rows: 4, Cols: 4, Values: 4}, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	inner.Populate()
	h := newHarness(t, &recordingBoard{Board: inner}, testConfig())

	inner.Shuffle()
	h.ctrl.Resync()

	assert.Equal(t, 16, h.render.live())
	for _, p := range inner.Pieces() {
		s := h.render.spriteOfPiece(p)
		require.NotNil(t, s)
		x, y := h.ctrl.Layout().Position(p.Cell())
		assert.Equal(t, x, s.x)
		assert.Equal(t, y, s.y)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "UNDOSWAP", StateUndoSwap.String())
	assert.Equal(t, "WAITING", StateWaiting.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
}
