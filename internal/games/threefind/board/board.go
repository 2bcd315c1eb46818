package board

import (
	"errors"
	"fmt"
	"math/rand"
)

// MinRun is the shortest run of equal visible faces that counts as a match.
const MinRun = 3

const maxShuffleAttempts = 100

var (
	// ErrOutOfBounds is returned for cells outside the grid.
	ErrOutOfBounds = errors.New("board: cell out of bounds")
	// ErrEmptyCell is returned when an operation needs a piece but the cell is empty.
	ErrEmptyCell = errors.New("board: cell is empty")
)

// Options configures a generated board.
type Options struct {
	Rows       int
	Cols       int
	Values     int     // Number of distinct face values
	FlipChance float64 // Probability that a generated piece has two faces
}

// Validate checks that the options describe a playable board.
func (o Options) Validate() error {
	if o.Rows < MinRun || o.Cols < MinRun {
		return fmt.Errorf("board: %dx%d is too small, need at least %dx%d", o.Rows, o.Cols, MinRun, MinRun)
	}
	if o.Values < 3 {
		return fmt.Errorf("board: need at least 3 values, got %d", o.Values)
	}
	if o.FlipChance < 0 || o.FlipChance > 1 {
		return fmt.Errorf("board: flip chance %.2f outside [0,1]", o.FlipChance)
	}
	return nil
}

// Board is a rows x cols grid of pieces. A nil entry is an empty cell.
type Board struct {
	rows       int
	cols       int
	values     int
	flipChance float64
	grid       [][]*Piece
	rng        *rand.Rand
	nextID     int
}

// New creates an empty board. Call Populate to deal the initial pieces.
func New(opts Options, rng *rand.Rand) (*Board, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	b := &Board{
		rows:       opts.Rows,
		cols:       opts.Cols,
		values:     opts.Values,
		flipChance: opts.FlipChance,
		rng:        rng,
	}
	b.grid = make([][]*Piece, b.rows)
	for r := range b.grid {
		b.grid[r] = make([]*Piece, b.cols)
	}
	return b, nil
}

// FromFaces builds a board from explicit faces. faces[r][c] lists the
// piece's faces (visible first); nil marks an empty cell. Short rows are
// padded with empty cells to the longest row. Refills on such a board use the values seen in faces.
func FromFaces(faces [][][]int, rng *rand.Rand) *Board {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	b := &Board{
		rows: len(faces),
		rng:  rng,
	}
	for _, row := range faces {
		b.cols = max(b.cols, len(row))
	}
	maxVal := 0
	b.grid = make([][]*Piece, b.rows)
	for r := range faces {
		b.grid[r] = make([]*Piece, b.cols)
		for c, f := range faces[r] {
			if len(f) == 0 {
				continue
			}
			for _, v := range f {
				if v > maxVal {
					maxVal = v
				}
			}
			b.grid[r][c] = b.newPiece(r, c, append([]int(nil), f...))
		}
	}
	b.values = maxVal + 1
	if b.values < 3 {
		b.values = 3
	}
	return b
}

// Rows returns the number of rows.
func (b *Board) Rows() int {
	return b.rows
}

// Cols returns the number of columns.
func (b *Board) Cols() int {
	return b.cols
}

// Values returns the number of distinct face values used for generation.
func (b *Board) Values() int {
	return b.values
}

// SetFlipChance changes the probability that refilled pieces have two faces.
func (b *Board) SetFlipChance(p float64) {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	b.flipChance = p
}

// InBounds reports whether the cell lies on the grid.
func (b *Board) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < b.rows && c.Col >= 0 && c.Col < b.cols
}

// Get returns the piece at c, or nil for empty or out-of-range cells.
func (b *Board) Get(c Cell) *Piece {
	if !b.InBounds(c) {
		return nil
	}
	return b.grid[c.Row][c.Col]
}

// Pieces returns all pieces in row-major order.
func (b *Board) Pieces() []*Piece {
	out := make([]*Piece, 0, b.rows*b.cols)
	for r := range b.rows {
		for c := range b.cols {
			if p := b.grid[r][c]; p != nil {
				out = append(out, p)
			}
		}
	}
	return out
}

// Populate fills every cell with fresh pieces and no match at rest.
func (b *Board) Populate() {
	for r := range b.rows {
		for c := range b.cols {
			b.grid[r][c] = nil
		}
	}
	for r := range b.rows {
		for c := range b.cols {
			b.grid[r][c] = b.generate(r, c)
		}
	}
}

// Swap exchanges the pieces at a and b, updating their coordinates.
func (b *Board) Swap(a, c Cell) error {
	if !b.InBounds(a) || !b.InBounds(c) {
		return fmt.Errorf("%w: swap %v <-> %v", ErrOutOfBounds, a, c)
	}
	pa, pc := b.grid[a.Row][a.Col], b.grid[c.Row][c.Col]
	if pa == nil || pc == nil {
		return fmt.Errorf("%w: swap %v <-> %v", ErrEmptyCell, a, c)
	}
	b.grid[a.Row][a.Col], b.grid[c.Row][c.Col] = pc, pa
	pa.Row, pa.Col = c.Row, c.Col
	pc.Row, pc.Col = a.Row, a.Col
	return nil
}

// Flip toggles the visible face of the piece at c.
func (b *Board) Flip(c Cell) error {
	if !b.InBounds(c) {
		return fmt.Errorf("%w: flip %v", ErrOutOfBounds, c)
	}
	p := b.grid[c.Row][c.Col]
	if p == nil {
		return fmt.Errorf("%w: flip %v", ErrEmptyCell, c)
	}
	p.Flip()
	return nil
}

// MatchInBoard reports whether any run of MinRun or more exists.
func (b *Board) MatchInBoard() bool {
	for r := range b.rows {
		for c := range b.cols {
			if b.runThrough(C(r, c)) {
				return true
			}
		}
	}
	return false
}

// MatchList returns every matched cell once, in row-major order.
// Rows and columns are scanned independently.
func (b *Board) MatchList() []Cell {
	marked := make([][]bool, b.rows)
	for r := range marked {
		marked[r] = make([]bool, b.cols)
	}

	for r := range b.rows {
		b.markRuns(b.cols, func(i int) *Piece { return b.grid[r][i] }, func(i int) { marked[r][i] = true })
	}
	for c := range b.cols {
		b.markRuns(b.rows, func(i int) *Piece { return b.grid[i][c] }, func(i int) { marked[i][c] = true })
	}

	var cells []Cell
	for r := range b.rows {
		for c := range b.cols {
			if marked[r][c] {
				cells = append(cells, C(r, c))
			}
		}
	}
	return cells
}

// markRuns walks one line of length n and marks members of long-enough runs.
func (b *Board) markRuns(n int, at func(int) *Piece, mark func(int)) {
	start := 0
	for i := 1; i <= n; i++ {
		if i < n && sameFace(at(start), at(i)) {
			continue
		}
		if at(start) != nil && i-start >= MinRun {
			for j := start; j < i; j++ {
				mark(j)
			}
		}
		start = i
	}
}

// RemoveMatches clears all matched cells and returns the removed pieces.
func (b *Board) RemoveMatches() []*Piece {
	cells := b.MatchList()
	removed := make([]*Piece, 0, len(cells))
	for _, c := range cells {
		removed = append(removed, b.grid[c.Row][c.Col])
		b.grid[c.Row][c.Col] = nil
	}
	return removed
}

// Replenish lets surviving pieces fall, then spawns new pieces into the
// remaining empty cells. It returns one Drop per moved or spawned piece.
func (b *Board) Replenish() []Drop {
	var drops []Drop

	// Gravity, bottom-up per column
	for c := range b.cols {
		write := b.rows - 1
		for r := b.rows - 1; r >= 0; r-- {
			p := b.grid[r][c]
			if p == nil {
				continue
			}
			if r != write {
				b.grid[write][c] = p
				b.grid[r][c] = nil
				p.Row = write
				drops = append(drops, Drop{Piece: p, From: C(r, c), To: C(write, c)})
			}
			write--
		}
	}

	// Spawn above the board so new pieces slide in from the top
	for c := range b.cols {
		empty := 0
		for r := range b.rows {
			if b.grid[r][c] == nil {
				empty++
			}
		}
		for r := empty - 1; r >= 0; r-- {
			p := b.generate(r, c)
			b.grid[r][c] = p
			drops = append(drops, Drop{Piece: p, From: C(r-empty, c), To: C(r, c), Spawned: true})
		}
	}

	return drops
}

// MoveKind distinguishes the two player moves.
type MoveKind int

const (
	MoveSwap MoveKind = iota
	MoveFlip
)

// Move is a player move that produces a match. To is unused for flips.
type Move struct {
	Kind MoveKind
	From Cell
	To   Cell
}

// HasMoves reports whether some adjacent swap or some flip creates a match.
func (b *Board) HasMoves() bool {
	_, ok := b.FindMove()
	return ok
}

// FindMove returns the first matching move in row-major order, flips first.
// The board is left unchanged.
func (b *Board) FindMove() (Move, bool) {
	for r := range b.rows {
		for c := range b.cols {
			cell := C(r, c)
			p := b.grid[r][c]
			if p == nil {
				continue
			}
			if p.Flippable() {
				p.Flip()
				hit := b.runThrough(cell)
				p.Flip()
				if hit {
					return Move{Kind: MoveFlip, From: cell, To: cell}, true
				}
			}
			for _, n := range []Cell{cell.Add(0, 1), cell.Add(1, 0)} {
				if b.Get(n) == nil {
					continue
				}
				//nolint:errcheck // Both cells verified non-empty above
				b.Swap(cell, n)
				hit := b.runThrough(cell) || b.runThrough(n)
				//nolint:errcheck // Restores the previous swap
				b.Swap(cell, n)
				if hit {
					return Move{Kind: MoveSwap, From: cell, To: n}, true
				}
			}
		}
	}
	return Move{}, false
}

// Shuffle re-deals the existing pieces until the board is match-free and
// playable. Falls back to fresh pieces if no such deal is found, so callers
// must not assume piece identity survives a shuffle.
func (b *Board) Shuffle() {
	pieces := b.Pieces()
	for range maxShuffleAttempts {
		b.rng.Shuffle(len(pieces), func(i, j int) {
			pieces[i], pieces[j] = pieces[j], pieces[i]
		})
		i := 0
		for r := range b.rows {
			for c := range b.cols {
				if b.grid[r][c] == nil {
					continue
				}
				p := pieces[i]
				p.Row, p.Col = r, c
				b.grid[r][c] = p
				i++
			}
		}
		if !b.MatchInBoard() && b.HasMoves() {
			return
		}
	}
	for range maxShuffleAttempts {
		b.Populate()
		if b.HasMoves() {
			return
		}
	}
}

// Validate checks the grid/piece coordinate invariant.
func (b *Board) Validate() error {
	seen := make(map[*Piece]Cell)
	for r := range b.rows {
		for c := range b.cols {
			p := b.grid[r][c]
			if p == nil {
				continue
			}
			if prev, dup := seen[p]; dup {
				return fmt.Errorf("board: piece %d at both %v and %v", p.ID, prev, C(r, c))
			}
			seen[p] = C(r, c)
			if p.Row != r || p.Col != c {
				return fmt.Errorf("board: piece %d at %v reports %v", p.ID, C(r, c), p.Cell())
			}
			if p.TopSide < 0 || p.TopSide >= len(p.Faces) {
				return fmt.Errorf("board: piece %d has top side %d of %d faces", p.ID, p.TopSide, len(p.Faces))
			}
		}
	}
	return nil
}

// Snapshot returns the visible faces, with -1 for empty cells.
func (b *Board) Snapshot() [][]int {
	out := make([][]int, b.rows)
	for r := range b.rows {
		out[r] = make([]int, b.cols)
		for c := range b.cols {
			out[r][c] = -1
			if p := b.grid[r][c]; p != nil {
				out[r][c] = p.Value()
			}
		}
	}
	return out
}

// Identity returns piece IDs per cell, with 0 for empty cells.
func (b *Board) Identity() [][]int {
	out := make([][]int, b.rows)
	for r := range b.rows {
		out[r] = make([]int, b.cols)
		for c := range b.cols {
			if p := b.grid[r][c]; p != nil {
				out[r][c] = p.ID
			}
		}
	}
	return out
}

// runThrough reports whether the visible face at c is part of a run.
func (b *Board) runThrough(c Cell) bool {
	p := b.Get(c)
	if p == nil {
		return false
	}
	v := p.Value()
	return b.lineLength(c, v, 0, 1) >= MinRun || b.lineLength(c, v, 1, 0) >= MinRun
}

// lineLength counts the run of value v through c along (dr, dc), treating c as holding v.
func (b *Board) lineLength(c Cell, v, dr, dc int) int {
	n := 1
	for cur := c.Add(dr, dc); b.faceIs(cur, v); cur = cur.Add(dr, dc) {
		n++
	}
	for cur := c.Add(-dr, -dc); b.faceIs(cur, v); cur = cur.Add(-dr, -dc) {
		n++
	}
	return n
}

func (b *Board) faceIs(c Cell, v int) bool {
	p := b.Get(c)
	return p != nil && p.Value() == v
}

// generate creates a piece for (r, c) whose visible face does not complete
// a run with its current neighbours, when any such face exists.
func (b *Board) generate(r, c int) *Piece {
	cell := C(r, c)
	start := b.rng.Intn(b.values)
	visible := start
	for i := range b.values {
		v := (start + i) % b.values
		if b.lineLength(cell, v, 0, 1) < MinRun && b.lineLength(cell, v, 1, 0) < MinRun {
			visible = v
			break
		}
	}

	faces := []int{visible}
	if b.flipChance > 0 && b.rng.Float64() < b.flipChance {
		under := b.rng.Intn(b.values - 1)
		if under >= visible {
			under++
		}
		faces = append(faces, under)
	}
	return b.newPiece(r, c, faces)
}

func (b *Board) newPiece(r, c int, faces []int) *Piece {
	b.nextID++
	return &Piece{ID: b.nextID, Row: r, Col: c, Faces: faces}
}

func sameFace(a, b *Piece) bool {
	return a != nil && b != nil && a.Value() == b.Value()
}
