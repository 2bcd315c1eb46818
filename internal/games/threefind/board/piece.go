// Package board implements the match-3 grid model used by threefind.
// Pieces carry one or two faces; only the visible face takes part in matches.
// This package is UI-agnostic and deterministic for a given RNG seed.
package board

import "fmt"

// Cell is a grid coordinate. Row grows downward, Col grows to the right.
type Cell struct {
	Row int
	Col int
}

// C is a convenience constructor for Cell.
func C(row, col int) Cell {
	return Cell{Row: row, Col: col}
}

// Add returns the cell offset by (dr, dc).
func (c Cell) Add(dr, dc int) Cell {
	return Cell{Row: c.Row + dr, Col: c.Col + dc}
}

// Adjacent reports whether two cells share an edge.
func (c Cell) Adjacent(o Cell) bool {
	dr := c.Row - o.Row
	dc := c.Col - o.Col
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr+dc == 1
}

// String returns a string representation of the cell.
func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Piece is a single matchable grid occupant.
type Piece struct {
	ID      int   // Unique per board, never reused
	Row     int   // Current grid row
	Col     int   // Current grid column
	Faces   []int // One face, or two for flippable pieces
	TopSide int   // Index into Faces of the visible face
}

// Value returns the currently visible face.
func (p *Piece) Value() int {
	return p.Faces[p.TopSide]
}

// Under returns the hidden face, or the visible one for single-faced pieces.
func (p *Piece) Under() int {
	if len(p.Faces) < 2 {
		return p.Faces[0]
	}
	return p.Faces[1-p.TopSide]
}

// Flippable reports whether the piece has two faces.
func (p *Piece) Flippable() bool {
	return len(p.Faces) == 2
}

// Flip toggles the visible face. Single-faced pieces are unchanged.
func (p *Piece) Flip() {
	if !p.Flippable() {
		return
	}
	p.TopSide = 1 - p.TopSide
}

// Cell returns the piece's grid position.
func (p *Piece) Cell() Cell {
	return Cell{Row: p.Row, Col: p.Col}
}

// Drop describes one piece relocation produced by Replenish.
// Spawned pieces start above the board, so From.Row is negative for them.
type Drop struct {
	Piece   *Piece
	From    Cell
	To      Cell
	Spawned bool
}
