package controller

import (
	"math"

	"github.com/vovakirdan/threefind/internal/games/threefind/board"
)

// Layout maps grid cells to screen positions. A cell's position is its top-left corner.
type Layout struct {
	OriginX float64
	OriginY float64
	CellW   float64
	CellH   float64
}

// Position returns the screen position of a cell.
func (l Layout) Position(c board.Cell) (x, y float64) {
	return l.OriginX + float64(c.Col)*l.CellW, l.OriginY + float64(c.Row)*l.CellH
}

// CellAt returns the cell under a screen point. The result may be off-grid.
func (l Layout) CellAt(x, y float64) board.Cell {
	col := int(math.Floor((x - l.OriginX) / l.CellW))
	row := int(math.Floor((y - l.OriginY) / l.CellH))
	return board.C(row, col)
}
