package threefind

import (
	"fmt"
	"math"

	"github.com/vovakirdan/threefind/internal/core"
	"github.com/vovakirdan/threefind/internal/games/threefind/board"
	"github.com/vovakirdan/threefind/internal/games/threefind/tween"
)

const (
	cellWidth  = 4 // Columns per board cell
	cellHeight = 2 // Rows per board cell
	hudHeight  = 3
)

// Glyphs per face value; colors come from core.PaletteColor.
var faceGlyphs = []rune{'●', '■', '▲', '◆', '★', '♥', '♣', '♠'}

const (
	flipMarker = '*'
	fadeGlyph  = '·'
)

// Render draws the game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.tooSmall {
		g.renderTooSmall(dst)
		return
	}
	if g.board == nil || g.ctrl == nil {
		g.renderError(dst)
		return
	}

	boardX := int(g.layout.OriginX)
	boardY := int(g.layout.OriginY)
	boardW := g.board.Cols() * cellWidth
	boardH := g.board.Rows() * cellHeight

	g.renderHUD(dst, boardX, boardW)
	dst.DrawBoxColored(core.NewRect(boardX-1, boardY-1, boardW+2, boardH+2), core.ColorGray)

	for _, sp := range g.sprites.Visible() {
		g.renderSprite(dst, sp)
	}
	g.renderCursor(dst)
	g.renderHelp(dst, boardY+boardH+1)
	g.renderOverlays(dst, boardX, boardY, boardW, boardH)
}

// renderTooSmall shows a "window too small" message.
func (g *Game) renderTooSmall(dst *core.Screen) {
	y := g.runtime.ScreenH / 2
	dst.DrawTextCentered(y, "Window too small")
	dst.DrawTextCentered(y+1, "Please resize terminal")
}

func (g *Game) renderError(dst *core.Screen) {
	y := g.runtime.ScreenH / 2
	dst.DrawTextColored(1, y, "Game stopped:", core.ColorBrightRed)
	if g.err != nil {
		dst.DrawText(1, y+1, g.err.Error())
	}
}

// renderHUD draws the score and level info.
func (g *Game) renderHUD(dst *core.Screen, boardX, boardW int) {
	title := "THREEFIND"
	dst.DrawTextColored(boardX+(boardW-len(title))/2, 0, title, core.ColorBrightCyan)

	dst.DrawText(boardX, 1, fmt.Sprintf("Score: %d", g.score))

	var info string
	if g.mode == ModeCampaign {
		info = fmt.Sprintf("Lv %d/%d  Goal %d  Moves %d", g.levelIndex+1, LevelCount(), g.levelTarget, max(g.MovesLeft(), 0))
	} else {
		info = fmt.Sprintf("Endless  Shuffles %d", g.shufflesLeft)
	}
	infoX := boardX + boardW - len([]rune(info))
	if infoX < boardX {
		infoX = boardX
	}
	dst.DrawText(infoX, 1, info)

	if g.comboTicks > 0 && g.combo > 1 {
		combo := fmt.Sprintf("Combo x%d!", g.combo)
		dst.DrawTextColored(boardX+(boardW-len(combo))/2, 2, combo, core.ColorBrightYellow)
	}
}

// renderSprite draws one piece at its animated position. Faded pieces dim
// to a gray dot before disappearing.
func (g *Game) renderSprite(dst *core.Screen, sp *tween.Sprite) {
	x := int(math.Round(sp.X))
	y := int(math.Round(sp.Y))
	p := sp.Piece

	glyph := faceGlyphs[p.Value()%len(faceGlyphs)]
	color := core.PaletteColor(p.Value())
	if sp.Alpha < 0.5 {
		glyph = fadeGlyph
		color = core.ColorGray
	}

	// Sprites falling in from above stay hidden until they reach the board
	top := int(g.layout.OriginY)
	for row := range cellHeight {
		if y+row < top {
			continue
		}
		dst.SetColored(x+1, y+row, glyph, color)
		dst.SetColored(x+2, y+row, glyph, color)
	}
	if p.Flippable() && sp.Alpha >= 0.5 && y+1 >= top {
		dst.SetColored(x+2, y+1, flipMarker, core.ColorBrightWhite)
	}
}

// renderCursor brackets the keyboard cursor, or the hint after a long idle.
func (g *Game) renderCursor(dst *core.Screen) {
	if !g.Settled() {
		return
	}

	color := core.ColorBrightWhite
	if g.grabbed {
		color = core.ColorBrightGreen
	}
	g.bracket(dst, g.cursor, '[', ']', color)

	if g.idle >= hintAfter {
		if m, ok := g.Hint(); ok {
			g.bracket(dst, m.From, '>', '<', core.ColorBrightCyan)
			if m.Kind == board.MoveSwap {
				g.bracket(dst, m.To, '>', '<', core.ColorBrightCyan)
			}
		}
	}
}

func (g *Game) bracket(dst *core.Screen, c board.Cell, left, right rune, color core.Color) {
	x, y := g.layout.Position(c)
	ix, iy := int(x), int(y)
	for row := range cellHeight {
		dst.SetColored(ix, iy+row, left, color)
		dst.SetColored(ix+cellWidth-1, iy+row, right, color)
	}
}

func (g *Game) renderHelp(dst *core.Screen, y int) {
	help := "arrows move  enter grab  space flip  mouse drag/tap  p pause  q quit"
	if len(help) > g.runtime.ScreenW {
		help = "arrows enter space  p  q"
	}
	dst.DrawTextCentered(y+1, help)
}

// renderOverlays draws level cleared, game over, win and pause banners.
func (g *Game) renderOverlays(dst *core.Screen, boardX, boardY, boardW, boardH int) {
	var lines []string
	color := core.ColorBrightWhite

	switch {
	case g.err != nil:
		lines = []string{"ERROR", g.err.Error()}
		color = core.ColorBrightRed
	case g.won:
		lines = []string{"CAMPAIGN COMPLETE", fmt.Sprintf("Final score: %d", g.score), "R to restart"}
		color = core.ColorBrightGreen
	case g.gameOver:
		reason := "No moves left"
		if g.mode == ModeCampaign && g.MovesLeft() <= 0 {
			reason = "Out of moves"
		}
		lines = []string{"GAME OVER", reason, fmt.Sprintf("Score: %d", g.score), "R to restart"}
		color = core.ColorBrightRed
	case g.levelCleared:
		name := ""
		if lvl := GetLevel(g.levelIndex); lvl != nil {
			name = lvl.Name
		}
		lines = []string{fmt.Sprintf("LEVEL %d CLEARED", g.levelIndex+1), name}
		color = core.ColorBrightYellow
	case g.paused:
		lines = []string{"PAUSED", "P to resume"}
	default:
		return
	}

	width := 0
	for _, l := range lines {
		width = max(width, len([]rune(l)))
	}
	width += 4
	height := len(lines) + 2
	x := boardX + (boardW-width)/2
	y := boardY + (boardH-height)/2

	dst.DrawRect(core.NewRect(x, y, width, height), ' ')
	dst.DrawBoxColored(core.NewRect(x, y, width, height), color)
	for i, l := range lines {
		lx := x + (width-len([]rune(l)))/2
		dst.DrawTextColored(lx, y+1+i, l, color)
	}
}
