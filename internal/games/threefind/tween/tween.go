// Package tween animates piece sprites for the board controller.
// Animations are advanced explicitly by frame time, so the engine is
// deterministic and needs no goroutines.
package tween

import (
	"sort"
	"time"

	"github.com/vovakirdan/threefind/internal/games/threefind/board"
	"github.com/vovakirdan/threefind/internal/games/threefind/controller"
)

// Sprite is the display state of one piece.
type Sprite struct {
	Piece *board.Piece
	X     float64
	Y     float64
	Alpha float64

	live bool
	move *motion
	fade *motion
}

// motion interpolates from a to b over dur.
type motion struct {
	fromX, fromY float64
	toX, toY     float64
	elapsed      time.Duration
	dur          time.Duration
	done         func()
}

func (m *motion) step(dt time.Duration) (x, y float64, finished bool) {
	m.elapsed += dt
	if m.elapsed >= m.dur {
		return m.toX, m.toY, true
	}
	t := easeOutQuad(float64(m.elapsed) / float64(m.dur))
	return m.fromX + (m.toX-m.fromX)*t, m.fromY + (m.toY-m.fromY)*t, false
}

// easeOutQuad provides smooth deceleration for animation.
func easeOutQuad(t float64) float64 {
	return t * (2 - t)
}

// Engine is a pooled sprite store that implements controller.Renderer.
type Engine struct {
	sprites   []Sprite
	free      []int
	immediate bool
}

var _ controller.Renderer = (*Engine)(nil)

// New creates an engine whose animations run over Advance calls.
func New() *Engine {
	return &Engine{}
}

// NewImmediate creates an engine that completes every animation as soon as
// it is requested. Used for headless simulation.
func NewImmediate() *Engine {
	return &Engine{immediate: true}
}

// Acquire takes a sprite from the pool and binds it to a piece.
func (e *Engine) Acquire(p *board.Piece) controller.Sprite {
	var id int
	if n := len(e.free); n > 0 {
		id = e.free[n-1]
		e.free = e.free[:n-1]
	} else {
		id = len(e.sprites)
		e.sprites = append(e.sprites, Sprite{})
	}
	e.sprites[id] = Sprite{Piece: p, Alpha: 1, live: true}
	return controller.Sprite(id)
}

// Release returns a sprite to the pool. Unfinished animations are dropped.
func (e *Engine) Release(s controller.Sprite) {
	sp := e.get(s)
	if sp == nil {
		return
	}
	*sp = Sprite{}
	e.free = append(e.free, int(s))
}

// Place moves a sprite without animating. A running tween is not cancelled.
func (e *Engine) Place(s controller.Sprite, x, y float64) {
	if sp := e.get(s); sp != nil {
		sp.X, sp.Y = x, y
	}
}

// SetAlpha sets opacity without animating.
func (e *Engine) SetAlpha(s controller.Sprite, alpha float64) {
	if sp := e.get(s); sp != nil {
		sp.Alpha = alpha
	}
}

// Tween moves a sprite to (x, y) over d and then calls onComplete.
func (e *Engine) Tween(s controller.Sprite, x, y float64, d time.Duration, onComplete func()) {
	sp := e.get(s)
	if sp == nil {
		return
	}
	if e.immediate || d <= 0 {
		sp.X, sp.Y = x, y
		sp.move = nil
		call(onComplete)
		return
	}
	sp.move = &motion{fromX: sp.X, fromY: sp.Y, toX: x, toY: y, dur: d, done: onComplete}
}

// Fade changes a sprite's opacity to alpha over d and then calls onComplete.
func (e *Engine) Fade(s controller.Sprite, alpha float64, d time.Duration, onComplete func()) {
	sp := e.get(s)
	if sp == nil {
		return
	}
	if e.immediate || d <= 0 {
		sp.Alpha = alpha
		sp.fade = nil
		call(onComplete)
		return
	}
	sp.fade = &motion{fromX: sp.Alpha, toX: alpha, dur: d, done: onComplete}
}

// Advance progresses all running animations by dt. Completion callbacks run
// after every sprite has been updated, in sprite order.
func (e *Engine) Advance(dt time.Duration) {
	var done []func()
	for i := range e.sprites {
		sp := &e.sprites[i]
		if !sp.live {
			continue
		}
		if sp.move != nil {
			x, y, finished := sp.move.step(dt)
			sp.X, sp.Y = x, y
			if finished {
				done = append(done, sp.move.done)
				sp.move = nil
			}
		}
		if sp.fade != nil {
			a, _, finished := sp.fade.step(dt)
			sp.Alpha = a
			if finished {
				done = append(done, sp.fade.done)
				sp.fade = nil
			}
		}
	}
	for _, fn := range done {
		call(fn)
	}
}

// Busy reports whether any animation is running.
func (e *Engine) Busy() bool {
	for i := range e.sprites {
		sp := &e.sprites[i]
		if sp.live && (sp.move != nil || sp.fade != nil) {
			return true
		}
	}
	return false
}

// Live returns the number of sprites currently acquired.
func (e *Engine) Live() int {
	return len(e.sprites) - len(e.free)
}

// Sprite returns the sprite for a handle, or nil if it is not live.
func (e *Engine) Sprite(s controller.Sprite) *Sprite {
	return e.get(s)
}

// Visible returns live sprites with non-zero opacity ordered by Y, then X,
// bottom row last so falling pieces draw over the ones they pass.
func (e *Engine) Visible() []*Sprite {
	var out []*Sprite
	for i := range e.sprites {
		sp := &e.sprites[i]
		if sp.live && sp.Alpha > 0 {
			out = append(out, sp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

func (e *Engine) get(s controller.Sprite) *Sprite {
	id := int(s)
	if id < 0 || id >= len(e.sprites) || !e.sprites[id].live {
		return nil
	}
	return &e.sprites[id]
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
