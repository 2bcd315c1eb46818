package controller

import (
	"time"

	"github.com/vovakirdan/threefind/internal/core"
)

// Pointer is the current pointer state as seen by the controller.
// Coordinates are in screen units; times come from the session Clock.
type Pointer struct {
	IsDown   bool
	DownX    float64
	DownY    float64
	X        float64
	Y        float64
	DownTime time.Duration
	UpTime   time.Duration

	// Presses counts press events, so a press and release that both land
	// between two ticks are still seen as a gesture.
	Presses int
}

// InputSource supplies pointer state to the controller.
type InputSource interface {
	Pointer() Pointer
}

// PointerTracker folds platform pointer events into a Pointer.
type PointerTracker struct {
	p Pointer
}

// Pointer returns the tracked pointer state.
func (t *PointerTracker) Pointer() Pointer {
	return t.p
}

// Apply records a batch of events at simulation time now.
func (t *PointerTracker) Apply(events []core.PointerEvent, now time.Duration) {
	for _, ev := range events {
		x, y := float64(ev.X), float64(ev.Y)
		switch ev.Kind {
		case core.PointerPress:
			t.p.IsDown = true
			t.p.DownX, t.p.DownY = x, y
			t.p.X, t.p.Y = x, y
			t.p.DownTime = now
			t.p.Presses++
		case core.PointerMove:
			t.p.X, t.p.Y = x, y
		case core.PointerRelease:
			if !t.p.IsDown {
				continue
			}
			t.p.IsDown = false
			t.p.X, t.p.Y = x, y
			t.p.UpTime = now
		}
	}
}

// Reset forgets any in-progress gesture.
func (t *PointerTracker) Reset() {
	t.p = Pointer{Presses: t.p.Presses}
}
