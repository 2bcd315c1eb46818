package controller

import (
	"errors"
	"fmt"
)

// ErrLatchViolation reports a completion that arrived with no outstanding
// request, or a completion callback invoked twice.
var ErrLatchViolation = errors.New("controller: latch violation")

// Latch counts outstanding animation requests for one state.
// A state arms it with the number of requests it is about to issue, hands
// each request a one-shot callback, and may only move on once every
// callback has fired and the count is exactly zero.
type Latch struct {
	ctx     *Context
	name    string
	pending int
	armed   bool
	gen     int // bumped on every Arm
}

// NewLatch creates a disarmed latch. name is used in diagnostics.
func NewLatch(ctx *Context, name string) *Latch {
	return &Latch{ctx: ctx, name: name}
}

// Arm starts a new wait for n completions.
func (l *Latch) Arm(n int) {
	if l.armed && l.pending != 0 {
		l.violate(fmt.Sprintf("re-armed with %d still pending", l.pending))
	}
	l.pending = n
	l.armed = true
	l.gen++
}

// Callback returns a completion function for one request. fn, if non-nil,
// runs before the count drops. Calling the result twice, or after the latch
// was armed again, is a violation.
func (l *Latch) Callback(fn func()) func() {
	fired := false
	gen := l.gen
	return func() {
		if fired {
			l.violate("callback fired twice")
			return
		}
		fired = true
		if gen != l.gen {
			l.violate(fmt.Sprintf("completion from earlier wait %d arrived during wait %d", gen, l.gen))
			return
		}
		if !l.armed || l.pending <= 0 {
			l.violate("completion with nothing outstanding")
			return
		}
		if fn != nil {
			fn()
		}
		l.pending--
	}
}

// Settled reports whether the armed wait has reached exactly zero.
func (l *Latch) Settled() bool {
	return l.armed && l.pending == 0
}

// Consume disarms a settled latch. Late completions after this point are violations.
func (l *Latch) Consume() {
	l.armed = false
}

// Pending returns the number of outstanding completions.
func (l *Latch) Pending() int {
	return l.pending
}

func (l *Latch) violate(msg string) {
	err := fmt.Errorf("%w: %s latch: %s", ErrLatchViolation, l.name, msg)
	if l.ctx.Debug {
		panic(err)
	}
	l.ctx.Logger.Warn("ignoring animation completion", "latch", l.name, "error", err)
}
