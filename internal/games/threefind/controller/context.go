package controller

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Clock reports the current simulation time.
type Clock interface {
	Now() time.Duration
}

// TickClock is a Clock advanced explicitly once per frame.
type TickClock struct {
	now time.Duration
}

// Now returns the accumulated simulation time.
func (c *TickClock) Now() time.Duration {
	return c.now
}

// Advance moves the clock forward by dt.
func (c *TickClock) Advance(dt time.Duration) {
	c.now += dt
}

// Context carries the per-session state shared by the controller and its
// collaborators. It is created once per game session.
type Context struct {
	SessionID string
	Logger    *log.Logger
	Clock     Clock

	// Debug turns latch violations into panics instead of logged warnings.
	Debug bool
}

// NewContext creates a session context with a fresh session ID.
// A nil logger discards output; a nil clock gets a new TickClock.
func NewContext(logger *log.Logger, clock Clock) *Context {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if clock == nil {
		clock = &TickClock{}
	}
	id := uuid.NewString()
	return &Context{
		SessionID: id,
		Logger:    logger.With("session", id[:8]),
		Clock:     clock,
	}
}
