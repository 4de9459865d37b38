package game

import (
	"time"
)

// Controller is the single serialization domain for all game state.
// A dedicated goroutine (Run) drains a queue of closures; every read
// or write of the Game happens inside one of those closures, so all
// world operations observe a total order. HTTP handlers submit with
// Exec and block until their closure has run; the auto-tick timer
// feeds UpdateState into the same loop, so a tick and a player action
// never interleave.
type Controller struct {
	game       *Game
	tickPeriod time.Duration
	onTick     func()

	submit chan execRequest
	quit   chan struct{}
	done   chan struct{}
}

type execRequest struct {
	fn   func()
	done chan struct{}
}

// NewController wraps g in a serialization domain. A positive
// tickPeriod enables auto-tick: Run drives Game.UpdateState at that
// cadence and the manual tick endpoint must be rejected (see
// AutoTick). A zero tickPeriod leaves time advancement entirely to
// explicit Tick calls.
func NewController(g *Game, tickPeriod time.Duration) *Controller {
	return &Controller{
		game:       g,
		tickPeriod: tickPeriod,
		submit:     make(chan execRequest),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// AutoTick reports whether the controller drives time itself.
func (c *Controller) AutoTick() bool {
	return c.tickPeriod > 0
}

// SetTickObserver registers a callback invoked inside the
// serialization domain right after every UpdateState tick, whether
// driven by the auto-tick timer or by a manual Tick call. Used
// to push state snapshots to websocket subscribers. Must be called
// before Run.
func (c *Controller) SetTickObserver(fn func()) {
	c.onTick = fn
}

// Run is the controller's event loop. It owns the Game: closures and
// ticks execute one at a time until Stop is called. Run in its own
// goroutine.
//
// The auto-tick uses a time.Ticker, which fires relative to the target
// cadence rather than to when the previous tick's work finished, so
// jitter under load does not accumulate into drift.
func (c *Controller) Run() {
	defer close(c.done)

	var tick <-chan time.Time
	if c.tickPeriod > 0 {
		ticker := time.NewTicker(c.tickPeriod)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case req := <-c.submit:
			req.fn()
			close(req.done)

		case <-tick:
			c.game.UpdateState(int(c.tickPeriod / time.Millisecond))
			if c.onTick != nil {
				c.onTick()
			}

		case <-c.quit:
			return
		}
	}
}

// Exec runs fn inside the serialization domain and returns once it
// has completed. Submissions from one goroutine execute in FIFO
// order. fn must not block on I/O: compute a snapshot, return, and do
// the slow work outside.
func (c *Controller) Exec(fn func()) {
	req := execRequest{fn: fn, done: make(chan struct{})}
	select {
	case c.submit <- req:
		select {
		case <-req.done:
		case <-c.done:
		}
	case <-c.quit:
	}
}

// Tick advances the world by dtMillis on the serialization domain.
// Used by the manual tick endpoint; callers must have checked
// AutoTick first.
func (c *Controller) Tick(dtMillis int) {
	c.Exec(func() {
		c.game.UpdateState(dtMillis)
		if c.onTick != nil {
			c.onTick()
		}
	})
}

// Stop terminates the event loop and waits for it to finish.
func (c *Controller) Stop() {
	close(c.quit)
	<-c.done
}
