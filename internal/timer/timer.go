// Package timer holds the focus-session state machine. Ticks are
// pushed in by the owner (the TUI's one-second pump or a test), so
// teardown just stops sending them; there is no goroutine to cancel.
package timer

import (
	"errors"
	"sync"
	"time"

	"focustui/internal/session"
)

// State of the countdown.
type State int

const (
	Idle State = iota
	Running
	Expired
)

// MinSessionMinutes is the persistence cutoff: sessions shorter than
// this are dropped instead of saved, keeping near-instant start/stops
// out of the history.
const MinSessionMinutes = 0.1

// ErrTagRequired is returned by Start when no tag is selected. It is
// guidance for the user, not a failure; the countdown stays Idle.
var ErrTagRequired = errors.New("select a tag before starting")

// Countdown runs a single focus session. In timer mode it counts down
// from the configured duration and expires at zero; in stopwatch mode
// it counts up open-ended.
type Countdown struct {
	mu          sync.RWMutex
	mode        session.Mode
	duration    time.Duration
	elapsed     time.Duration
	state       State
	tag         *session.TagRef
	lastUpdated time.Time
}

func New(mode session.Mode, duration time.Duration) *Countdown {
	return &Countdown{mode: mode, duration: duration}
}

// SetTag selects the tag for the next session. The snapshot embedded in
// a record is copied when the session finishes.
func (c *Countdown) SetTag(tag *session.TagRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tag = tag
}

func (c *Countdown) Tag() *session.TagRef {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tag
}

// Configure replaces mode and duration. It is ignored while a session
// is running or paused mid-way, so a settings change cannot yank a live
// countdown; a fresh Idle timer resets to the new duration.
func (c *Countdown) Configure(mode session.Mode, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Idle || c.elapsed != 0 {
		return
	}
	c.mode = mode
	c.duration = duration
}

// Start moves Idle -> Running. A tag must be selected first.
func (c *Countdown) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Running {
		return nil
	}
	if c.tag == nil {
		return ErrTagRequired
	}
	c.state = Running
	c.lastUpdated = time.Now()
	return nil
}

// Pause suspends the countdown without ending the session.
func (c *Countdown) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Running {
		c.state = Idle
	}
}

// Tick advances a running countdown by one second. It reports true when
// a timer-mode run just reached zero; the caller then collects the
// completed record via Finish(true).
func (c *Countdown) Tick() (expired bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Running {
		return false
	}
	c.elapsed += time.Second
	c.lastUpdated = time.Now()
	if c.mode == session.ModeTimer && c.elapsed >= c.duration {
		c.elapsed = c.duration
		c.state = Expired
		return true
	}
	return false
}

// Finish ends the session and resets the countdown to Idle. The
// returned input is ready for the store; ok is false when the session
// is too short to keep.
func (c *Countdown) Finish(completed bool) (in session.Input, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	minutes := c.elapsed.Minutes()
	in = session.Input{
		Duration:  minutes,
		Completed: completed,
		Mode:      c.mode,
	}
	if c.tag != nil {
		ref := *c.tag
		in.Tag = &ref
	}

	c.state = Idle
	c.elapsed = 0
	return in, minutes >= MinSessionMinutes
}

// Restore rebuilds countdown state from a persisted snapshot. If the
// timer was active when the snapshot was written, the wall-clock time
// that passed since lastUpdated is deducted from the time left, clamped
// at zero; a timer that ran out while away comes back Expired so the
// caller can save the completed record.
func (c *Countdown) Restore(timeLeft time.Duration, active bool, lastUpdated, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if active {
		if away := now.Sub(lastUpdated); away > 0 {
			timeLeft -= away
		}
	}
	if timeLeft < 0 {
		timeLeft = 0
	}
	if timeLeft > c.duration {
		timeLeft = c.duration
	}
	c.elapsed = c.duration - timeLeft
	c.lastUpdated = now

	switch {
	case timeLeft == 0:
		c.state = Expired
	case active:
		c.state = Running
	default:
		c.state = Idle
	}
}

func (c *Countdown) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Countdown) Mode() session.Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

func (c *Countdown) Duration() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.duration
}

// Elapsed is the focused time so far in this session.
func (c *Countdown) Elapsed() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.elapsed
}

// Remaining is the time left in timer mode, never negative. Stopwatch
// mode has no target, so it reports zero.
func (c *Countdown) Remaining() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.mode != session.ModeTimer {
		return 0
	}
	if c.elapsed >= c.duration {
		return 0
	}
	return c.duration - c.elapsed
}

// LastUpdated is the wall-clock time of the most recent state change,
// persisted alongside the time left so a restart can deduct the time
// spent away.
func (c *Countdown) LastUpdated() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdated
}
