// Package clock implements the countdown clock used by both the main game and the side duel
package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/tecu23/sideduel-server/internal/color"
)

// TimeSource is where every clock reads "now" from
type TimeSource interface {
	Now() time.Time
}

// SystemTime reads the wall clock
type SystemTime struct{}

// Now returns time.Now
func (SystemTime) Now() time.Time { return time.Now() }

// Snapshot is an already-synced, point-in-time read of a clock. Clients extrapolate the
// active side as remaining - (now - LastUpdated).
type Snapshot struct {
	White       int64       `json:"white"` // White's remaining time in milliseconds
	Black       int64       `json:"black"` // Black's remaining time in milliseconds
	ActiveColor color.Color `json:"activeColor,omitempty"`
	Running     bool        `json:"running"`
	LastUpdated int64       `json:"lastUpdated"` // unix milliseconds
}

// Clock manages the countdown for both sides of one game
type Clock struct {
	whiteRemaining time.Duration
	blackRemaining time.Duration

	increment time.Duration

	active        color.Color
	lastTimestamp time.Time

	now   TimeSource
	mutex sync.Mutex
}

// NewClock creates a paused clock with the given allotments
func NewClock(white, black, increment time.Duration, now TimeSource) *Clock {
	if now == nil {
		now = SystemTime{}
	}

	return &Clock{
		whiteRemaining: max(white, 0),
		blackRemaining: max(black, 0),
		increment:      max(increment, 0),
		lastTimestamp:  now.Now(),
		now:            now,
	}
}

// Start starts the clock for the given color
func (c *Clock) Start(col color.Color) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.sync()
	c.active = col
	c.lastTimestamp = c.now.Now()
}

// Resume is Start under the name callers use after a pause
func (c *Clock) Resume(col color.Color) {
	c.Start(col)
}

// Pause stops whichever side is running
func (c *Clock) Pause() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.sync()
	c.active = color.None
}

// CompleteMove credits the increment to the mover and hands the clock to the opponent,
// unless the opponent has already flagged.
func (c *Clock) CompleteMove(moving color.Color) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.sync()

	// A side at zero has flagged; an increment must not bring it back.
	if rem := c.remainingFor(moving); rem > 0 {
		c.setRemaining(moving, rem+c.increment)
	}

	next := moving.Opp()
	if c.remainingFor(next) > 0 {
		c.active = next
		c.lastTimestamp = c.now.Now()
	} else {
		c.active = color.None
	}
}

// SetActive overrides the running side
func (c *Clock) SetActive(col color.Color) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.sync()
	c.active = col
	c.lastTimestamp = c.now.Now()
}

// SetRemaining overrides the remaining time of one side
func (c *Clock) SetRemaining(col color.Color, d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.sync()
	c.setRemaining(col, max(d, 0))
}

// Remaining returns the synced remaining time of one side
func (c *Clock) Remaining(col color.Color) time.Duration {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.sync()
	return c.remainingFor(col)
}

// Active returns the running side, or color.None when paused
func (c *Clock) Active() color.Color {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.sync()
	return c.active
}

// Flagged returns the first side (white, then black) with no time left
func (c *Clock) Flagged() color.Color {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.sync()
	if c.whiteRemaining <= 0 {
		return color.White
	}
	if c.blackRemaining <= 0 {
		return color.Black
	}
	return color.None
}

// Snapshot returns the current state of the clock
func (c *Clock) Snapshot() Snapshot {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.sync()
	return Snapshot{
		White:       c.whiteRemaining.Milliseconds(),
		Black:       c.blackRemaining.Milliseconds(),
		ActiveColor: c.active,
		Running:     c.active != color.None,
		LastUpdated: c.lastTimestamp.UnixMilli(),
	}
}

// sync folds the time elapsed since the last timestamp into the active side
func (c *Clock) sync() {
	now := c.now.Now()
	if c.active == color.None {
		c.lastTimestamp = now
		return
	}

	elapsed := now.Sub(c.lastTimestamp)
	if elapsed < 0 {
		elapsed = 0
	}

	rem := max(c.remainingFor(c.active)-elapsed, 0)
	c.setRemaining(c.active, rem)
	c.lastTimestamp = now

	if rem == 0 {
		c.active = color.None
	}
}

func (c *Clock) remainingFor(col color.Color) time.Duration {
	if col == color.White {
		return c.whiteRemaining
	}
	return c.blackRemaining
}

func (c *Clock) setRemaining(col color.Color, d time.Duration) {
	if col == color.White {
		c.whiteRemaining = d
	} else {
		c.blackRemaining = d
	}
}

// FormatClockTime formats a duration to a user-friendly string (e.g., "1:30")
func FormatClockTime(d time.Duration) string {
	timeMs := d.Milliseconds()
	if timeMs < 0 {
		timeMs = 0
	}

	totalSeconds := timeMs / 1000
	minutes := totalSeconds / 60
	seconds := totalSeconds % 60

	// For times less than 10 seconds, show decimal
	if timeMs < 10000 {
		tenths := (timeMs % 1000) / 100
		return fmt.Sprintf("%d.%d", totalSeconds, tenths)
	}

	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
