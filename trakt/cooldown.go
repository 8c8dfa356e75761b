package trakt

import (
	"math"
	"sync"
	"time"
)

// Cooldown is a back-off window shared by every client it is attached to.
// While it is active those clients fail fast with a *RateLimitError.
type Cooldown struct {
	mu    sync.Mutex
	until time.Time
	now   func() time.Time
}

// NewCooldown creates an inactive cooldown.
func NewCooldown() *Cooldown {
	return &Cooldown{now: time.Now}
}

// Extend starts or lengthens the cooldown so it lasts at least d from now.
// A shorter window never cuts an existing one short.
func (c *Cooldown) Extend(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	until := c.now().Add(d)
	if until.After(c.until) {
		c.until = until
	}
}

// Remaining returns the time left, or zero when inactive.
func (c *Cooldown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if left := c.until.Sub(c.now()); left > 0 {
		return left
	}
	return 0
}

// Active reports whether calls should currently be held back.
func (c *Cooldown) Active() bool {
	return c.Remaining() > 0
}

// Reset ends the cooldown.
func (c *Cooldown) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.until = time.Time{}
}

// check returns a rate limit error while the cooldown is active.
func (c *Cooldown) check() error {
	left := c.Remaining()
	if left <= 0 {
		return nil
	}
	return &RateLimitError{
		Message:           "cooldown active after previous rate limit",
		StatusCode:        429,
		RetryAfterSeconds: int(math.Ceil(left.Seconds())),
	}
}
