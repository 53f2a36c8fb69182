package planilla

import (
	"sync"
	"time"

	"planillas/internal/clock"
)

type AlertKind string

const (
	AlertSuccess AlertKind = "success"
	AlertError   AlertKind = "error"
)

const (
	SuccessDismissDelay = 3000 * time.Millisecond
	ErrorDismissDelay   = 5000 * time.Millisecond
)

func (k AlertKind) dismissDelay() time.Duration {
	if k == AlertSuccess {
		return SuccessDismissDelay
	}
	return ErrorDismissDelay
}

// Alert is a transient status message shown to the user.
type Alert struct {
	ID        uint64    `json:"id"`
	Kind      AlertKind `json:"kind"`
	Message   string    `json:"message"`
	ShownAt   time.Time `json:"shown_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AlertListener observes alerts being shown (visible=true) and dismissed (visible=false).
type AlertListener func(alert Alert, visible bool)

// AlertChannel holds at most one visible alert. Each alert owns a dismiss timer; showing a new
// alert cancels the pending timer of the previous one. Safe for concurrent use since timers
// fire on their own goroutines.
type AlertChannel struct {
	mu       sync.Mutex
	clock    clock.Clock
	listener AlertListener
	seq      uint64
	current  *Alert
	timer    clock.Timer
}

func NewAlertChannel(clk clock.Clock, listener AlertListener) *AlertChannel {
	if clk == nil {
		clk = clock.Real()
	}
	return &AlertChannel{clock: clk, listener: listener}
}

// Show replaces the visible alert and schedules its auto-dismissal.
func (c *AlertChannel) Show(kind AlertKind, message string) Alert {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.seq++
	now := c.clock.Now()
	delay := kind.dismissDelay()
	alert := Alert{
		ID:        c.seq,
		Kind:      kind,
		Message:   message,
		ShownAt:   now,
		ExpiresAt: now.Add(delay),
	}
	c.current = &alert
	id := alert.ID
	c.timer = c.clock.AfterFunc(delay, func() { c.Dismiss(id) })
	listener := c.listener
	c.mu.Unlock()

	if listener != nil {
		listener(alert, true)
	}
	return alert
}

func (c *AlertChannel) ShowSuccess(message string) Alert { return c.Show(AlertSuccess, message) }
func (c *AlertChannel) ShowError(message string) Alert   { return c.Show(AlertError, message) }

// Dismiss hides the alert with the given id. Dismissing an alert that is no longer visible is
// a no-op and reports false.
func (c *AlertChannel) Dismiss(id uint64) bool {
	c.mu.Lock()
	if c.current == nil || c.current.ID != id {
		c.mu.Unlock()
		return false
	}
	alert := *c.current
	c.current = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	listener := c.listener
	c.mu.Unlock()

	if listener != nil {
		listener(alert, false)
	}
	return true
}

// Current returns the visible alert, if any.
func (c *AlertChannel) Current() (Alert, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Alert{}, false
	}
	return *c.current, true
}

// Close cancels the pending timer and detaches the listener.
func (c *AlertChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.listener = nil
}
