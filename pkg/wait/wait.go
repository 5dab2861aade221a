// Package wait implements bounded polling for UI elements.
//
// A wait reports (true, nil) when its condition held within the timeout and
// (false, nil) when it did not. Absence and other transient WebDriver errors
// are swallowed while polling. Only fatal errors (see core.IsFatal) and a
// cancelled parent context are returned.
package wait

import (
	"context"
	"time"

	"github.com/devicelab-dev/translator-runner/pkg/config"
	"github.com/devicelab-dev/translator-runner/pkg/core"
	"github.com/devicelab-dev/translator-runner/pkg/logger"
)

const defaultPoll = 500 * time.Millisecond

// Condition is the state an element must reach.
type Condition int

const (
	Present   Condition = iota // In the UI tree
	Visible                    // Displayed
	Clickable                  // Displayed and enabled
)

func (c Condition) String() string {
	switch c {
	case Present:
		return "present"
	case Visible:
		return "visible"
	case Clickable:
		return "clickable"
	default:
		return "unknown"
	}
}

// Waiter polls a session for element conditions.
type Waiter struct {
	session  core.Session
	timeouts config.Timeouts
	log      *logger.Logger
}

// New creates a Waiter. A nil logger discards output.
func New(session core.Session, timeouts config.Timeouts, log *logger.Logger) *Waiter {
	if log == nil {
		log = logger.Discard()
	}
	return &Waiter{session: session, timeouts: timeouts, log: log}
}

// Timeouts returns the configured tiers.
func (w *Waiter) Timeouts() config.Timeouts {
	return w.timeouts
}

// For waits until the element at loc meets cond.
func (w *Waiter) For(ctx context.Context, loc core.Locator, cond Condition, timeout time.Duration) (bool, error) {
	_, ok, err := w.Find(ctx, loc, cond, timeout)
	return ok, err
}

// Find waits like For and also returns the matched element id.
func (w *Waiter) Find(ctx context.Context, loc core.Locator, cond Condition, timeout time.Duration) (string, bool, error) {
	id, ok, err := w.Lookup(ctx, loc, cond, timeout)
	if err == nil && !ok {
		w.log.Warn("element not found within %s: %s", w.resolve(timeout), loc)
	}
	return id, ok, err
}

// Lookup is Find without the timeout warning. Callers trying alternatives
// report absence themselves.
func (w *Waiter) Lookup(ctx context.Context, loc core.Locator, cond Condition, timeout time.Duration) (string, bool, error) {
	if err := loc.Validate(); err != nil {
		return "", false, err
	}
	timeout = w.resolve(timeout)

	var id string
	ok, err := w.Until(ctx, timeout, func(ctx context.Context) (bool, error) {
		found, err := w.session.FindElement(ctx, loc)
		if err != nil {
			return false, err
		}
		met, err := w.check(ctx, cond, found)
		if !met || err != nil {
			return false, err
		}
		id = found
		return true, nil
	})
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	w.log.Debug("element %s: %s", cond, loc)
	return id, true, nil
}

// Until calls fn until it reports true or the timeout elapses. Each call
// gets a context bounded by the wait deadline. A timeout <= 0 uses the
// default tier.
func (w *Waiter) Until(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (bool, error)) (bool, error) {
	timeout = w.resolve(timeout)
	poll := w.timeouts.Poll
	if poll <= 0 {
		poll = defaultPoll
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		ok, err := fn(waitCtx)
		if err == nil && ok {
			return true, nil
		}
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil && core.IsFatal(err) {
			return false, err
		}

		timer := time.NewTimer(poll)
		select {
		case <-waitCtx.Done():
			timer.Stop()
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			return false, nil
		case <-timer.C:
		}
	}
}

func (w *Waiter) check(ctx context.Context, cond Condition, id string) (bool, error) {
	if cond == Present {
		return true, nil
	}
	displayed, err := w.session.IsElementDisplayed(ctx, id)
	if err != nil || !displayed {
		return false, err
	}
	if cond == Visible {
		return true, nil
	}
	return w.session.IsElementEnabled(ctx, id)
}

func (w *Waiter) resolve(timeout time.Duration) time.Duration {
	if timeout > 0 {
		return timeout
	}
	if w.timeouts.Default > 0 {
		return w.timeouts.Default
	}
	return 15 * time.Second
}

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
