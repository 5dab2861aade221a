package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/devicelab-dev/translator-runner/pkg/config"
	"github.com/devicelab-dev/translator-runner/pkg/core"
	"github.com/devicelab-dev/translator-runner/pkg/logger"
	"github.com/devicelab-dev/translator-runner/pkg/report"
	"github.com/devicelab-dev/translator-runner/pkg/wait"
)

// Env is what a step works with: the session, the waiter, and the settings
// for timeouts, delays, the carousel swipe, and selectors.
type Env struct {
	Session  core.Session
	Wait     *wait.Waiter
	Log      *logger.Logger
	Store    *report.Store // nil disables checkpoint screenshots
	Timeouts config.Timeouts
	Delays   config.Delays
	Swipe    config.Swipe
	Locators config.Locators

	// Activity is the last foreground activity the app reported.
	Activity string

	skips       []string
	attachments []core.Attachment
}

// NewEnv creates an Env from configuration. A nil logger discards output.
func NewEnv(session core.Session, cfg *config.Config, store *report.Store, log *logger.Logger) *Env {
	if log == nil {
		log = logger.Discard()
	}
	return &Env{
		Session:  session,
		Wait:     wait.New(session, cfg.Timeouts, log.With("wait")),
		Log:      log,
		Store:    store,
		Timeouts: cfg.Timeouts,
		Delays:   cfg.Delays,
		Swipe:    cfg.Swipe,
		Locators: cfg.Locators,
	}
}

// Drain returns the skips and attachments recorded since the last call.
func (e *Env) Drain() ([]string, []core.Attachment) {
	skips, atts := e.skips, e.attachments
	e.skips, e.attachments = nil, nil
	return skips, atts
}

// Skip logs a warning and records an optional interaction that did not happen.
func (e *Env) Skip(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	e.Log.Warn("%s", msg)
	e.skips = append(e.skips, msg)
}

// Settle sleeps for d or until ctx is done.
func (e *Env) Settle(ctx context.Context, d time.Duration) error {
	return wait.Sleep(ctx, d)
}

// ClickFirst clicks the first candidate of chain that becomes clickable,
// trying candidates in order. Candidates after the clicked one are never
// looked up. When nothing can be clicked it records a skip and returns false.
func (e *Env) ClickFirst(ctx context.Context, what string, chain []config.Fallback) (bool, error) {
	for i, candidate := range chain {
		timeout := candidate.Timeout
		if timeout <= 0 {
			timeout = e.Timeouts.Short
		}

		id, ok, err := e.Wait.Lookup(ctx, candidate.Locator, wait.Clickable, timeout)
		if err != nil {
			return false, err
		}
		if !ok {
			e.Log.Debug("%s candidate %d/%d not clickable within %s: %s", what, i+1, len(chain), timeout, candidate.Locator)
			continue
		}

		if err := e.Session.ClickElement(ctx, id); err != nil {
			if core.IsFatal(err) || ctx.Err() != nil {
				return false, err
			}
			e.Skip("%s could not be clicked: %v", what, err)
			return false, nil
		}
		e.Log.Info("clicked %s", what)
		return true, nil
	}

	e.Skip("%s not found, continuing", what)
	return false, nil
}

// AwaitLiveness waits up to the short tier for the app to report a
// foreground activity. Timing out is a warning only.
func (e *Env) AwaitLiveness(ctx context.Context) error {
	ok, err := e.awaitActivity(ctx, e.Timeouts.Short)
	if err != nil {
		return err
	}
	if !ok {
		e.Log.Warn("app did not report a foreground activity within %s", e.Timeouts.Short)
	}
	return nil
}

// Checkpoint saves a named screenshot. Capture failures are logged unless
// the session itself is gone.
func (e *Env) Checkpoint(ctx context.Context, name string) error {
	if e.Store == nil {
		return nil
	}
	att, err := e.Store.Capture(ctx, e.Session, name)
	if err != nil {
		if core.IsFatal(err) || ctx.Err() != nil {
			return err
		}
		e.Log.Warn("checkpoint %s not captured: %v", name, err)
		return nil
	}
	e.attachments = append(e.attachments, att)
	return nil
}

// afterClick waits out the interaction and transition delays and checks
// that the app is still alive.
func (e *Env) afterClick(ctx context.Context) error {
	if err := e.Settle(ctx, e.Delays.Interaction); err != nil {
		return err
	}
	if err := e.Settle(ctx, e.Delays.Transition); err != nil {
		return err
	}
	return e.AwaitLiveness(ctx)
}

func (e *Env) awaitActivity(ctx context.Context, timeout time.Duration) (bool, error) {
	return e.Wait.Until(ctx, timeout, func(ctx context.Context) (bool, error) {
		activity, err := e.Session.CurrentActivity(ctx)
		if err != nil {
			return false, err
		}
		if activity == "" {
			return false, nil
		}
		e.Activity = activity
		return true, nil
	})
}
