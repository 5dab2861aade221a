// Package pages provides page objects for the translator app screens.
package pages

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

// Base holds the element helpers shared by every page.
type Base struct {
	Session  core.Session
	Wait     *wait.Waiter
	Log      *logger.Logger
	Store    *report.Store // nil disables Screenshot
	Timeouts config.Timeouts
	Delays   config.Delays
}

// NewBase creates a Base from configuration. A nil logger discards output.
func NewBase(session core.Session, cfg *config.Config, store *report.Store, log *logger.Logger) *Base {
	if log == nil {
		log = logger.Discard()
	}
	return &Base{
		Session:  session,
		Wait:     wait.New(session, cfg.Timeouts, log.With("wait")),
		Log:      log,
		Store:    store,
		Timeouts: cfg.Timeouts,
		Delays:   cfg.Delays,
	}
}

// Click waits for loc to be clickable and clicks it.
func (b *Base) Click(ctx context.Context, loc core.Locator) error {
	id, err := b.find(ctx, loc, wait.Clickable)
	if err != nil {
		return err
	}
	if err := b.Session.ClickElement(ctx, id); err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	b.Log.Debug("clicked %s", loc)
	return nil
}

// Type waits for loc to be visible and types text into it, clearing the
// field first when clear is set.
func (b *Base) Type(ctx context.Context, loc core.Locator, text string, clear bool) error {
	id, err := b.find(ctx, loc, wait.Visible)
	if err != nil {
		return err
	}
	if clear {
		if err := b.Session.ClearElement(ctx, id); err != nil {
			return fmt.Errorf("clear %s: %w", loc, err)
		}
	}
	if err := b.Session.SendKeys(ctx, id, text); err != nil {
		return fmt.Errorf("type into %s: %w", loc, err)
	}
	return nil
}

// Text returns the text of the element at loc.
func (b *Base) Text(ctx context.Context, loc core.Locator) (string, error) {
	id, err := b.find(ctx, loc, wait.Present)
	if err != nil {
		return "", err
	}
	text, err := b.Session.ElementText(ctx, id)
	if err != nil {
		return "", fmt.Errorf("read text of %s: %w", loc, err)
	}
	return text, nil
}

// IsPresent reports whether loc appears within timeout.
func (b *Base) IsPresent(ctx context.Context, loc core.Locator, timeout time.Duration) (bool, error) {
	return b.Wait.For(ctx, loc, wait.Present, timeout)
}

// WaitVisible reports whether loc becomes visible within timeout.
func (b *Base) WaitVisible(ctx context.Context, loc core.Locator, timeout time.Duration) (bool, error) {
	return b.Wait.For(ctx, loc, wait.Visible, timeout)
}

// Screenshot saves a named screenshot into the run directory.
func (b *Base) Screenshot(ctx context.Context, name string) (core.Attachment, error) {
	if b.Store == nil {
		return core.Attachment{}, fmt.Errorf("no artifact store for screenshot %s", name)
	}
	return b.Store.Capture(ctx, b.Session, name)
}

func (b *Base) settle(ctx context.Context, d time.Duration) error {
	return wait.Sleep(ctx, d)
}

// find waits the default tier for loc to meet cond.
func (b *Base) find(ctx context.Context, loc core.Locator, cond wait.Condition) (string, error) {
	id, ok, err := b.Wait.Find(ctx, loc, cond, b.Timeouts.Default)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", core.ErrElementNotFound.WithMessage(fmt.Sprintf("element not %s within %s: %s", cond, b.Timeouts.Default, loc))
	}
	return id, nil
}
