package core

import (
	"context"
	"time"
)

// Session is a live handle to the app under test on a remote automation server.
// Exactly one Session is live at a time and it is never shared between goroutines.
//
// Element lookups return an opaque element id. A lookup that matches nothing
// returns an error matching ErrElementNotFound; transport and session failures
// return errors for which IsFatal reports true.
type Session interface {
	// ID returns the server-assigned session id.
	ID() string

	// FindElement returns the first element matching loc.
	FindElement(ctx context.Context, loc Locator) (string, error)

	ClickElement(ctx context.Context, elementID string) error
	ClearElement(ctx context.Context, elementID string) error
	SendKeys(ctx context.Context, elementID, text string) error
	ElementText(ctx context.Context, elementID string) (string, error)
	IsElementDisplayed(ctx context.Context, elementID string) (bool, error)
	IsElementEnabled(ctx context.Context, elementID string) (bool, error)

	// Swipe drags a single touch pointer from start to end over duration.
	Swipe(ctx context.Context, startX, startY, endX, endY int, duration time.Duration) error

	// WindowSize returns the live screen dimensions in pixels.
	WindowSize(ctx context.Context) (width, height int, err error)

	// CurrentActivity returns the foreground Android activity.
	CurrentActivity(ctx context.Context) (string, error)

	// Screenshot captures the current screen as PNG.
	Screenshot(ctx context.Context) ([]byte, error)

	// SetImplicitWait sets the server-side element lookup wait.
	SetImplicitWait(ctx context.Context, timeout time.Duration) error

	// Close deletes the remote session. Safe to call more than once.
	Close(ctx context.Context) error
}
