package appium

import (
	"context"
	"fmt"
	"time"

	"github.com/devicelab-dev/translator-runner/pkg/core"
)

// Driver implements core.Session on top of a connected Client.
type Driver struct {
	client *Client
}

// Dial creates a session on the Appium server at serverURL.
func Dial(ctx context.Context, serverURL string, capabilities map[string]interface{}, requestTimeout time.Duration) (*Driver, error) {
	client := NewClient(serverURL, requestTimeout)
	if err := client.Connect(ctx, capabilities); err != nil {
		return nil, err
	}
	return NewDriver(client), nil
}

// NewDriver wraps an already connected client.
func NewDriver(client *Client) *Driver {
	return &Driver{client: client}
}

// ID returns the server-assigned session id.
func (d *Driver) ID() string {
	return d.client.SessionID()
}

// FindElement returns the first element matching loc.
func (d *Driver) FindElement(ctx context.Context, loc core.Locator) (string, error) {
	if err := loc.Validate(); err != nil {
		return "", err
	}
	return d.client.FindElement(ctx, string(loc.Strategy), loc.Value)
}

func (d *Driver) ClickElement(ctx context.Context, elementID string) error {
	return d.client.ClickElement(ctx, elementID)
}

func (d *Driver) ClearElement(ctx context.Context, elementID string) error {
	return d.client.ClearElement(ctx, elementID)
}

func (d *Driver) SendKeys(ctx context.Context, elementID, text string) error {
	return d.client.SendElementKeys(ctx, elementID, text)
}

func (d *Driver) ElementText(ctx context.Context, elementID string) (string, error) {
	return d.client.GetElementText(ctx, elementID)
}

func (d *Driver) IsElementDisplayed(ctx context.Context, elementID string) (bool, error) {
	return d.client.IsElementDisplayed(ctx, elementID)
}

func (d *Driver) IsElementEnabled(ctx context.Context, elementID string) (bool, error) {
	return d.client.IsElementEnabled(ctx, elementID)
}

// Swipe drags a touch pointer from start to end.
func (d *Driver) Swipe(ctx context.Context, startX, startY, endX, endY int, duration time.Duration) error {
	return d.client.Swipe(ctx, startX, startY, endX, endY, int(duration.Milliseconds()))
}

// WindowSize returns the screen size, fetching it when not yet known.
func (d *Driver) WindowSize(ctx context.Context) (int, int, error) {
	if w, h := d.client.ScreenSize(); w > 0 && h > 0 {
		return w, h, nil
	}
	w, h, err := d.client.FetchWindowRect(ctx)
	if err != nil {
		return 0, 0, err
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("server reported invalid window size %dx%d", w, h)
	}
	return w, h, nil
}

func (d *Driver) CurrentActivity(ctx context.Context) (string, error) {
	return d.client.CurrentActivity(ctx)
}

func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	return d.client.Screenshot(ctx)
}

func (d *Driver) SetImplicitWait(ctx context.Context, timeout time.Duration) error {
	return d.client.SetImplicitWait(ctx, timeout)
}

// Close deletes the remote session.
func (d *Driver) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

var _ core.Session = (*Driver)(nil)
