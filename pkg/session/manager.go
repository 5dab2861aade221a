// Package session owns the lifecycle of the single Appium session a run
// drives: it creates the session, prepares it, and always tears it down.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/devicelab-dev/translator-runner/pkg/config"
	"github.com/devicelab-dev/translator-runner/pkg/core"
	"github.com/devicelab-dev/translator-runner/pkg/driver/appium"
	"github.com/devicelab-dev/translator-runner/pkg/logger"
	"github.com/devicelab-dev/translator-runner/pkg/wait"
)

// releaseTimeout bounds session deletion, which runs even after the run's
// context is cancelled.
const releaseTimeout = 30 * time.Second

// Dialer creates a remote session with the given capabilities.
type Dialer func(ctx context.Context, serverURL string, capabilities map[string]interface{}) (core.Session, error)

// AppiumDialer dials a real Appium server.
func AppiumDialer(requestTimeout time.Duration) Dialer {
	return func(ctx context.Context, serverURL string, capabilities map[string]interface{}) (core.Session, error) {
		d, err := appium.Dial(ctx, serverURL, capabilities, requestTimeout)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

// Manager acquires and releases sessions.
type Manager struct {
	cfg      *config.Config
	dial     Dialer
	log      *logger.Logger
	checkApp bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithAppCheck makes Acquire verify the app artifact exists before dialing.
func WithAppCheck(check bool) Option {
	return func(m *Manager) {
		m.checkApp = check
	}
}

// New creates a Manager.
func New(cfg *config.Config, dial Dialer, opts ...Option) *Manager {
	m := &Manager{cfg: cfg, dial: dial, log: logger.Discard()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Capabilities returns the capabilities sent when creating a session.
// Named app settings override extras with the same key.
func (m *Manager) Capabilities() map[string]interface{} {
	app := m.cfg.App
	caps := make(map[string]interface{}, len(app.Capabilities)+5)
	for k, v := range app.Capabilities {
		caps[k] = v
	}
	caps["platformName"] = app.PlatformName
	caps["appium:automationName"] = app.AutomationName
	caps["appium:app"] = app.Path
	caps["appium:autoGrantPermissions"] = app.AutoGrantPermissions
	if app.NewCommandTimeout > 0 {
		caps["appium:newCommandTimeout"] = int(app.NewCommandTimeout.Seconds())
	}
	return caps
}

// Acquire creates a session ready for the first step. On any failure no
// session is returned and nothing is left open on the server.
func (m *Manager) Acquire(ctx context.Context) (core.Session, error) {
	if err := m.cfg.Validate(); err != nil {
		return nil, err
	}
	if m.checkApp {
		if err := m.cfg.ValidateApp(); err != nil {
			return nil, err
		}
	}

	m.log.Info("connecting to Appium server: %s", m.cfg.Server.URL)
	m.log.Debug("capabilities: %v", m.Capabilities())

	s, err := m.dial(ctx, m.cfg.Server.URL, m.Capabilities())
	if err != nil {
		m.log.Error("failed to create session: %v", err)
		return nil, fmt.Errorf("create session: %w", err)
	}
	m.log.Info("session created: %s", s.ID())

	if implicit := m.cfg.Timeouts.Implicit; implicit > 0 {
		if err := s.SetImplicitWait(ctx, implicit); err != nil {
			m.log.Error("failed to set implicit wait: %v", err)
			m.Release(ctx, s)
			return nil, fmt.Errorf("set implicit wait: %w", err)
		}
	}

	if err := wait.Sleep(ctx, m.cfg.Delays.Launch); err != nil {
		m.Release(ctx, s)
		return nil, err
	}
	return s, nil
}

// Release deletes the session. Errors are logged and swallowed. A nil
// session is ignored.
func (m *Manager) Release(ctx context.Context, s core.Session) {
	if s == nil {
		return
	}
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	id := s.ID()
	if err := s.Close(closeCtx); err != nil {
		m.log.Warn("failed to close session %s: %v", id, err)
		return
	}
	m.log.Info("session closed: %s", id)
}

// Run acquires a session, runs fn with it, and releases it exactly once,
// also when fn fails or panics. Nothing is released if acquiring fails.
func (m *Manager) Run(ctx context.Context, fn func(ctx context.Context, s core.Session) error) error {
	s, err := m.Acquire(ctx)
	if err != nil {
		return err
	}
	defer m.Release(ctx, s)
	return fn(ctx, s)
}
