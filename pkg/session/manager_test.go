package session

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/devicelab-dev/translator-runner/pkg/config"
	"github.com/devicelab-dev/translator-runner/pkg/core"
	"github.com/devicelab-dev/translator-runner/pkg/driver/mock"
	"github.com/devicelab-dev/translator-runner/pkg/logger"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Delays.Launch = 0
	return cfg
}

// countingDialer hands out s and counts dials.
type countingDialer struct {
	session *mock.Session
	err     error
	dials   int
	caps    map[string]interface{}
}

func (d *countingDialer) dial(ctx context.Context, serverURL string, caps map[string]interface{}) (core.Session, error) {
	d.dials++
	d.caps = caps
	if d.err != nil {
		return nil, d.err
	}
	return d.session, nil
}

func TestRun_ReleasesOnSuccess(t *testing.T) {
	d := &countingDialer{session: mock.New(mock.Config{})}
	m := New(testConfig(), d.dial)

	called := false
	err := m.Run(context.Background(), func(ctx context.Context, s core.Session) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !called {
		t.Error("handler not called")
	}
	if n := d.session.Closes(); n != 1 {
		t.Errorf("expected 1 release, got %d", n)
	}
}

func TestRun_ReleasesOnHandlerError(t *testing.T) {
	d := &countingDialer{session: mock.New(mock.Config{})}
	m := New(testConfig(), d.dial)
	boom := errors.New("step failed")

	err := m.Run(context.Background(), func(ctx context.Context, s core.Session) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if n := d.session.Closes(); n != 1 {
		t.Errorf("expected 1 release, got %d", n)
	}
}

func TestRun_ReleasesOnPanic(t *testing.T) {
	d := &countingDialer{session: mock.New(mock.Config{})}
	m := New(testConfig(), d.dial)

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic to propagate")
			}
		}()
		m.Run(context.Background(), func(ctx context.Context, s core.Session) error {
			panic("handler bug")
		})
	}()

	if n := d.session.Closes(); n != 1 {
		t.Errorf("expected 1 release, got %d", n)
	}
}

func TestRun_UnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	cfg := testConfig()
	cfg.Server.URL = server.URL
	server.Close()

	m := New(cfg, AppiumDialer(time.Second))

	s, err := m.Acquire(context.Background())
	if s != nil {
		t.Errorf("expected nil session, got %v", s)
	}
	if !errors.Is(err, core.ErrServerUnreachable) {
		t.Fatalf("expected ErrServerUnreachable, got %v", err)
	}

	called := false
	err = m.Run(context.Background(), func(ctx context.Context, s core.Session) error {
		called = true
		return nil
	})
	if err == nil || called {
		t.Errorf("expected Run to fail before the handler, err=%v called=%v", err, called)
	}
}

func TestAcquire_DialErrorReleasesNothing(t *testing.T) {
	var buf bytes.Buffer
	log, _ := logger.New(logger.Options{Console: &buf})
	d := &countingDialer{err: core.ErrServerUnreachable}
	m := New(testConfig(), d.dial, WithLogger(log))

	s, err := m.Acquire(context.Background())
	if s != nil || !errors.Is(err, core.ErrServerUnreachable) {
		t.Fatalf("expected (nil, ErrServerUnreachable), got (%v, %v)", s, err)
	}
	if strings.Contains(buf.String(), "session closed") {
		t.Error("nothing should be released after a failed dial")
	}
	if !strings.Contains(buf.String(), "ERROR - failed to create session") {
		t.Errorf("expected error log, got %q", buf.String())
	}
}

func TestAcquire_MissingAppDoesNotDial(t *testing.T) {
	cfg := testConfig()
	cfg.App.Path = filepath.Join(t.TempDir(), "missing.apk")
	d := &countingDialer{session: mock.New(mock.Config{})}
	m := New(cfg, d.dial, WithAppCheck(true))

	_, err := m.Acquire(context.Background())
	if core.CategoryOf(err) != core.ErrCategoryConfig {
		t.Fatalf("expected config error, got %v", err)
	}
	if d.dials != 0 {
		t.Errorf("expected no dial, got %d", d.dials)
	}
}

func TestAcquire_AppCheckPasses(t *testing.T) {
	cfg := testConfig()
	cfg.App.Path = filepath.Join(t.TempDir(), "app.apk")
	if err := os.WriteFile(cfg.App.Path, []byte("apk"), 0644); err != nil {
		t.Fatal(err)
	}
	d := &countingDialer{session: mock.New(mock.Config{})}
	m := New(cfg, d.dial, WithAppCheck(true))

	if _, err := m.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if d.caps["appium:app"] != cfg.App.Path {
		t.Errorf("expected app path in capabilities, got %v", d.caps["appium:app"])
	}
}

func TestAcquire_InvalidConfigDoesNotDial(t *testing.T) {
	cfg := testConfig()
	cfg.Server.URL = "not a url"
	d := &countingDialer{session: mock.New(mock.Config{})}

	_, err := New(cfg, d.dial).Acquire(context.Background())
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if d.dials != 0 {
		t.Errorf("expected no dial, got %d", d.dials)
	}
}

func TestAcquire_SetsImplicitWait(t *testing.T) {
	d := &countingDialer{session: mock.New(mock.Config{})}
	s, err := New(testConfig(), d.dial).Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if s != core.Session(d.session) {
		t.Error("expected the dialed session")
	}
	if got := d.session.ImplicitWait(); got != 10*time.Second {
		t.Errorf("expected implicit wait 10s, got %s", got)
	}
}

func TestAcquire_ImplicitWaitFailureClosesSession(t *testing.T) {
	d := &countingDialer{session: mock.New(mock.Config{ImplicitWaitErr: core.ErrSessionLost})}

	s, err := New(testConfig(), d.dial).Acquire(context.Background())
	if s != nil {
		t.Error("expected nil session")
	}
	if !errors.Is(err, core.ErrSessionLost) {
		t.Fatalf("expected ErrSessionLost, got %v", err)
	}
	if n := d.session.Closes(); n != 1 {
		t.Errorf("half-open session should be closed once, got %d", n)
	}
}

func TestAcquire_CancelledDuringLaunchDelay(t *testing.T) {
	cfg := testConfig()
	cfg.Delays.Launch = time.Hour
	d := &countingDialer{session: mock.New(mock.Config{})}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	s, err := New(cfg, d.dial).Acquire(ctx)
	if s != nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected (nil, context.Canceled), got (%v, %v)", s, err)
	}
	if n := d.session.Closes(); n != 1 {
		t.Errorf("expected session closed after cancel, got %d", n)
	}
}

func TestCapabilities(t *testing.T) {
	cfg := testConfig()
	cfg.App.Path = "/apps/translator.apk"
	cfg.App.Capabilities = map[string]interface{}{
		"appium:udid":       "emulator-5554",
		"appium:app":        "/ignored.apk",
		"appium:noReset":    true,
		"appium:deviceName": "Pixel",
	}

	caps := New(cfg, nil).Capabilities()

	want := map[string]interface{}{
		"platformName":                "Android",
		"appium:automationName":       "UiAutomator2",
		"appium:app":                  "/apps/translator.apk",
		"appium:autoGrantPermissions": true,
		"appium:newCommandTimeout":    300,
		"appium:udid":                 "emulator-5554",
		"appium:noReset":              true,
		"appium:deviceName":           "Pixel",
	}
	if len(caps) != len(want) {
		t.Errorf("expected %d capabilities, got %d: %v", len(want), len(caps), caps)
	}
	for k, v := range want {
		if caps[k] != v {
			t.Errorf("%s: expected %v, got %v", k, v, caps[k])
		}
	}
}

func TestRelease(t *testing.T) {
	var buf bytes.Buffer
	log, _ := logger.New(logger.Options{Console: &buf})
	m := New(testConfig(), nil, WithLogger(log))

	m.Release(context.Background(), nil)

	s := mock.New(mock.Config{CloseErr: errors.New("already gone")})
	m.Release(context.Background(), s)
	if s.Closes() != 1 {
		t.Errorf("expected close attempt, got %d", s.Closes())
	}
	if !strings.Contains(buf.String(), "WARN - failed to close session mock-session: already gone") {
		t.Errorf("expected close warning, got %q", buf.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s2 := mock.New(mock.Config{})
	m.Release(ctx, s2)
	if s2.Closes() != 1 {
		t.Error("release must still close after the run context is cancelled")
	}
}
