package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/devicelab-dev/translator-runner/pkg/config"
	"github.com/devicelab-dev/translator-runner/pkg/core"
	"github.com/devicelab-dev/translator-runner/pkg/driver/mock"
	"github.com/devicelab-dev/translator-runner/pkg/executor"
	"github.com/devicelab-dev/translator-runner/pkg/logger"
	"github.com/devicelab-dev/translator-runner/pkg/report"
	"github.com/devicelab-dev/translator-runner/pkg/session"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

// Driver names accepted by --driver.
const (
	driverAppium = "appium"
	driverMock   = "mock"
)

// errorCaptureTimeout bounds the diagnostic screenshot after a failure.
const errorCaptureTimeout = 15 * time.Second

// newMockSession builds the session --driver mock dials.
var newMockSession = func(locators config.Locators) core.Session {
	return mock.NewApp(mock.Config{SessionID: "mock-" + uuid.NewString()[:8]}, locators)
}

// run holds everything one launch or translate invocation needs.
type run struct {
	cfg     *config.Config
	log     *logger.Logger
	store   *report.Store
	manager *session.Manager
	report  *report.Report
	out     io.Writer
}

// lookupString returns a flag value from the nearest context that set it.
// Global flags may be given before or after the subcommand name.
func lookupString(c *cli.Context, name string) string {
	for _, ctx := range c.Lineage() {
		if ctx.IsSet(name) {
			return ctx.String(name)
		}
	}
	return c.String(name)
}

func lookupBool(c *cli.Context, name string) bool {
	for _, ctx := range c.Lineage() {
		if ctx.IsSet(name) {
			return ctx.Bool(name)
		}
	}
	return c.Bool(name)
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path := lookupString(c, "config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if v := lookupString(c, "appium-url"); v != "" {
		cfg.Server.URL = v
	}
	if v := lookupString(c, "app"); v != "" {
		cfg.App.Path = v
	}
	if v := lookupString(c, "output"); v != "" {
		cfg.Output.Dir = v
	}
	if v := lookupString(c, "log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if lookupBool(c, "verbose") {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// dialerFor returns the session dialer for a driver name and whether the
// app binary must exist locally before dialing.
func dialerFor(driver string, cfg *config.Config) (session.Dialer, bool, error) {
	switch driver {
	case "", driverAppium:
		return session.AppiumDialer(cfg.Server.RequestTimeout), true, nil
	case driverMock:
		locators := cfg.Locators
		return func(ctx context.Context, serverURL string, caps map[string]interface{}) (core.Session, error) {
			return newMockSession(locators), nil
		}, false, nil
	default:
		return nil, false, fmt.Errorf("unknown driver %q (expected %s or %s)", driver, driverAppium, driverMock)
	}
}

func newRun(c *cli.Context, command string) (*run, error) {
	if lookupBool(c, "no-ansi") {
		colorsEnabled = false
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	driver := lookupString(c, "driver")
	if driver == "" {
		driver = driverAppium
	}
	dial, checkApp, err := dialerFor(driver, cfg)
	if err != nil {
		return nil, err
	}

	console := c.App.ErrWriter
	if console == nil {
		console = os.Stderr
	}
	log, err := logger.New(logger.Options{
		Dir:     cfg.Logging.Dir,
		Level:   cfg.Logging.Level,
		Console: console,
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	runID := uuid.NewString()
	store, err := report.NewStore(report.RunDir(cfg.Output.Dir, start, runID), log.With("report"))
	if err != nil {
		log.Close()
		return nil, err
	}

	out := c.App.Writer
	if out == nil {
		out = os.Stdout
	}

	r := &run{
		cfg:   cfg,
		log:   log,
		store: store,
		manager: session.New(cfg, dial,
			session.WithLogger(log.With("session")),
			session.WithAppCheck(checkApp),
		),
		report: &report.Report{
			Version:   report.Version,
			RunID:     runID,
			Command:   command,
			Status:    report.StatusRunning,
			StartTime: start,
			Runner: report.RunnerInfo{
				Version: Version,
				Driver:  driver,
			},
			App: report.App{Path: cfg.App.Path},
		},
		out: out,
	}
	if driver == driverAppium {
		r.report.Runner.ServerURL = cfg.Server.URL
	}
	log.Debug("run %s: %s with %s driver, artifacts in %s", r.report.RunID, command, driver, store.Dir())
	printHeader(out, command, r.report.RunID, store.Dir())
	return r, nil
}

// runner builds the onboarding runner with live progress output.
func (r *run) runner() *executor.Runner {
	return executor.New(executor.RunnerConfig{
		Config: r.cfg,
		Store:  r.store,
		Logger: r.log.With("executor"),
		OnStepStart: func(idx, total int, name string) {
			printStepStart(r.out, idx, total, name)
		},
		OnStepEnd: func(sr executor.StepResult) {
			printStepEnd(r.out, sr)
		},
	})
}

// withSession acquires a session, drives the app to its home screen and
// then calls fn. The session is released when fn returns or panics. With
// keepOpen it is left running for the server to reap.
func (r *run) withSession(ctx context.Context, keepOpen bool, fn func(ctx context.Context, s core.Session) error) error {
	if keepOpen {
		s, result, err := executor.Launch(ctx, r.manager, r.runner())
		r.record(s, result)
		if err != nil {
			return err
		}
		r.log.Info("leaving session %s open", s.ID())
		return fn(ctx, s)
	}

	return r.manager.Run(ctx, func(ctx context.Context, s core.Session) error {
		result, err := r.runner().Run(ctx, s)
		r.record(s, result)
		if err != nil {
			return err
		}
		return fn(ctx, s)
	})
}

func (r *run) record(s core.Session, result *executor.RunResult) {
	if s != nil {
		r.report.Runner.SessionID = s.ID()
	}
	if result != nil {
		r.report.Steps = result.ReportSteps()
		r.report.App.Activity = result.Activity
	}
}

// captureError saves an annotated error_<name>.png. It runs even when ctx
// is already cancelled.
func (r *run) captureError(ctx context.Context, s core.Session, name string, cause error) (core.Attachment, bool) {
	captureCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), errorCaptureTimeout)
	defer cancel()

	att, err := r.store.CaptureAnnotated(captureCtx, s, "error_"+name, fmt.Sprintf("%s: %v", name, cause))
	if err != nil {
		r.log.Warn("error screenshot for %s not captured: %v", name, err)
		return core.Attachment{}, false
	}
	return att, true
}

// finish writes report.json and closes the logger. It returns runErr.
func (r *run) finish(runErr error) error {
	end := time.Now()
	r.report.Finish(end, runErr)

	path, err := r.store.WriteReport(r.report)
	if err != nil {
		r.log.Error("failed to write report: %v", err)
		path = ""
	}
	printSummary(r.out, runErr == nil, r.report.Duration, path)

	if err := r.log.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
	}
	return runErr
}
