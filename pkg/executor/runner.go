// Package executor runs the onboarding flow against a live session.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/devicelab-dev/translator-runner/pkg/config"
	"github.com/devicelab-dev/translator-runner/pkg/core"
	"github.com/devicelab-dev/translator-runner/pkg/flow"
	"github.com/devicelab-dev/translator-runner/pkg/logger"
	"github.com/devicelab-dev/translator-runner/pkg/report"
)

// errorCaptureTimeout bounds the diagnostic screenshot after a failure.
const errorCaptureTimeout = 15 * time.Second

// RunnerConfig configures the flow runner.
type RunnerConfig struct {
	Config *config.Config
	Store  *report.Store  // Artifact store; nil disables screenshots
	Logger *logger.Logger // nil discards output
	Steps  []flow.Step    // nil runs flow.Onboarding()

	// Live progress callbacks
	OnStepStart func(idx, total int, name string)
	OnStepEnd   func(result StepResult)
}

// StepResult contains the outcome of one step.
type StepResult struct {
	Index       int
	Name        string
	Status      core.StepStatus
	Duration    time.Duration
	Skips       []string
	Error       error
	Attachments []core.Attachment
}

// RunResult contains the outcome of a flow run.
type RunResult struct {
	StartTime time.Time
	Duration  time.Duration
	Steps     []StepResult
	Activity  string // Last foreground activity seen
	Err       error
}

// Passed reports whether every step passed.
func (r *RunResult) Passed() bool {
	return r.Err == nil
}

// Failed returns the step that errored, or nil.
func (r *RunResult) Failed() *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Status == core.StatusErrored {
			return &r.Steps[i]
		}
	}
	return nil
}

// ReportSteps converts step results into report entries.
func (r *RunResult) ReportSteps() []report.StepEntry {
	entries := make([]report.StepEntry, len(r.Steps))
	for i, s := range r.Steps {
		entries[i] = report.StepEntry{
			Index:       s.Index,
			Name:        s.Name,
			Status:      s.Status,
			Duration:    s.Duration.Milliseconds(),
			Skips:       s.Skips,
			Error:       report.NewError(s.Error),
			Attachments: s.Attachments,
		}
	}
	return entries
}

// Runner runs flow steps in a fixed order.
type Runner struct {
	config RunnerConfig
}

// New creates a new Runner.
func New(cfg RunnerConfig) *Runner {
	if cfg.Config == nil {
		cfg.Config = config.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	if cfg.Steps == nil {
		cfg.Steps = flow.Onboarding()
	}
	return &Runner{config: cfg}
}

// Run executes every step in order. Steps are never skipped based on what
// is on screen; the first step to fail stops the run, later steps are
// marked skipped, and an error_<step>.png screenshot is captured.
// The returned error wraps the step's error.
func (r *Runner) Run(ctx context.Context, s core.Session) (*RunResult, error) {
	cfg := r.config
	log := cfg.Logger
	env := flow.NewEnv(s, cfg.Config, cfg.Store, log.With("flow"))

	result := &RunResult{
		StartTime: time.Now(),
		Steps:     make([]StepResult, len(cfg.Steps)),
	}
	for i, step := range cfg.Steps {
		result.Steps[i] = StepResult{Index: i, Name: step.Name(), Status: core.StatusPending}
	}

	var runErr error
	for i, step := range cfg.Steps {
		sr := &result.Steps[i]

		if runErr != nil {
			sr.Status = core.StatusSkipped
			r.stepEnd(*sr)
			continue
		}

		if cfg.OnStepStart != nil {
			cfg.OnStepStart(i, len(cfg.Steps), sr.Name)
		}
		log.Info("step %d/%d: %s", i+1, len(cfg.Steps), sr.Name)

		sr.Status = core.StatusRunning
		start := time.Now()
		err := step.Run(ctx, env)
		sr.Duration = time.Since(start)
		sr.Skips, sr.Attachments = env.Drain()

		if err != nil {
			sr.Status = core.StatusErrored
			sr.Error = err
			log.Error("step %s failed: %v", sr.Name, err)
			if att, ok := r.captureError(ctx, s, sr.Name, err); ok {
				sr.Attachments = append(sr.Attachments, att)
			}
			runErr = fmt.Errorf("step %s: %w", sr.Name, err)
		} else {
			sr.Status = core.StatusPassed
			log.Debug("step %s passed in %s", sr.Name, sr.Duration)
		}
		r.stepEnd(*sr)
	}

	result.Activity = env.Activity
	result.Duration = time.Since(result.StartTime)
	result.Err = runErr
	return result, runErr
}

func (r *Runner) stepEnd(sr StepResult) {
	if r.config.OnStepEnd != nil {
		r.config.OnStepEnd(sr)
	}
}

// captureError saves an annotated error_<step>.png. It runs even when ctx
// is already cancelled.
func (r *Runner) captureError(ctx context.Context, s core.Session, name string, stepErr error) (core.Attachment, bool) {
	if r.config.Store == nil {
		return core.Attachment{}, false
	}
	captureCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), errorCaptureTimeout)
	defer cancel()

	label := fmt.Sprintf("%s: %v", name, stepErr)
	att, err := r.config.Store.CaptureAnnotated(captureCtx, s, "error_"+name, label)
	if err != nil {
		r.config.Logger.Warn("error screenshot for %s not captured: %v", name, err)
		return core.Attachment{}, false
	}
	return att, true
}
