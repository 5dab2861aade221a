// Package report stores run artifacts and the JSON run report.
//
// Layout of a run directory:
//   - report.json: run summary with per-step status and attachments
//   - *.png: checkpoint screenshots and error_<step>.png diagnostics
//
// Attachment paths in report.json are relative to the run directory.
package report

import (
	"time"

	"github.com/devicelab-dev/translator-runner/pkg/core"
)

// Version is the report schema version.
const Version = "1.0.0"

// Status represents the run status.
type Status string

// Status values.
const (
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
)

// Report is the content of report.json.
type Report struct {
	Version     string       `json:"version"`
	RunID       string       `json:"runId"`
	Command     string       `json:"command"` // launch, translate
	Status      Status       `json:"status"`
	StartTime   time.Time    `json:"startTime"`
	EndTime     *time.Time   `json:"endTime,omitempty"`
	Duration    int64        `json:"duration"` // milliseconds
	Runner      RunnerInfo   `json:"runner"`
	App         App          `json:"app"`
	Summary     Summary      `json:"summary"`
	Steps       []StepEntry  `json:"steps"`
	Translation *Translation `json:"translation,omitempty"`
	Error       *Error       `json:"error,omitempty"`
}

// RunnerInfo describes how the run was driven.
type RunnerInfo struct {
	Version   string `json:"version"`
	Driver    string `json:"driver"` // appium, mock
	ServerURL string `json:"serverUrl,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// App contains application information.
type App struct {
	Path     string `json:"path"`
	Activity string `json:"activity,omitempty"` // Foreground activity when home was reached
}

// Summary contains aggregated step counts.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Errored int `json:"errored"`
	Skipped int `json:"skipped"`
}

// StepEntry is the report entry for one flow step.
type StepEntry struct {
	Index       int               `json:"index"`
	Name        string            `json:"name"`
	Status      core.StepStatus   `json:"status"`
	Duration    int64             `json:"duration"`        // milliseconds
	Skips       []string          `json:"skips,omitempty"` // Optional interactions that found nothing
	Error       *Error            `json:"error,omitempty"`
	Attachments []core.Attachment `json:"attachments,omitempty"`
}

// Translation records the outcome of the translate command.
type Translation struct {
	Input       string            `json:"input"`
	Result      string            `json:"result"`
	Expectation string            `json:"expectation"`
	Passed      bool              `json:"passed"`
	Attachments []core.Attachment `json:"attachments,omitempty"` // error_translate.png on failure
}

// Error contains error details.
type Error struct {
	Type    string `json:"type"` // Error category: connection, session, timeout, ...
	Message string `json:"message"`
}

// NewError builds a report error from err, nil for nil.
func NewError(err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Type:    core.CategoryOf(err).String(),
		Message: err.Error(),
	}
}

// ComputeSummary recounts Summary from Steps.
func (r *Report) ComputeSummary() {
	s := Summary{Total: len(r.Steps)}
	for _, step := range r.Steps {
		switch step.Status {
		case core.StatusPassed:
			s.Passed++
		case core.StatusErrored:
			s.Errored++
		case core.StatusSkipped:
			s.Skipped++
		}
	}
	r.Summary = s
}

// Finish stamps the end time and final status.
func (r *Report) Finish(end time.Time, err error) {
	r.EndTime = &end
	r.Duration = end.Sub(r.StartTime).Milliseconds()
	r.Status = StatusPassed
	if err != nil {
		r.Status = StatusFailed
		r.Error = NewError(err)
	}
	r.ComputeSummary()
}
