package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devicelab-dev/translator-runner/pkg/core"
	"github.com/devicelab-dev/translator-runner/pkg/logger"
)

// ReportFile is the name of the run report inside a run directory.
const ReportFile = "report.json"

// RunDir returns the run directory for a run started at start. The first
// eight characters of runID keep runs started in the same second apart.
func RunDir(base string, start time.Time, runID string) string {
	name := start.Format("2006-01-02_15-04-05")
	if len(runID) > 8 {
		runID = runID[:8]
	}
	if runID != "" {
		name += "_" + runID
	}
	return filepath.Join(base, name)
}

// Store writes artifacts into one run directory.
type Store struct {
	dir string
	log *logger.Logger
}

// NewStore creates dir if needed. A nil logger discards output.
func NewStore(dir string, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Discard()
	}
	if err := ensureDir(dir); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}
	return &Store{dir: dir, log: log}, nil
}

// Dir returns the run directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes a PNG artifact. name may omit the .png extension.
func (s *Store) Save(name string, data []byte) (core.Attachment, error) {
	file := pngName(name)
	if err := os.WriteFile(filepath.Join(s.dir, file), data, 0644); err != nil {
		return core.Attachment{}, fmt.Errorf("write %s: %w", file, err)
	}
	s.log.Info("screenshot saved: %s", filepath.Join(s.dir, file))
	return core.NewScreenshotAttachment(strings.TrimSuffix(file, ".png"), file), nil
}

// Capture takes a screenshot of the session and saves it.
func (s *Store) Capture(ctx context.Context, session core.Session, name string) (core.Attachment, error) {
	data, err := session.Screenshot(ctx)
	if err != nil {
		return core.Attachment{}, fmt.Errorf("screenshot %s: %w", name, err)
	}
	return s.Save(name, data)
}

// CaptureAnnotated is Capture with label drawn across the top. The raw
// screenshot is kept when it cannot be annotated.
func (s *Store) CaptureAnnotated(ctx context.Context, session core.Session, name, label string) (core.Attachment, error) {
	data, err := session.Screenshot(ctx)
	if err != nil {
		return core.Attachment{}, fmt.Errorf("screenshot %s: %w", name, err)
	}
	if annotated, err := Annotate(data, label); err == nil {
		data = annotated
	} else {
		s.log.Debug("annotate %s: %v", name, err)
	}
	return s.Save(name, data)
}

// WriteReport writes report.json and returns its path.
func (s *Store) WriteReport(r *Report) (string, error) {
	path := filepath.Join(s.dir, ReportFile)
	if err := atomicWriteJSON(path, r); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// ReadReport loads a report.json file.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &r, nil
}

func pngName(name string) string {
	if strings.HasSuffix(name, ".png") {
		return name
	}
	return name + ".png"
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// atomicWriteJSON writes v to a temp file and renames it over path.
func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
