package report

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/devicelab-dev/translator-runner/pkg/core"
	"github.com/devicelab-dev/translator-runner/pkg/driver/mock"
)

func TestRunDir(t *testing.T) {
	start := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	tests := []struct {
		runID string
		want  string
	}{
		{"", "2026-03-04_05-06-07"},
		{"abc", "2026-03-04_05-06-07_abc"},
		{"0b5e2c7a-1d7f-4a43-9c1e-6f0f5a1b2c3d", "2026-03-04_05-06-07_0b5e2c7a"},
	}
	for _, tt := range tests {
		if got := RunDir("/tmp/reports", start, tt.runID); got != filepath.Join("/tmp/reports", tt.want) {
			t.Errorf("RunDir(%q) = %q, want %q", tt.runID, got, tt.want)
		}
	}
}

func TestRunDir_SameSecondDistinct(t *testing.T) {
	start := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	a := RunDir("/tmp/reports", start, "11111111-aaaa")
	b := RunDir("/tmp/reports", start.Add(300*time.Millisecond), "22222222-bbbb")
	if a == b {
		t.Errorf("runs in the same second share %q", a)
	}
}

func TestStore_Capture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	store, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	att, err := store.Capture(context.Background(), mock.New(mock.Config{}), "02_language_ob.png")
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if att.Name != "02_language_ob" || att.Path != "02_language_ob.png" || att.ContentType != core.ContentTypePNG {
		t.Errorf("unexpected attachment %+v", att)
	}
	if _, err := os.Stat(filepath.Join(dir, "02_language_ob.png")); err != nil {
		t.Errorf("screenshot not written: %v", err)
	}
}

func TestStore_CaptureError(t *testing.T) {
	store, _ := NewStore(t.TempDir(), nil)
	s := mock.New(mock.Config{ScreenshotErr: errors.New("no surface")})

	if _, err := store.Capture(context.Background(), s, "04_home"); err == nil {
		t.Error("expected capture error")
	}
}

func TestStore_CaptureAnnotated(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir, nil)

	att, err := store.CaptureAnnotated(context.Background(), mock.New(mock.Config{}), "error_home", "home: session lost")
	if err != nil {
		t.Fatalf("CaptureAnnotated failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, att.Path))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("annotated screenshot is not a PNG: %v", err)
	}
}

func TestAnnotate_DrawsBanner(t *testing.T) {
	raw, _ := mock.New(mock.Config{Width: 1080, Height: 1920}).Screenshot(context.Background())

	out, err := Annotate(raw, "error_splash")
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if img.Bounds().Dx() != 108 || img.Bounds().Dy() != 192 {
		t.Errorf("annotation must keep size, got %v", img.Bounds())
	}

	// Bottom of the banner is darkened, the rest of the image is not
	r, _, _, _ := img.At(100, 20).RGBA()
	if r>>8 > 0x80 {
		t.Errorf("expected dark banner pixel, got r=%d", r>>8)
	}
	r, _, _, _ = img.At(100, 100).RGBA()
	if r>>8 != 0xee {
		t.Errorf("expected untouched pixel 0xee, got %#x", r>>8)
	}
}

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{strings.Repeat("x", 20), 10, "xxxxxxx..."},
		{"übersetzung fehlgeschlagen", 8, "übers..."},
		{"翻訳に失敗しました", 5, "翻訳..."},
	}
	for _, tt := range tests {
		got := truncateLabel(tt.in, tt.max)
		if got != tt.want {
			t.Errorf("truncateLabel(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncateLabel(%q, %d) split a rune: %q", tt.in, tt.max, got)
		}
	}
}

func TestAnnotate_InvalidPNG(t *testing.T) {
	if _, err := Annotate([]byte("not a png"), "x"); err == nil {
		t.Error("expected decode error")
	}
}

func TestStore_WriteAndReadReport(t *testing.T) {
	store, _ := NewStore(t.TempDir(), nil)
	start := time.Now()

	r := &Report{
		Version:   Version,
		RunID:     "run-1",
		Command:   "launch",
		StartTime: start,
		Steps: []StepEntry{
			{Index: 0, Name: "splash_ad", Status: core.StatusPassed, Skips: []string{"ad close button not found"}},
			{Index: 1, Name: "language_onboarding", Status: core.StatusErrored, Error: NewError(core.ErrSessionLost)},
			{Index: 2, Name: "feature_onboarding", Status: core.StatusSkipped},
		},
	}
	r.Finish(start.Add(1500*time.Millisecond), core.ErrSessionLost)

	path, err := store.WriteReport(r)
	if err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}
	if filepath.Base(path) != ReportFile {
		t.Errorf("expected %s, got %s", ReportFile, path)
	}

	got, err := ReadReport(path)
	if err != nil {
		t.Fatalf("ReadReport failed: %v", err)
	}
	if got.Status != StatusFailed {
		t.Errorf("expected failed, got %s", got.Status)
	}
	if got.Duration != 1500 {
		t.Errorf("expected 1500ms, got %d", got.Duration)
	}
	if got.Summary != (Summary{Total: 3, Passed: 1, Errored: 1, Skipped: 1}) {
		t.Errorf("unexpected summary %+v", got.Summary)
	}
	if got.Error == nil || got.Error.Type != "session" {
		t.Errorf("expected session error, got %+v", got.Error)
	}
	if got.Steps[1].Status != core.StatusErrored || len(got.Steps[0].Skips) != 1 {
		t.Errorf("steps not round-tripped: %+v", got.Steps)
	}
}
