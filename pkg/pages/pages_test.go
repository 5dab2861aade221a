package pages

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/devicelab-dev/translator-runner/pkg/config"
	"github.com/devicelab-dev/translator-runner/pkg/core"
	"github.com/devicelab-dev/translator-runner/pkg/driver/mock"
	"github.com/devicelab-dev/translator-runner/pkg/report"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Timeouts = config.Timeouts{
		Short:   30 * time.Millisecond,
		Default: 60 * time.Millisecond,
		Long:    100 * time.Millisecond,
		Poll:    5 * time.Millisecond,
	}
	cfg.Delays = config.Delays{}
	return cfg
}

func TestTranslate_Hello(t *testing.T) {
	cfg := testConfig()
	s := mock.NewApp(mock.Config{}, cfg.Locators)
	home := NewHome(NewBase(s, cfg, nil, nil), cfg.Locators)

	ctx := context.Background()
	translator, err := home.OpenTextTranslator(ctx)
	if err != nil {
		t.Fatalf("OpenTextTranslator failed: %v", err)
	}
	result, err := translator.Translate(ctx, "Hello")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if strings.TrimSpace(result) == "" {
		t.Fatal("expected non-empty translation")
	}
	if result != mock.TranslatedPrefix+"Hello" {
		t.Errorf("expected %q, got %q", mock.TranslatedPrefix+"Hello", result)
	}
}

func TestTranslate_ReplacesPreviousInput(t *testing.T) {
	cfg := testConfig()
	s := mock.NewApp(mock.Config{}, cfg.Locators)
	p := NewTextTranslator(NewBase(s, cfg, nil, nil), cfg.Locators)

	ctx := context.Background()
	if _, err := p.Translate(ctx, "Hello"); err != nil {
		t.Fatalf("first Translate failed: %v", err)
	}
	result, err := p.Translate(ctx, "Mara Nam Mohsin hai")
	if err != nil {
		t.Fatalf("second Translate failed: %v", err)
	}
	if result != mock.TranslatedPrefix+"Mara Nam Mohsin hai" {
		t.Errorf("input not cleared between translations, got %q", result)
	}
}

func TestWaitForResult_PollsUntilText(t *testing.T) {
	cfg := testConfig()
	s := mock.New(mock.Config{}).Add(cfg.Locators.TranslatorResult, &mock.Element{})
	p := NewTextTranslator(NewBase(s, cfg, nil, nil), cfg.Locators)

	go func() {
		time.Sleep(20 * time.Millisecond)
		s.SetText(cfg.Locators.TranslatorResult, "Hola")
	}()

	result, err := p.WaitForResult(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("WaitForResult failed: %v", err)
	}
	if result != "Hola" {
		t.Errorf("expected Hola, got %q", result)
	}
}

func TestWaitForResult_Timeout(t *testing.T) {
	cfg := testConfig()
	s := mock.New(mock.Config{}).Add(cfg.Locators.TranslatorResult, &mock.Element{Text: "   "})
	p := NewTextTranslator(NewBase(s, cfg, nil, nil), cfg.Locators)

	_, err := p.WaitForResult(context.Background(), 0)
	if !errors.Is(err, core.ErrWaitTimeout) {
		t.Fatalf("expected ErrWaitTimeout, got %v", err)
	}
	if !strings.Contains(err.Error(), "60ms") {
		t.Errorf("expected default tier in message, got %q", err.Error())
	}
}

func TestIsResultAvailable(t *testing.T) {
	cfg := testConfig()
	s := mock.New(mock.Config{})
	p := NewTextTranslator(NewBase(s, cfg, nil, nil), cfg.Locators)

	ctx := context.Background()
	if ok, err := p.IsResultAvailable(ctx); err != nil || ok {
		t.Errorf("expected (false, nil), got (%v, %v)", ok, err)
	}
	s.Add(cfg.Locators.TranslatorResult, &mock.Element{})
	if ok, err := p.IsResultAvailable(ctx); err != nil || !ok {
		t.Errorf("expected (true, nil), got (%v, %v)", ok, err)
	}
}

func TestBase_ClickMissingElement(t *testing.T) {
	cfg := testConfig()
	b := NewBase(mock.New(mock.Config{}), cfg, nil, nil)

	err := b.Click(context.Background(), cfg.Locators.HomeHistory)
	if !errors.Is(err, core.ErrElementNotFound) {
		t.Fatalf("expected ErrElementNotFound, got %v", err)
	}
}

func TestBase_ClickDisabledElement(t *testing.T) {
	cfg := testConfig()
	s := mock.New(mock.Config{}).Add(cfg.Locators.HomeHistory, &mock.Element{Disabled: true})
	b := NewBase(s, cfg, nil, nil)

	if err := b.Click(context.Background(), cfg.Locators.HomeHistory); !errors.Is(err, core.ErrElementNotFound) {
		t.Fatalf("expected ErrElementNotFound, got %v", err)
	}
	if len(s.Clicks()) != 0 {
		t.Error("disabled element must not be clicked")
	}
}

func TestBase_FatalErrorPropagates(t *testing.T) {
	cfg := testConfig()
	b := NewBase(mock.New(mock.Config{FailWith: core.ErrServerUnreachable}), cfg, nil, nil)

	if _, err := b.Text(context.Background(), cfg.Locators.TranslatorResult); !errors.Is(err, core.ErrServerUnreachable) {
		t.Errorf("expected ErrServerUnreachable, got %v", err)
	}
}

func TestBase_TypeWithoutClear(t *testing.T) {
	cfg := testConfig()
	input := cfg.Locators.TranslatorInput
	s := mock.New(mock.Config{}).Add(input, &mock.Element{Text: "Hel"})
	b := NewBase(s, cfg, nil, nil)

	if err := b.Type(context.Background(), input, "lo", false); err != nil {
		t.Fatalf("Type failed: %v", err)
	}
	if got := s.Text(input); got != "Hello" {
		t.Errorf("expected Hello, got %q", got)
	}
}

func TestBase_WaitVisible(t *testing.T) {
	cfg := testConfig()
	loc := cfg.Locators.HomeVoiceTranslator
	s := mock.New(mock.Config{}).Add(loc, &mock.Element{Hidden: true})
	b := NewBase(s, cfg, nil, nil)

	if ok, _ := b.WaitVisible(context.Background(), loc, 20*time.Millisecond); ok {
		t.Error("hidden element reported visible")
	}
	if ok, _ := b.IsPresent(context.Background(), loc, 20*time.Millisecond); !ok {
		t.Error("hidden element should still be present")
	}
}

func TestBase_Screenshot(t *testing.T) {
	cfg := testConfig()
	dir := t.TempDir()
	store, err := report.NewStore(dir, nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	b := NewBase(mock.New(mock.Config{}), cfg, store, nil)

	att, err := b.Screenshot(context.Background(), "05_translation")
	if err != nil {
		t.Fatalf("Screenshot failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, att.Path)); err != nil {
		t.Errorf("screenshot missing: %v", err)
	}

	if _, err := NewBase(mock.New(mock.Config{}), cfg, nil, nil).Screenshot(context.Background(), "x"); err == nil {
		t.Error("expected error without a store")
	}
}

func TestHome_OpenPages(t *testing.T) {
	cfg := testConfig()
	s := mock.NewApp(mock.Config{}, cfg.Locators)
	home := NewHome(NewBase(s, cfg, nil, nil), cfg.Locators)
	ctx := context.Background()

	for name, open := range map[string]func(context.Context) error{
		"camera":  home.OpenCameraTranslator,
		"voice":   home.OpenVoiceTranslator,
		"history": home.OpenHistory,
	} {
		if err := open(ctx); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if len(s.Clicks()) != 3 {
		t.Errorf("expected 3 clicks, got %d", len(s.Clicks()))
	}
}
