// Package mock provides a scriptable in-memory core.Session for testing
// without a device or Appium server.
package mock

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"
	"time"

	"github.com/devicelab-dev/translator-runner/pkg/core"
)

// Element is one scripted UI element.
type Element struct {
	Text     string
	Hidden   bool
	Disabled bool

	// AppearAfter makes the first N finds miss, simulating a slow screen.
	AppearAfter int

	// Err is returned by every find of this element.
	Err error

	// OnClick runs after the element is clicked. It may reshape the screen.
	OnClick func(s *Session)
}

// Config configures mock session behavior.
type Config struct {
	SessionID string
	Activity  string // Foreground activity; default .MainActivity
	Width     int    // Screen size; default 1080x1920
	Height    int

	// ActivityAfter makes the first N CurrentActivity calls return "".
	ActivityAfter int

	// FailWith is returned by every call except Close, e.g. a lost session.
	FailWith error

	ScreenshotErr   error
	ImplicitWaitErr error
	CloseErr        error
}

// Swipe records one swipe gesture.
type Swipe struct {
	StartX, StartY int
	EndX, EndY     int
	Duration       time.Duration
}

// Session is a mock implementation of core.Session.
type Session struct {
	Config Config

	mu            sync.Mutex
	elements      map[core.Locator]*Element
	byID          map[string]core.Locator
	findCounts    map[core.Locator]int
	finds         []core.Locator
	clicks        []core.Locator
	swipes        []Swipe
	implicitWait  time.Duration
	activityCalls int
	closes        int
}

// New creates a new mock session with no elements.
func New(cfg Config) *Session {
	if cfg.SessionID == "" {
		cfg.SessionID = "mock-session"
	}
	if cfg.Activity == "" {
		cfg.Activity = ".MainActivity"
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		cfg.Width, cfg.Height = 1080, 1920
	}
	return &Session{
		Config:     cfg,
		elements:   make(map[core.Locator]*Element),
		byID:       make(map[string]core.Locator),
		findCounts: make(map[core.Locator]int),
	}
}

// Add places an element on screen, replacing any element at loc.
func (s *Session) Add(loc core.Locator, el *Element) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[loc] = el
	s.byID[elementID(loc)] = loc
	return s
}

// Remove takes an element off screen.
func (s *Session) Remove(loc core.Locator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.elements, loc)
}

// Text returns the current text of the element at loc.
func (s *Session) Text(loc core.Locator) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.elements[loc]; ok {
		return el.Text
	}
	return ""
}

// SetText replaces the text of the element at loc.
func (s *Session) SetText(loc core.Locator, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.elements[loc]; ok {
		el.Text = text
	}
}

// Finds returns every locator looked up, in order.
func (s *Session) Finds() []core.Locator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Locator(nil), s.finds...)
}

// FindCount returns how many times loc was looked up.
func (s *Session) FindCount(loc core.Locator) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCounts[loc]
}

// Clicks returns every clicked locator, in order.
func (s *Session) Clicks() []core.Locator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Locator(nil), s.clicks...)
}

// Swipes returns every recorded swipe.
func (s *Session) Swipes() []Swipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Swipe(nil), s.swipes...)
}

// ImplicitWait returns the last implicit wait set.
func (s *Session) ImplicitWait() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.implicitWait
}

// Closes returns how many times Close was called.
func (s *Session) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// core.Session

func (s *Session) ID() string {
	return s.Config.SessionID
}

func (s *Session) FindElement(ctx context.Context, loc core.Locator) (string, error) {
	if err := s.check(ctx); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.finds = append(s.finds, loc)
	s.findCounts[loc]++

	el, ok := s.elements[loc]
	if !ok {
		return "", core.ErrElementNotFound.WithMessage("no element matches " + loc.String())
	}
	if el.Err != nil {
		return "", el.Err
	}
	if s.findCounts[loc] <= el.AppearAfter {
		return "", core.ErrElementNotFound.WithMessage("no element matches " + loc.String())
	}
	return elementID(loc), nil
}

func (s *Session) ClickElement(ctx context.Context, id string) error {
	el, loc, err := s.element(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.clicks = append(s.clicks, loc)
	s.mu.Unlock()

	// Unlocked so the hook can reshape the screen
	if el.OnClick != nil {
		el.OnClick(s)
	}
	return nil
}

func (s *Session) ClearElement(ctx context.Context, id string) error {
	el, _, err := s.element(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	el.Text = ""
	s.mu.Unlock()
	return nil
}

func (s *Session) SendKeys(ctx context.Context, id, text string) error {
	el, _, err := s.element(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	el.Text += text
	s.mu.Unlock()
	return nil
}

func (s *Session) ElementText(ctx context.Context, id string) (string, error) {
	el, _, err := s.element(ctx, id)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return el.Text, nil
}

func (s *Session) IsElementDisplayed(ctx context.Context, id string) (bool, error) {
	el, _, err := s.element(ctx, id)
	if err != nil {
		return false, err
	}
	return !el.Hidden, nil
}

func (s *Session) IsElementEnabled(ctx context.Context, id string) (bool, error) {
	el, _, err := s.element(ctx, id)
	if err != nil {
		return false, err
	}
	return !el.Disabled, nil
}

func (s *Session) Swipe(ctx context.Context, startX, startY, endX, endY int, duration time.Duration) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swipes = append(s.swipes, Swipe{StartX: startX, StartY: startY, EndX: endX, EndY: endY, Duration: duration})
	return nil
}

func (s *Session) WindowSize(ctx context.Context) (int, int, error) {
	if err := s.check(ctx); err != nil {
		return 0, 0, err
	}
	return s.Config.Width, s.Config.Height, nil
}

func (s *Session) CurrentActivity(ctx context.Context) (string, error) {
	if err := s.check(ctx); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activityCalls++
	if s.activityCalls <= s.Config.ActivityAfter {
		return "", nil
	}
	return s.Config.Activity, nil
}

// Screenshot returns a small solid PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if s.Config.ScreenshotErr != nil {
		return nil, s.Config.ScreenshotErr
	}
	img := image.NewRGBA(image.Rect(0, 0, s.Config.Width/10, s.Config.Height/10))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Gray{Y: 0xee}), image.Point{}, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Session) SetImplicitWait(ctx context.Context, timeout time.Duration) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if s.Config.ImplicitWaitErr != nil {
		return s.Config.ImplicitWaitErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.implicitWait = timeout
	return nil
}

func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return s.Config.CloseErr
}

func (s *Session) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Config.FailWith
}

func (s *Session) element(ctx context.Context, id string) (*Element, core.Locator, error) {
	if err := s.check(ctx); err != nil {
		return nil, core.Locator{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.byID[id]
	if !ok {
		return nil, core.Locator{}, core.ErrStaleElement.WithMessage(fmt.Sprintf("unknown element %q", id))
	}
	el, ok := s.elements[loc]
	if !ok {
		return nil, loc, core.ErrStaleElement.WithMessage(fmt.Sprintf("element %q left the screen", id))
	}
	return el, loc, nil
}

func elementID(loc core.Locator) string {
	return "mock:" + loc.String()
}

var _ core.Session = (*Session)(nil)
