package pages

import (
	"context"

	"github.com/devicelab-dev/translator-runner/pkg/config"
	"github.com/devicelab-dev/translator-runner/pkg/core"
)

// Home is the app home screen.
type Home struct {
	*Base
	loc config.Locators
}

// NewHome creates the home page.
func NewHome(base *Base, loc config.Locators) *Home {
	return &Home{Base: base, loc: loc}
}

// OpenTextTranslator opens the text translator screen.
func (h *Home) OpenTextTranslator(ctx context.Context) (*TextTranslator, error) {
	if err := h.open(ctx, "text translator", h.loc.HomeTextTranslator); err != nil {
		return nil, err
	}
	return NewTextTranslator(h.Base, h.loc), nil
}

// OpenCameraTranslator opens the camera translator.
func (h *Home) OpenCameraTranslator(ctx context.Context) error {
	return h.open(ctx, "camera translator", h.loc.HomeCameraTranslator)
}

// OpenVoiceTranslator opens the voice translator.
func (h *Home) OpenVoiceTranslator(ctx context.Context) error {
	return h.open(ctx, "voice translator", h.loc.HomeVoiceTranslator)
}

// OpenHistory opens the translation history.
func (h *Home) OpenHistory(ctx context.Context) error {
	return h.open(ctx, "history", h.loc.HomeHistory)
}

func (h *Home) open(ctx context.Context, what string, loc core.Locator) error {
	if err := h.Click(ctx, loc); err != nil {
		return err
	}
	h.Log.Info("opened %s", what)
	return h.settle(ctx, h.Delays.Transition)
}
