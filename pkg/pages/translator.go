package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/devicelab-dev/translator-runner/pkg/config"
	"github.com/devicelab-dev/translator-runner/pkg/core"
)

// TextTranslator is the text translation screen.
type TextTranslator struct {
	*Base
	loc config.Locators
}

// NewTextTranslator creates the text translator page.
func NewTextTranslator(base *Base, loc config.Locators) *TextTranslator {
	return &TextTranslator{Base: base, loc: loc}
}

// EnterText focuses the input field and replaces its content with text.
func (p *TextTranslator) EnterText(ctx context.Context, text string) error {
	if err := p.Click(ctx, p.loc.TranslatorInput); err != nil {
		return err
	}
	if err := p.settle(ctx, p.Delays.Interaction); err != nil {
		return err
	}
	if err := p.Type(ctx, p.loc.TranslatorInput, text, true); err != nil {
		return err
	}
	p.Log.Info("entered text: %s", text)
	return p.settle(ctx, p.Delays.Interaction)
}

// TapTranslate starts the translation and gives the result a chance to
// appear. A result that is not there yet is not an error.
func (p *TextTranslator) TapTranslate(ctx context.Context) error {
	if err := p.Click(ctx, p.loc.TranslatorButton); err != nil {
		return err
	}
	if err := p.settle(ctx, p.Delays.Interaction); err != nil {
		return err
	}
	_, err := p.IsPresent(ctx, p.loc.TranslatorResult, p.Timeouts.Default)
	return err
}

// Result returns the translated text currently shown.
func (p *TextTranslator) Result(ctx context.Context) (string, error) {
	return p.Text(ctx, p.loc.TranslatorResult)
}

// IsResultAvailable reports whether the result element shows within the
// short tier.
func (p *TextTranslator) IsResultAvailable(ctx context.Context) (bool, error) {
	return p.IsPresent(ctx, p.loc.TranslatorResult, p.Timeouts.Short)
}

// WaitForResult polls until the result element has non-empty text. A
// timeout <= 0 uses the default tier.
func (p *TextTranslator) WaitForResult(ctx context.Context, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = p.Timeouts.Default
	}

	var result string
	ok, err := p.Wait.Until(ctx, timeout, func(ctx context.Context) (bool, error) {
		id, err := p.Session.FindElement(ctx, p.loc.TranslatorResult)
		if err != nil {
			return false, err
		}
		text, err := p.Session.ElementText(ctx, id)
		if err != nil {
			return false, err
		}
		result = text
		return strings.TrimSpace(text) != "", nil
	})
	if err != nil {
		return "", err
	}
	if !ok {
		return "", core.ErrWaitTimeout.WithMessage(fmt.Sprintf("no translation result within %s", timeout))
	}
	p.Log.Info("translation result: %s", result)
	return result, nil
}

// Translate enters text, taps translate, and waits for the result.
func (p *TextTranslator) Translate(ctx context.Context, text string) (string, error) {
	if err := p.EnterText(ctx, text); err != nil {
		return "", fmt.Errorf("enter text: %w", err)
	}
	if err := p.TapTranslate(ctx); err != nil {
		return "", fmt.Errorf("tap translate: %w", err)
	}
	return p.WaitForResult(ctx, 0)
}
