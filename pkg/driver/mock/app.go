package mock

import (
	"github.com/devicelab-dev/translator-runner/pkg/config"
)

// TranslatedPrefix is prepended to the input by the fake translator.
const TranslatedPrefix = "[translated] "

// NewApp returns a session scripted as the translator app, reachable through
// the given selectors: every onboarding candidate present, the home buttons
// clickable, and a text translator that echoes its input with
// TranslatedPrefix when the translate button is clicked.
func NewApp(cfg Config, loc config.Locators) *Session {
	s := New(cfg)

	for _, chain := range [][]config.Fallback{loc.AdClose, loc.LanguageNext, loc.FeatureContinue, loc.PremiumClose} {
		if len(chain) > 0 {
			s.Add(chain[0].Locator, &Element{})
		}
	}

	s.Add(loc.HomeTextTranslator, &Element{Text: "Text Translator"})
	s.Add(loc.HomeCameraTranslator, &Element{Text: "Camera"})
	s.Add(loc.HomeVoiceTranslator, &Element{Text: "Voice"})
	s.Add(loc.HomeHistory, &Element{Text: "History"})

	s.Add(loc.TranslatorInput, &Element{})
	s.Add(loc.TranslatorResult, &Element{})
	s.Add(loc.TranslatorButton, &Element{
		OnClick: func(s *Session) {
			if input := s.Text(loc.TranslatorInput); input != "" {
				s.SetText(loc.TranslatorResult, TranslatedPrefix+input)
			}
		},
	})

	return s
}
