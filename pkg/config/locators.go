package config

import (
	"fmt"
	"time"

	"github.com/devicelab-dev/translator-runner/pkg/core"
)

// Fallback is one candidate of a fallback chain. Timeout bounds the wait for
// this candidate; zero means the short timeout tier.
type Fallback struct {
	core.Locator `yaml:",inline"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
}

// Locators is the versioned selector table for the app under test.
// Onboarding entries are fallback chains tried in order.
type Locators struct {
	// Onboarding
	AdClose         []Fallback `yaml:"adClose"`
	LanguageNext    []Fallback `yaml:"languageNext"`
	FeatureContinue []Fallback `yaml:"featureContinue"`
	PremiumClose    []Fallback `yaml:"premiumClose"`

	// Home screen
	HomeTextTranslator   core.Locator `yaml:"homeTextTranslator"`
	HomeCameraTranslator core.Locator `yaml:"homeCameraTranslator"`
	HomeVoiceTranslator  core.Locator `yaml:"homeVoiceTranslator"`
	HomeHistory          core.Locator `yaml:"homeHistory"`

	// Text translator screen
	TranslatorInput  core.Locator `yaml:"translatorInput"`
	TranslatorButton core.Locator `yaml:"translatorButton"`
	TranslatorResult core.Locator `yaml:"translatorResult"`
}

// Compose layout root shared by the structural paths below.
const composeRoot = "//androidx.compose.ui.platform.ComposeView/android.view.View/android.view.View/android.view.View/android.view.View/android.view.View[1]"

// DefaultLocators returns the selectors for Language Translator 1.x.
func DefaultLocators() Locators {
	return Locators{
		AdClose: []Fallback{
			{Locator: core.XPath("//android.widget.Button"), Timeout: 10 * time.Second},
			{Locator: core.UiSelector(`new UiSelector().className("android.widget.TextView").instance(0)`), Timeout: 5 * time.Second},
		},
		LanguageNext: []Fallback{
			{Locator: core.XPath(composeRoot + "/android.view.View/android.view.View[2]")},
		},
		FeatureContinue: []Fallback{
			{Locator: core.XPath("//android.widget.Button")},
		},
		PremiumClose: []Fallback{
			{Locator: core.XPath(`//android.widget.ImageView[@content-desc="Premium Close"]`)},
		},

		HomeTextTranslator:   core.XPath(composeRoot + "/android.view.View[1]/android.view.View[4]"),
		HomeCameraTranslator: core.XPath(composeRoot + "/android.view.View[2]"),
		HomeVoiceTranslator:  core.XPath(composeRoot + "/android.view.View[3]"),
		HomeHistory:          core.XPath(composeRoot + "/android.view.View[4]"),

		TranslatorInput:  core.XPath("//android.widget.EditText"),
		TranslatorButton: core.XPath("//android.widget.Button"),
		TranslatorResult: core.XPath("//android.widget.TextView"),
	}
}

func (l Locators) problems() []string {
	var out []string

	chains := []struct {
		name  string
		chain []Fallback
	}{
		{"adClose", l.AdClose},
		{"languageNext", l.LanguageNext},
		{"featureContinue", l.FeatureContinue},
		{"premiumClose", l.PremiumClose},
	}
	for _, c := range chains {
		if len(c.chain) == 0 {
			out = append(out, fmt.Sprintf("locators.%s needs at least one candidate", c.name))
		}
		for i, f := range c.chain {
			if err := f.Validate(); err != nil {
				out = append(out, fmt.Sprintf("locators.%s[%d]: %v", c.name, i, err))
			}
			if f.Timeout < 0 {
				out = append(out, fmt.Sprintf("locators.%s[%d]: timeout must not be negative", c.name, i))
			}
		}
	}

	singles := []struct {
		name string
		loc  core.Locator
	}{
		{"homeTextTranslator", l.HomeTextTranslator},
		{"homeCameraTranslator", l.HomeCameraTranslator},
		{"homeVoiceTranslator", l.HomeVoiceTranslator},
		{"homeHistory", l.HomeHistory},
		{"translatorInput", l.TranslatorInput},
		{"translatorButton", l.TranslatorButton},
		{"translatorResult", l.TranslatorResult},
	}
	for _, s := range singles {
		if err := s.loc.Validate(); err != nil {
			out = append(out, fmt.Sprintf("locators.%s: %v", s.name, err))
		}
	}

	return out
}
