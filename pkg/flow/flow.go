// Package flow implements the onboarding screen handlers that take the
// translator app from launch to its home screen.
//
// Each Step handles one screen. Interactions on a screen are optional: an
// element that never appears is logged and recorded as a skip, and the step
// still passes. A step fails only on a fatal session error or cancellation.
package flow

import "context"

// Step names, used in logs, reports, and error screenshot names.
const (
	NameSplashAd           = "splash_ad"
	NameLanguageOnboarding = "language_onboarding"
	NameFeatureOnboarding  = "feature_onboarding"
	NamePremium            = "premium"
	NameHome               = "home"
)

// Step handles one screen of the flow.
type Step interface {
	Name() string
	Run(ctx context.Context, env *Env) error
}

// Onboarding returns the launch-to-home pipeline in order.
func Onboarding() []Step {
	return []Step{
		SplashAd{},
		LanguageOnboarding{},
		FeatureOnboarding{},
		Premium{},
		Home{},
	}
}
