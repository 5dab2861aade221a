package flow

import (
	"context"
	"time"

	"github.com/devicelab-dev/translator-runner/pkg/core"
	"github.com/devicelab-dev/translator-runner/pkg/wait"
)

// SplashAd waits for the app to come up, sits out the splash screen, and
// dismisses the interstitial ad if one shows.
type SplashAd struct{}

func (SplashAd) Name() string { return NameSplashAd }

func (SplashAd) Run(ctx context.Context, env *Env) error {
	start := time.Now()

	ok, err := env.awaitActivity(ctx, env.Timeouts.Default)
	if err != nil {
		return err
	}
	if ok {
		env.Log.Info("app launched: %s", env.Activity)
	} else {
		env.Log.Warn("app did not report an activity within %s", env.Timeouts.Default)
	}

	// The splash stays up for a fixed minimum however fast the app starts
	if remaining := env.Delays.SplashMinimum - time.Since(start); remaining > 0 {
		if err := env.Settle(ctx, remaining); err != nil {
			return err
		}
	}
	if err := env.Settle(ctx, env.Delays.Transition); err != nil {
		return err
	}

	clicked, err := env.ClickFirst(ctx, "ad close button", env.Locators.AdClose)
	if err != nil {
		return err
	}
	if clicked {
		if err := env.Settle(ctx, env.Delays.Interaction); err != nil {
			return err
		}
	}
	return env.Settle(ctx, env.Delays.Transition)
}

// LanguageOnboarding accepts the preselected language.
type LanguageOnboarding struct{}

func (LanguageOnboarding) Name() string { return NameLanguageOnboarding }

func (LanguageOnboarding) Run(ctx context.Context, env *Env) error {
	if err := env.Settle(ctx, env.Delays.Transition); err != nil {
		return err
	}
	clicked, err := env.ClickFirst(ctx, "language next button", env.Locators.LanguageNext)
	if err != nil {
		return err
	}
	if clicked {
		if err := env.afterClick(ctx); err != nil {
			return err
		}
	}
	return env.Checkpoint(ctx, "02_language_ob")
}

// FeatureOnboarding swipes through the feature carousel and continues past
// its last page.
type FeatureOnboarding struct{}

func (FeatureOnboarding) Name() string { return NameFeatureOnboarding }

func (FeatureOnboarding) Run(ctx context.Context, env *Env) error {
	if err := env.Settle(ctx, env.Delays.Transition); err != nil {
		return err
	}
	if err := swipeCarousel(ctx, env); err != nil {
		return err
	}
	if err := env.Checkpoint(ctx, "03_feature_ob_last"); err != nil {
		return err
	}

	clicked, err := env.ClickFirst(ctx, "feature continue button", env.Locators.FeatureContinue)
	if err != nil {
		return err
	}
	if clicked {
		return env.afterClick(ctx)
	}
	return nil
}

// swipeCarousel swipes right to left across the live window, settling
// after each swipe.
func swipeCarousel(ctx context.Context, env *Env) error {
	sw := env.Swipe
	if sw.Count <= 0 {
		return nil
	}
	if !(sw.StartX > sw.EndX) {
		return core.ErrInvalidConfig.WithMessage("carousel swipe must move right to left")
	}

	width, height, err := env.Session.WindowSize(ctx)
	if err != nil {
		if core.IsFatal(err) || ctx.Err() != nil {
			return err
		}
		env.Skip("carousel not swiped, window size unavailable: %v", err)
		return nil
	}

	startX := int(float64(width) * sw.StartX)
	endX := int(float64(width) * sw.EndX)
	y := int(float64(height) * sw.Y)

	for i := 1; i <= sw.Count; i++ {
		if err := env.Session.Swipe(ctx, startX, y, endX, y, sw.Duration); err != nil {
			if core.IsFatal(err) || ctx.Err() != nil {
				return err
			}
			env.Log.Warn("swipe %d/%d failed: %v", i, sw.Count, err)
		} else {
			env.Log.Debug("swipe %d/%d: (%d,%d) -> (%d,%d)", i, sw.Count, startX, y, endX, y)
		}
		if err := env.Settle(ctx, env.Delays.Transition); err != nil {
			return err
		}
	}
	return nil
}

// Premium closes the premium upsell.
type Premium struct{}

func (Premium) Name() string { return NamePremium }

func (Premium) Run(ctx context.Context, env *Env) error {
	if err := env.Settle(ctx, env.Delays.Transition); err != nil {
		return err
	}
	clicked, err := env.ClickFirst(ctx, "premium close button", env.Locators.PremiumClose)
	if err != nil {
		return err
	}
	if clicked {
		return env.afterClick(ctx)
	}
	return nil
}

// Home confirms the home screen by its Text Translator button.
type Home struct{}

func (Home) Name() string { return NameHome }

func (Home) Run(ctx context.Context, env *Env) error {
	if err := env.Settle(ctx, env.Delays.Transition); err != nil {
		return err
	}
	ok, err := env.Wait.For(ctx, env.Locators.HomeTextTranslator, wait.Clickable, env.Timeouts.Default)
	if err != nil {
		return err
	}
	if ok {
		env.Log.Info("home screen reached")
	} else {
		env.Skip("home screen not confirmed, text translator button not clickable")
	}
	return env.Checkpoint(ctx, "04_home")
}
