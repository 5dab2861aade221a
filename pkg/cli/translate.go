package cli

import (
	"context"
	"fmt"

	"github.com/devicelab-dev/translator-runner/pkg/core"
	"github.com/devicelab-dev/translator-runner/pkg/jsengine"
	"github.com/devicelab-dev/translator-runner/pkg/pages"
	"github.com/devicelab-dev/translator-runner/pkg/report"
	"github.com/urfave/cli/v2"
)

var translateCommand = &cli.Command{
	Name:  "translate",
	Usage: "Launch the app, open the text translator and translate a phrase",
	Description: `Runs the onboarding flow, opens the text translator from the home screen,
translates --text and checks the result against --expect.

--expect is a JavaScript expression with access to input and result, e.g.
  result.trim().length > 0
  result.includes("Hola")`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "text",
			Usage: "Text to translate",
			Value: "Hello",
		},
		&cli.StringFlag{
			Name:  "expect",
			Usage: "JavaScript expectation for the translation",
			Value: jsengine.DefaultExpectation,
		},
		&cli.BoolFlag{
			Name:  "keep-open",
			Usage: "Leave the session open after the command (closed by the server after newCommandTimeout)",
		},
	},
	Action: runTranslate,
}

func runTranslate(c *cli.Context) error {
	r, err := newRun(c, "translate")
	if err != nil {
		return err
	}

	err = r.withSession(c.Context, c.Bool("keep-open"), func(ctx context.Context, s core.Session) error {
		translation, err := r.translate(ctx, s, c.String("text"), c.String("expect"))
		if err != nil {
			r.log.Error("translation failed: %v", err)
			if att, ok := r.captureError(ctx, s, "translate", err); ok {
				translation.Attachments = append(translation.Attachments, att)
			}
		}
		r.report.Translation = translation
		return err
	})
	return r.finish(err)
}

// translate drives the text translator page and checks the result. The
// returned Translation is never nil.
func (r *run) translate(ctx context.Context, s core.Session, text, expect string) (*report.Translation, error) {
	if expect == "" {
		expect = jsengine.DefaultExpectation
	}
	t := &report.Translation{Input: text, Expectation: expect}

	base := pages.NewBase(s, r.cfg, r.store, r.log.With("pages"))
	home := pages.NewHome(base, r.cfg.Locators)
	translator, err := home.OpenTextTranslator(ctx)
	if err != nil {
		return t, err
	}

	result, err := translator.Translate(ctx, text)
	if err != nil {
		return t, err
	}
	t.Result = result
	if _, err := base.Screenshot(ctx, "05_translation"); err != nil {
		r.log.Warn("translation screenshot not captured: %v", err)
	}

	fmt.Fprintf(r.out, "  %q %s→%s %q\n", text, color(colorGray), color(colorReset), result)

	engine := jsengine.New(r.log.With("js"), jsengine.DefaultTimeout)
	if err := engine.CheckTranslation(expect, text, result); err != nil {
		return t, err
	}
	t.Passed = true
	return t, nil
}
