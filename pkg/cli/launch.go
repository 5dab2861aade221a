package cli

import (
	"context"

	"github.com/devicelab-dev/translator-runner/pkg/core"
	"github.com/devicelab-dev/translator-runner/pkg/wait"
	"github.com/urfave/cli/v2"
)

var launchCommand = &cli.Command{
	Name:  "launch",
	Usage: "Launch the app and navigate through onboarding to the home screen",
	Description: `Creates an Appium session, clicks through the splash ad, language and
feature onboarding, and the premium offer, then confirms the home screen.
The session is always closed before the command returns.`,
	Flags: []cli.Flag{
		&cli.DurationFlag{
			Name:  "hold",
			Usage: "Keep the session open this long after reaching home (e.g. 30s)",
		},
	},
	Action: runLaunch,
}

func runLaunch(c *cli.Context) error {
	r, err := newRun(c, "launch")
	if err != nil {
		return err
	}

	err = r.withSession(c.Context, false, func(ctx context.Context, s core.Session) error {
		if hold := c.Duration("hold"); hold > 0 {
			r.log.Info("holding session %s for %s", s.ID(), hold)
			if err := wait.Sleep(ctx, hold); err != nil {
				r.log.Info("hold interrupted")
			}
		}
		return nil
	})
	return r.finish(err)
}
