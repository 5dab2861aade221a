// Package cli provides the command-line interface for translator-runner.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Config file (default: translator.yaml or translator.yml in the working directory)",
		EnvVars: []string{"TRANSLATOR_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "appium-url",
		Usage:   "Appium server URL (default: http://127.0.0.1:4723)",
		EnvVars: []string{"APPIUM_URL"},
	},
	&cli.StringFlag{
		Name:    "app",
		Usage:   "App binary (.apk) to install and launch",
		EnvVars: []string{"TRANSLATOR_APP"},
	},
	&cli.StringFlag{
		Name:    "driver",
		Aliases: []string{"d"},
		Usage:   "Driver to use (appium, mock)",
		Value:   "appium",
		EnvVars: []string{"TRANSLATOR_DRIVER"},
	},
	&cli.StringFlag{
		Name:  "output",
		Usage: "Base directory for run reports and screenshots",
	},
	&cli.StringFlag{
		Name:  "log-level",
		Usage: "Console log level (debug, info, warn, error)",
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"TRANSLATOR_VERBOSE"},
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// NewApp builds the CLI application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "translator-runner",
		Usage:   "UI automation harness for the Language Translator Android app",
		Version: Version,
		Description: `translator-runner drives the app through Appium: it launches the app,
clicks through the splash ad and onboarding screens, reaches the home screen,
and exercises text translation.

Examples:
  translator-runner launch
  translator-runner --app ./app.apk translate --text Hello
  translator-runner --driver mock translate --expect "result.includes('Hello')"
  translator-runner config`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			launchCommand,
			translateCommand,
			configCommand,
		},
	}
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the run; the session is
// still released.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
