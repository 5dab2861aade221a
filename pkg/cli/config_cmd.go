package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var configCommand = &cli.Command{
	Name:  "config",
	Usage: "Print the resolved configuration and validate it",
	Description: `Loads the config file, applies flag and environment overrides, and prints
the result as YAML. Exits non-zero when the configuration is invalid.`,
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		fmt.Fprint(c.App.Writer, string(data))

		if err := cfg.Validate(); err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, "# configuration is valid")
		return nil
	},
}
