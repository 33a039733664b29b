package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/easel-labs/easel/pkg/cli/config"
	"github.com/easel-labs/easel/pkg/utils/logging"
)

func cmdValidate() *cli.Command {
	var palettePath string

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a shape palette configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "palette",
				Usage:       "Path to shape palette TOML file",
				Required:    true,
				Sources:     cli.EnvVars("EASEL_PALETTE"),
				Destination: &palettePath,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			palette, err := config.LoadPalette(palettePath)
			if err != nil {
				return goerr.Wrap(err, "palette validation failed")
			}

			logger.Info("Palette validation passed",
				"path", palettePath,
				"shape_count", len(palette.Shapes),
			)
			for _, s := range palette.Shapes {
				logger.Info("Shape validated",
					"type", s.Type,
					"name", s.Name,
					"default_color", s.DefaultColor,
					"default_fill", s.DefaultFill,
				)
			}

			return nil
		},
	}
}
