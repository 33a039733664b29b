package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/easel-labs/easel/pkg/cli/config"
	httpctrl "github.com/easel-labs/easel/pkg/controller/http"
	"github.com/easel-labs/easel/pkg/repository/memory"
	"github.com/easel-labs/easel/pkg/usecase"
	"github.com/easel-labs/easel/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var backendCfg config.Backend
	var paletteCfg config.Palette

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("EASEL_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, backendCfg.Flags()...)
	flags = append(flags, paletteCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			generator, err := backendCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize backend client")
			}

			palette, err := paletteCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load palette")
			}

			uc := usecase.New(memory.New(),
				usecase.WithGenerator(generator),
				usecase.WithPalette(palette),
			)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return goerr.Wrap(err, "failed to start server")
				}
				return nil
			})
			eg.Go(func() error {
				<-ctx.Done()
				logging.Default().Info("Shutting down HTTP server")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				return nil
			})

			if err := eg.Wait(); err != nil {
				return err
			}

			logging.Default().Info("Server shutdown completed")
			return nil
		},
	}
}
