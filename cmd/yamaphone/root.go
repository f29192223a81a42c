package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/yamaphone/internal/buildinfo"
	"github.com/dmitrijs2005/yamaphone/internal/client/cli"
	"github.com/dmitrijs2005/yamaphone/internal/client/config"
	"github.com/dmitrijs2005/yamaphone/internal/logging"
	"github.com/spf13/cobra"
)

// Configuration flags (-a, -t, -d, -l, -c) are parsed by the config package
// from os.Args, so cobra is told to let them through untouched.
var passFlags = cobra.FParseErrWhitelist{UnknownFlags: true}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:                "yamaphone",
		Short:              "yamaphone console",
		Long:               "Interactive console for the yamaphone SIP telephony backend.",
		Args:               cobra.ArbitraryArgs,
		FParseErrWhitelist: passFlags,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				return app.Run(ctx)
			})
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:                "whoami",
			Short:              "Restore the saved session and print who is logged in",
			Args:               cobra.ArbitraryArgs,
			FParseErrWhitelist: passFlags,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, func(ctx context.Context, app *cli.App) error {
					if err := app.Start(ctx); err != nil {
						return err
					}
					return app.WhoAmI(ctx)
				})
			},
		},
		&cobra.Command{
			Use:                "logout",
			Short:              "Forget the saved session",
			Args:               cobra.ArbitraryArgs,
			FParseErrWhitelist: passFlags,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, func(ctx context.Context, app *cli.App) error {
					// No resume: clearing the stored credential needs no backend.
					return app.Logout(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				buildinfo.PrintBuildData(cmd.OutOrStdout())
			},
		},
	)

	return root
}

func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *cli.App) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn(ctx, "failed to close local database", "error", err)
		}
	}()

	return fn(ctx, app)
}
