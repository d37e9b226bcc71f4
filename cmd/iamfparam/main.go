// Package main provides the iamfparam CLI for generating IAMF parameter blocks.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/mycophonic/primordium/app"

	"github.com/mycophonic/iamfparam/internal/logging"
	"github.com/mycophonic/iamfparam/version"
)

var errInvalidArgCount = errors.New("expected exactly one argument")

func main() {
	ctx := context.Background()
	app.New(ctx, version.Name())

	appl := &cli.Command{
		Name:    version.Name(),
		Usage:   "IAMF parameter block generation cli",
		Version: version.Version() + " (" + version.Commit() + " - " + version.Date() + ")",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "log level (debug, info, warn, error)",
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "log as JSON",
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			generateCommand(),
			labelsCommand(),
			encodeCommand(),
		},
	}

	if err := appl.Run(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)

		os.Exit(1)
	}
}

func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	logger, err := logging.New(os.Stderr, logging.Options{
		Level: cmd.String("log-level"),
		JSON:  cmd.Bool("log-json"),
	})
	if err != nil {
		return ctx, err
	}

	slog.SetDefault(logger)

	return ctx, nil
}
