package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/mycophonic/iamfparam"
	"github.com/mycophonic/iamfparam/demix"
	"github.com/mycophonic/iamfparam/layout"
)

func labelsCommand() *cli.Command {
	return &cli.Command{
		Name:  "labels",
		Usage: "Print the demixed channels and recon gain bit positions of a layer transition",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "from",
				Usage: "layout accumulated by the previous layers (empty for the base layer)",
			},
			&cli.StringFlag{
				Name:     "to",
				Required: true,
				Usage:    "layout of the current layer",
			},
		},
		Action: runLabels,
	}
}

func channelNumbers(name string) (iamfparam.ChannelNumbers, error) {
	if name == "" {
		return iamfparam.ChannelNumbers{}, nil
	}

	loudspeakers, err := layout.ParseLayout(name)
	if err != nil {
		return iamfparam.ChannelNumbers{}, err
	}

	return loudspeakers.ChannelNumbers()
}

func runLabels(_ context.Context, cmd *cli.Command) error {
	accumulated, err := channelNumbers(cmd.String("from"))
	if err != nil {
		return err
	}

	current, err := channelNumbers(cmd.String("to"))
	if err != nil {
		return err
	}

	labels, err := demix.Derive(accumulated, current)
	if err != nil {
		return err
	}

	for _, label := range labels {
		pos, err := demix.BitPosition(label)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(os.Stdout, "%s\t%d\n", label, pos)
	}

	return nil
}
