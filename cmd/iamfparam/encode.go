package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/mycophonic/iamfparam/flac"
	"github.com/mycophonic/iamfparam/internal/audio"
)

const defaultEncodeTimeout = 30 * time.Second

func encodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Usage:     "Encode an audio file frame by frame as a FLAC substream",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Required: true,
				Usage:    "output FLAC file path",
			},
			&cli.IntFlag{
				Name:  "frame",
				Value: 1024,
				Usage: "samples per frame",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: defaultEncodeTimeout,
				Usage: "maximum time to wait for encoded frames",
			},
		},
		Action: runEncode,
	}
}

func runEncode(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("%w: file path, got %d", errInvalidArgCount, cmd.NArg())
	}

	input, codec, err := audio.Load(cmd.Args().First())
	if err != nil {
		return err
	}

	samplesPerFrame := cmd.Int("frame")

	enc, err := flac.NewEncoder(flac.Config{
		SampleRate:      input.Format.SampleRate,
		BitDepth:        input.Format.BitDepth,
		Channels:        len(input.Channels),
		SamplesPerFrame: samplesPerFrame,
	})
	if err != nil {
		return err
	}

	total := input.Frames()

	for start := 0; start < total; start += samplesPerFrame {
		end := min(start+samplesPerFrame, total)
		chunk := make([][]int32, len(input.Channels))

		for ch, channel := range input.Channels {
			chunk[ch] = channel[start:end]
		}

		if err := enc.EncodeFrame(chunk); err != nil {
			return err
		}
	}

	frames, err := enc.Finish(ctx, cmd.Duration("timeout"))
	if err != nil {
		return err
	}

	output := cmd.String("output")

	file, err := os.Create(output) //nolint:gosec // CLI tool creates user-specified output files
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer file.Close()

	if err := enc.WriteStream(file, frames); err != nil {
		return err
	}

	slog.Info("encoded substream",
		"input_codec", codec,
		"frames", len(frames),
		"samples", total,
		"output", output,
	)

	return nil
}
