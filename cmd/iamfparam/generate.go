package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/mycophonic/iamfparam"
	"github.com/mycophonic/iamfparam/demix"
	"github.com/mycophonic/iamfparam/generator"
	"github.com/mycophonic/iamfparam/paramblock"
	"github.com/mycophonic/iamfparam/recongain"
	"github.com/mycophonic/iamfparam/session"
	"github.com/mycophonic/iamfparam/timing"
)

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Generate parameter blocks from a session description",
		ArgsUsage: "<session>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print records as JSON",
			},
			&cli.BoolFlag{
				Name:  "override",
				Usage: "emit user recon gains without checking them against computed gains",
			},
			&cli.IntFlag{
				Name:  "samples-per-frame",
				Usage: "samples per frame of the sample files; 0 keeps the session value",
			},
		},
		Action: runGenerate,
	}
}

func runGenerate(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("%w: session file, got %d", errInvalidArgCount, cmd.NArg())
	}

	sess, err := session.Load(cmd.Args().First())
	if err != nil {
		return err
	}

	if cmd.Bool("override") {
		sess.OverrideComputedReconGains = true
	}

	if n := cmd.Int("samples-per-frame"); n > 0 {
		sess.SamplesPerFrame = n
	}

	records, err := generate(ctx, sess, slog.Default())
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return writeJSON(os.Stdout, records)
	}

	writeText(os.Stdout, records)

	return nil
}

func generate(ctx context.Context, sess *session.Session, logger *slog.Logger) ([]paramblock.Record, error) {
	elements, err := sess.Elements()
	if err != nil {
		return nil, err
	}

	defs, err := sess.Definitions()
	if err != nil {
		return nil, err
	}

	metadata, err := generator.Resolve(elements, defs)
	if err != nil {
		return nil, err
	}

	instances, err := sess.Instances()
	if err != nil {
		return nil, err
	}

	gen := generator.New(metadata,
		generator.WithOverride(sess.OverrideComputedReconGains),
		generator.WithLogger(logger),
	)

	var (
		records           []paramblock.Record
		original, decoded recongain.LabeledFrames
		loaded            bool
	)

	seq := timing.New()

	// Instances are sorted by start timestamp; each run of equal starts is one temporal unit.
	for first := 0; first < len(instances); {
		last := first
		for last < len(instances) && instances[last].StartTimestamp == instances[first].StartTimestamp {
			if _, err := gen.AddMetadata(instances[last]); err != nil {
				return nil, err
			}

			last++
		}

		first = last

		demixing, err := gen.GenerateDemixing(seq)
		if err != nil {
			return nil, err
		}

		mixGain, err := gen.GenerateMixGain(seq)
		if err != nil {
			return nil, err
		}

		records = slices.Concat(records, demixing, mixGain)

		if gen.Pending(iamfparam.ReconGain) == 0 {
			continue
		}

		if !loaded {
			if original, decoded, err = sess.Frames(ctx); err != nil {
				return nil, err
			}

			loaded = true
		}

		reconGain, err := gen.GenerateReconGain(original, decoded, seq)
		if err != nil {
			return nil, err
		}

		records = append(records, reconGain...)
	}

	return records, nil
}

func writeText(w io.Writer, records []paramblock.Record) {
	for _, record := range records {
		_, _ = fmt.Fprintf(w, "parameter_id=%d kind=%s start=%d end=%d duration=%d subblocks=%d\n",
			record.ParameterID, record.Kind, record.Start, record.End, record.Duration, len(record.Subblocks))

		for idx, sub := range record.Subblocks {
			_, _ = fmt.Fprintf(w, "  [%d] duration=%d %s\n", idx, sub.Duration, describe(sub.Payload))
		}
	}
}

func describe(payload paramblock.Payload) string {
	switch p := payload.(type) {
	case *paramblock.MixGain:
		return fmt.Sprintf("animation=%s start=%d end=%d control=%d control_relative_time=%d",
			p.Animation, p.Start, p.End, p.Control, p.ControlRelativeTime)
	case *paramblock.DemixingInfo:
		return fmt.Sprintf("dmixp_mode=%d", p.Mode)
	case *paramblock.ReconGainInfo:
		layers := make([]string, len(p.Elements))
		for layer, elem := range p.Elements {
			layers[layer] = fmt.Sprintf("layer%d=%s", layer, gains(elem))
		}

		return strings.Join(layers, " ")
	}

	return "unknown"
}

func gains(elem demix.ReconGain) string {
	positions := elem.Positions()
	values := make([]string, len(positions))

	for i, pos := range positions {
		values[i] = fmt.Sprintf("%d:%d", pos, elem.Gains[pos])
	}

	return "{" + strings.Join(values, ",") + "}"
}

type jsonSubblock struct {
	Duration uint32 `json:"duration"`
	Kind     string `json:"kind"`
	Payload  any    `json:"payload"`
}

type jsonRecord struct {
	ParameterID              uint32         `json:"parameter_id"`
	Kind                     string         `json:"kind"`
	Start                    int64          `json:"start_timestamp"`
	End                      int64          `json:"end_timestamp"`
	Duration                 uint32         `json:"duration"`
	ConstantSubblockDuration uint32         `json:"constant_subblock_duration"`
	IncludeSubblockDuration  bool           `json:"include_subblock_duration"`
	RedundantCopy            bool           `json:"redundant_copy"`
	Subblocks                []jsonSubblock `json:"subblocks"`
}

type jsonReconGain struct {
	Flag  uint16           `json:"recon_gain_flag"`
	Gains map[string]uint8 `json:"gains"`
}

func writeJSON(w io.Writer, records []paramblock.Record) error {
	out := make([]jsonRecord, 0, len(records))

	for _, record := range records {
		rec := jsonRecord{
			ParameterID:              record.ParameterID,
			Kind:                     record.Kind.String(),
			Start:                    record.Start,
			End:                      record.End,
			Duration:                 record.Duration,
			ConstantSubblockDuration: record.ConstantSubblockDuration,
			IncludeSubblockDuration:  record.IncludeSubblockDuration,
			RedundantCopy:            record.Header.RedundantCopy,
		}

		for _, sub := range record.Subblocks {
			var payload any = sub.Payload

			if info, ok := sub.Payload.(*paramblock.ReconGainInfo); ok {
				layers := make([]jsonReconGain, len(info.Elements))
				for idx, elem := range info.Elements {
					layers[idx] = jsonReconGain{Flag: elem.Flag, Gains: map[string]uint8{}}
					for _, pos := range elem.Positions() {
						layers[idx].Gains[fmt.Sprint(pos)] = elem.Gains[pos]
					}
				}

				payload = layers
			}

			rec.Subblocks = append(rec.Subblocks, jsonSubblock{
				Duration: sub.Duration,
				Kind:     sub.Payload.Kind().String(),
				Payload:  payload,
			})
		}

		out = append(out, rec)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}

	return nil
}
