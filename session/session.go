// Package session loads a parameter block generation session: audio elements, parameter definitions,
// parameter block metadata and the sample files recon gains are computed from.
package session

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/mycophonic/primordium/fault"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/mycophonic/iamfparam"
	"github.com/mycophonic/iamfparam/demix"
	"github.com/mycophonic/iamfparam/element"
	"github.com/mycophonic/iamfparam/generator"
	"github.com/mycophonic/iamfparam/internal/audio"
	"github.com/mycophonic/iamfparam/layout"
	"github.com/mycophonic/iamfparam/paramblock"
	"github.com/mycophonic/iamfparam/paramdef"
	"github.com/mycophonic/iamfparam/recongain"
)

var (
	// ErrDuplicateID is returned when an audio element or parameter id is declared twice.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrSubblockPayload is returned when a subblock does not carry exactly one payload.
	ErrSubblockPayload = errors.New("subblock must carry exactly one payload")
	// ErrFormatMismatch is returned when original and decoded samples disagree in shape.
	ErrFormatMismatch = errors.New("original and decoded samples differ in format")
)

// Session is a loaded session description.
type Session struct {
	Config

	dir string
}

// Load reads the session file at path. Sample paths are resolved against the file's directory.
func Load(path string) (*Session, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: reading session %s: %w", fault.ErrReadFailure, path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: decoding session %s: %w", iamfparam.ErrInvalidArgument, path, err)
	}

	return &Session{Config: cfg, dir: filepath.Dir(path)}, nil
}

// Elements returns the validated audio element registry.
func (s *Session) Elements() (element.Registry, error) {
	registry := make(element.Registry, len(s.AudioElements))

	for _, desc := range s.AudioElements {
		if _, ok := registry[desc.ID]; ok {
			return nil, fmt.Errorf("%w: %w: audio element %d", iamfparam.ErrInvalidArgument, ErrDuplicateID, desc.ID)
		}

		elem := element.AudioElement{
			ID:            desc.ID,
			CodecConfigID: desc.CodecConfigID,
			SubstreamIDs:  desc.SubstreamIDs,
		}

		for idx, layer := range desc.Layers {
			loudspeakers, err := layout.ParseLayout(layer.Layout)
			if err != nil {
				return nil, fmt.Errorf("audio element %d layer %d: %w", desc.ID, idx, err)
			}

			elem.Topology.Layers = append(elem.Topology.Layers, layout.ChannelLayer{
				Layout:                loudspeakers,
				SubstreamCount:        layer.SubstreamCount,
				CoupledSubstreamCount: layer.CoupledSubstreamCount,
				ReconGainPresent:      layer.ReconGainPresent,
				OutputGainPresent:     layer.OutputGainPresent,
				OutputGainFlags:       layer.OutputGainFlags,
				OutputGain:            layer.OutputGain,
			})
		}

		if err := elem.Validate(); err != nil {
			return nil, err
		}

		registry[desc.ID] = elem
	}

	return registry, nil
}

// Definitions returns the validated parameter definition registry.
func (s *Session) Definitions() (paramdef.Registry, error) {
	registry := make(paramdef.Registry, len(s.ParamDefinitions))

	for _, desc := range s.ParamDefinitions {
		if _, ok := registry[desc.ParameterID]; ok {
			return nil, fmt.Errorf("%w: %w: parameter %d", iamfparam.ErrInvalidArgument, ErrDuplicateID, desc.ParameterID)
		}

		kind, err := iamfparam.ParseParamKind(desc.Kind)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", desc.ParameterID, err)
		}

		mode, err := paramdef.ParseMode(desc.Mode)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", desc.ParameterID, err)
		}

		def := paramdef.Definition{
			ParameterID:              desc.ParameterID,
			Kind:                     kind,
			Rate:                     desc.Rate,
			Mode:                     mode,
			Duration:                 desc.Duration,
			ConstantSubblockDuration: desc.ConstantSubblockDuration,
			SubblockDurations:        desc.SubblockDurations,
			AudioElementID:           desc.AudioElementID,
			DefaultMixGain:           desc.DefaultMixGain,
		}

		if err := def.Validate(); err != nil {
			return nil, err
		}

		registry[desc.ParameterID] = def
	}

	return registry, nil
}

// Instances returns the parameter block metadata ordered by start timestamp, file order within a
// timestamp.
func (s *Session) Instances() ([]generator.Instance, error) {
	instances := make([]generator.Instance, 0, len(s.ParameterBlocks))

	for idx, block := range s.ParameterBlocks {
		inst := generator.Instance{
			ParameterID: block.ParameterID,
			Header: paramblock.Header{
				RedundantCopy:  block.RedundantCopy,
				TrimmingStatus: block.TrimmingStatus,
			},
			StartTimestamp:           block.StartTimestamp,
			Duration:                 block.Duration,
			ConstantSubblockDuration: block.ConstantSubblockDuration,
			NumSubblocks:             block.NumSubblocks,
		}

		for sub, desc := range block.Subblocks {
			data, err := subblockData(desc)
			if err != nil {
				return nil, fmt.Errorf("parameter block %d subblock %d: %w", idx, sub, err)
			}

			inst.Subblocks = append(inst.Subblocks, generator.SubblockInstance{Duration: desc.Duration, Data: data})
		}

		instances = append(instances, inst)
	}

	slices.SortStableFunc(instances, func(a, b generator.Instance) int {
		return cmp.Compare(a.StartTimestamp, b.StartTimestamp)
	})

	return instances, nil
}

func subblockData(desc Subblock) (generator.SubblockData, error) {
	var (
		data  generator.SubblockData
		count int
	)

	if desc.MixGain != nil {
		count++

		animation, err := paramblock.ParseAnimation(desc.MixGain.Animation)
		if err != nil {
			return nil, err
		}

		data = &generator.MixGainData{
			Animation:           animation,
			Start:               desc.MixGain.Start,
			End:                 desc.MixGain.End,
			Control:             desc.MixGain.Control,
			ControlRelativeTime: desc.MixGain.ControlRelativeTime,
		}
	}

	if desc.Demixing != nil {
		count++

		data = &generator.DemixingData{Mode: desc.Demixing.Mode, Reserved: desc.Demixing.Reserved}
	}

	if desc.ReconGain != nil {
		count++

		layers := make([]generator.ReconGainLayer, len(desc.ReconGain.Layers))
		for idx, layer := range desc.ReconGain.Layers {
			for _, gain := range layer.Gains {
				layers[idx].Gains = append(layers[idx].Gains, demix.Position{Bit: gain.Bit, Value: gain.Value})
			}
		}

		data = &generator.ReconGainData{Layers: layers}
	}

	if count != 1 {
		return nil, fmt.Errorf("%w: %w: found %d", iamfparam.ErrInvalidArgument, ErrSubblockPayload, count)
	}

	return data, nil
}

// Path resolves a sample path against the session directory.
func (s *Session) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}

	return filepath.Join(s.dir, name)
}

type elementFrames struct {
	id                uint32
	original, decoded map[int64]recongain.Frame
}

// Frames decodes the sample files of every audio element that declares them and splits them into
// frames of SamplesPerFrame samples.
func (s *Session) Frames(ctx context.Context) (recongain.LabeledFrames, recongain.LabeledFrames, error) {
	withSamples := make([]AudioElement, 0, len(s.AudioElements))

	for _, desc := range s.AudioElements {
		if desc.Samples != nil {
			withSamples = append(withSamples, desc)
		}
	}

	results := make([]elementFrames, len(withSamples))
	group, gctx := errgroup.WithContext(ctx)

	for idx, desc := range withSamples {
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			original, decoded, err := s.elementFrames(desc)
			if err != nil {
				return fmt.Errorf("audio element %d: %w", desc.ID, err)
			}

			results[idx] = elementFrames{id: desc.ID, original: original, decoded: decoded}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	original := recongain.LabeledFrames{}
	decoded := recongain.LabeledFrames{}

	for _, result := range results {
		original.Add(result.id, result.original)
		decoded.Add(result.id, result.decoded)
	}

	return original, decoded, nil
}

func (s *Session) elementFrames(desc AudioElement) (map[int64]recongain.Frame, map[int64]recongain.Frame, error) {
	original, _, err := audio.Load(s.Path(desc.Samples.Original))
	if err != nil {
		return nil, nil, err
	}

	decoded, _, err := audio.Load(s.Path(desc.Samples.Decoded))
	if err != nil {
		return nil, nil, err
	}

	if len(original.Channels) != len(decoded.Channels) || original.Format.SampleRate != decoded.Format.SampleRate {
		return nil, nil, fmt.Errorf("%w: %w: %d channels at %d Hz, decoded %d channels at %d Hz",
			iamfparam.ErrInvalidArgument, ErrFormatMismatch,
			len(original.Channels), original.Format.SampleRate, len(decoded.Channels), decoded.Format.SampleRate)
	}

	originalFrames, err := recongain.Split(original, desc.Samples.ChannelLabels, s.SamplesPerFrame)
	if err != nil {
		return nil, nil, err
	}

	decodedFrames, err := recongain.Split(decoded, desc.Samples.ChannelLabels, s.SamplesPerFrame)
	if err != nil {
		return nil, nil, err
	}

	return originalFrames, decodedFrames, nil
}
