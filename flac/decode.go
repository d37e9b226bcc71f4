// Package flac decodes FLAC input audio and encodes channel substreams as FLAC frames.
package flac

import (
	"errors"
	"fmt"
	"io"

	goflac "github.com/mewkiz/flac"

	"github.com/mycophonic/primordium/fault"

	"github.com/mycophonic/iamfparam"
)

// ErrBitDepth is returned when a FLAC stream has an unsupported bit depth.
var ErrBitDepth = errors.New("unsupported bit depth")

// Decode reads a FLAC stream into planar samples. Native bit depth is preserved.
func Decode(rs io.ReadSeeker) (*iamfparam.Planar, error) {
	stream, err := goflac.New(rs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}
	defer stream.Close()

	info := stream.Info
	nChannels := int(info.NChannels)

	bitDepth, err := iamfparam.ToBitDepth(info.BitsPerSample)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBitDepth, err)
	}

	out := &iamfparam.Planar{
		Format: iamfparam.PCMFormat{
			SampleRate: int(info.SampleRate),
			BitDepth:   bitDepth,
			Channels:   uint(nChannels), //nolint:gosec // nChannels comes from uint8, always fits in uint.
		},
		Channels: make([][]int32, nChannels),
	}

	// Pre-allocate when total sample count is known.
	if info.NSamples > 0 {
		for ch := range out.Channels {
			out.Channels[ch] = make([]int32, 0, int(info.NSamples)) //nolint:gosec // bounded by the stream.
		}
	}

	for {
		audioFrame, parseErr := stream.ParseNext()
		if errors.Is(parseErr, io.EOF) {
			break
		}

		if parseErr != nil {
			return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, parseErr)
		}

		blockSize := int(audioFrame.BlockSize)

		for ch, subframe := range audioFrame.Subframes {
			out.Channels[ch] = append(out.Channels[ch], subframe.Samples[:blockSize]...)
		}
	}

	return out, nil
}
