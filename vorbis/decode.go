// Package vorbis decodes Ogg Vorbis input audio.
package vorbis

import (
	"fmt"
	"io"
	"math"

	"github.com/jfreymuth/oggvorbis"

	"github.com/mycophonic/primordium/fault"

	"github.com/mycophonic/iamfparam"
)

// Decode reads an Ogg Vorbis stream into planar signed 16-bit samples.
func Decode(rs io.ReadSeeker) (*iamfparam.Planar, error) {
	samples, format, err := oggvorbis.ReadAll(rs)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding vorbis: %w", fault.ErrReadFailure, err)
	}

	nChannels := format.Channels
	out := &iamfparam.Planar{
		Format: iamfparam.PCMFormat{
			SampleRate: format.SampleRate,
			BitDepth:   iamfparam.Depth16,
			Channels:   uint(nChannels), //nolint:gosec // channel count is always small positive
		},
		Channels: make([][]int32, nChannels),
	}

	frames := len(samples) / nChannels
	for ch := range out.Channels {
		out.Channels[ch] = make([]int32, frames)
	}

	for i, s := range samples[:frames*nChannels] {
		scaled := math.Round(float64(s) * math.MaxInt16)
		scaled = max(math.MinInt16, min(math.MaxInt16, scaled))

		out.Channels[i%nChannels][i/nChannels] = int32(scaled)
	}

	return out, nil
}
