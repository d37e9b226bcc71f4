package wav_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mycophonic/iamfparam"
	"github.com/mycophonic/iamfparam/wav"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, depth := range []iamfparam.BitDepth{iamfparam.Depth16, iamfparam.Depth24, iamfparam.Depth32} {
		for _, channels := range []int{1, 2, 6} {
			audio := &iamfparam.Planar{
				Format:   iamfparam.PCMFormat{SampleRate: 48000, BitDepth: depth, Channels: uint(channels)},
				Channels: make([][]int32, channels),
			}

			peak := int32(1)<<(depth-1) - 1

			for ch := range audio.Channels {
				audio.Channels[ch] = []int32{0, peak, -peak - 1, int32(ch + 1), -int32(ch + 1)}
			}

			var buf bytes.Buffer

			require.NoError(t, wav.Encode(&buf, audio))

			got, err := wav.Decode(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			require.Equal(t, audio, got)
		}
	}
}

func TestDecodeRejects(t *testing.T) {
	t.Parallel()

	_, err := wav.Decode(bytes.NewReader([]byte("RIFF\x00\x00\x00\x00AVI ")))
	require.True(t, errors.Is(err, wav.ErrNotWAV))

	_, err = wav.Decode(bytes.NewReader([]byte("RIFF\x04\x00\x00\x00WAVE")))
	require.True(t, errors.Is(err, wav.ErrNoFmtChunk))

	err = wav.Encode(&bytes.Buffer{}, &iamfparam.Planar{Format: iamfparam.PCMFormat{BitDepth: iamfparam.Depth8}})
	require.True(t, errors.Is(err, wav.ErrInvalidBitDepth))
}
