package recongain_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mycophonic/iamfparam"
	"github.com/mycophonic/iamfparam/demix"
	"github.com/mycophonic/iamfparam/recongain"
)

func constant(n int, value float64) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = value
	}

	return samples
}

func TestGain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		original, decoded []float64
		want              float64
	}{
		{"equal energy", constant(64, 0.5), constant(64, 0.5), 1},
		{"half amplitude", constant(64, 0.25), constant(64, 0.5), 0.5},
		{"louder original clamps", constant(64, 0.5), constant(64, 0.25), 1},
		{"silent original", constant(64, 0), constant(64, 0.5), 0},
		{"silent decoded", constant(64, 0.5), constant(64, 0), 1},
		{"empty original", nil, constant(64, 0.5), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := recongain.Gain(tt.original, tt.decoded)
			require.True(t, math.Abs(got-tt.want) < 1e-12, "got %v, want %v", got, tt.want)
		})
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()

	audio := &iamfparam.Planar{
		Format: iamfparam.PCMFormat{SampleRate: 48000, BitDepth: iamfparam.Depth16, Channels: 2},
		Channels: [][]int32{
			{16384, 16384, 16384, 16384, 16384},
			{-16384, -16384, -16384, -16384, -16384},
		},
	}

	frames, err := recongain.Split(audio, []string{"L2", "R2"}, 2)
	require.NoError(t, err)
	require.Equal(t, 3, len(frames))
	require.Equal(t, []float64{0.5, 0.5}, frames[0]["L2"])
	require.Equal(t, []float64{-0.5, -0.5}, frames[2]["R2"])
	require.Equal(t, []float64{0.5}, frames[4]["L2"])

	_, err = recongain.Split(audio, []string{"L2"}, 2)
	require.True(t, errors.Is(err, recongain.ErrChannelLabels))

	_, err = recongain.Split(audio, []string{"L2", "R2"}, 0)
	require.True(t, errors.Is(err, recongain.ErrFrameSize))
}

func TestComputer(t *testing.T) {
	t.Parallel()

	original := recongain.LabeledFrames{}
	original.Add(7, map[int64]recongain.Frame{
		0: {"R2": constant(8, 0.25), "Ls5": constant(8, 0)},
	})

	decoded := recongain.LabeledFrames{}
	decoded.Add(7, map[int64]recongain.Frame{
		0: {"R2": constant(8, 0.5), "Ls5": constant(8, 0.5)},
	})

	computer := recongain.New(original, decoded, nil)
	computer.SetVerbose(true)

	gain, err := computer.ReconGain(demix.R2, 7, 0)
	require.NoError(t, err)
	require.True(t, math.Abs(gain-0.5) < 1e-12)

	gain, err = computer.ReconGain(demix.Ls5, 7, 0)
	require.NoError(t, err)
	require.Equal(t, 0.0, gain)

	for _, missing := range []struct {
		label     demix.Label
		element   uint32
		timestamp int64
	}{
		{demix.R2, 8, 0},
		{demix.R2, 7, 8},
		{demix.L7, 7, 0},
	} {
		_, err = computer.ReconGain(missing.label, missing.element, missing.timestamp)
		require.True(t, errors.Is(err, recongain.ErrInsufficientData))
		require.True(t, errors.Is(err, iamfparam.ErrInvalidArgument))
	}
}
